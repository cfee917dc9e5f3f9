package notes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the fields that failed and why.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError from a single message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Fields: []string{fmt.Sprintf(format, args...)}}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9_]+(-[a-z0-9_]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
		return InPalette(fl.Field().String())
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidID(fl.Field().String())
	})
	return v
}

// ValidID reports whether id is safe to use as a directory name.
func ValidID(id string) bool {
	return slugPattern.MatchString(id)
}

// Validate checks a Note, Group or Draft against its struct rules.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "palette":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(Palette, " "))
	case "slug":
		return fmt.Sprintf("%s %q is not a valid group id", field, fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
