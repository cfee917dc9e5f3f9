package store

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrWrite     = errors.New("storage write failed")
	ErrRead      = errors.New("storage read failed")
	ErrDelete    = errors.New("storage delete failed")
	ErrNotFound  = errors.New("not found")
	ErrCollision = errors.New("note id collision")
)

// Error is a failed storage operation. It matches its Kind with errors.Is and
// unwraps to the underlying cause.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func fail(kind error, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
