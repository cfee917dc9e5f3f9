// Package notes defines the note and group records and the rules they must
// satisfy before they are persisted.
package notes

import (
	"regexp"
	"strings"
	"time"
)

// TypeNote is the only record type stored in a note file.
const TypeNote = "note"

// Note is a single free-text note. Its group is implied by the directory it is
// stored in, so no group id is recorded.
type Note struct {
	ID        int64  `json:"id"`
	Title     string `json:"title" validate:"notblank"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Type      string `json:"type"`
}

// Group is a named, colored bucket of notes.
type Group struct {
	ID    string `json:"id" validate:"required,slug"`
	Name  string `json:"name" validate:"notblank"`
	Color string `json:"color" validate:"palette"`
}

// Draft is the editable part of a note, as submitted by an editor.
type Draft struct {
	Title   string `validate:"notblank"`
	Content string
}

// Palette is the fixed set of colors a group can take.
var Palette = []string{
	"#4A90E2", // bright blue
	"#5B9BD5", // light blue
	"#2E5C8A", // deep blue
	"#7BA3CC", // sky blue
	"#3A7CA5", // ocean blue
	"#1E3A5F", // navy blue
}

// DefaultGroups are written on first run. They cannot be deleted.
var DefaultGroups = []Group{
	{ID: "quick-notes", Name: "quick notes", Color: "#4A90E2"},
	{ID: "shopping-list", Name: "shopping list", Color: "#5B9BD5"},
	{ID: "ideas", Name: "ideas", Color: "#7BA3CC"},
}

// IsSeed reports whether id names one of the default groups.
func IsSeed(id string) bool {
	for _, g := range DefaultGroups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// InPalette reports whether color is one of the palette colors.
func InPalette(color string) bool {
	for _, c := range Palette {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9_-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slug derives a group id from a display name: lower-cased, with every run of
// whitespace replaced by a hyphen. Characters that are not path-safe are
// dropped.
func Slug(name string) string {
	s := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = unsafeChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NewGroup builds a validated group from a user-entered name and color.
func NewGroup(name, color string) (Group, error) {
	g := Group{
		ID:    Slug(name),
		Name:  strings.TrimSpace(name),
		Color: color,
	}
	if err := Validate(g); err != nil {
		return Group{}, err
	}
	return g, nil
}

// New creates a note from a draft. The id and both timestamps are the current
// time in milliseconds.
func New(d Draft, now time.Time) Note {
	ts := now.UnixMilli()
	return Note{
		ID:        ts,
		Title:     d.Title,
		Content:   d.Content,
		CreatedAt: ts,
		UpdatedAt: ts,
		Type:      TypeNote,
	}
}

// Apply returns n updated with the draft's fields, keeping its id and
// creation time.
func (n Note) Apply(d Draft, now time.Time) Note {
	n.Title = d.Title
	n.Content = d.Content
	n.UpdatedAt = now.UnixMilli()
	n.Type = TypeNote
	return n
}

// Created returns the creation time.
func (n Note) Created() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Date formats the creation day as YYYY-MM-DD in UTC.
func (n Note) Date() string {
	return n.Created().UTC().Format("2006-01-02")
}

// Truncate shortens s to max runes, appending "..." when it was cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
