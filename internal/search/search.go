// Package search filters a note collection by a free-text query.
package search

import (
	"strings"

	"github.com/msalah0e/notegraph/internal/graph"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/tags"
)

// Field names which part of a note matched.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// Blank reports whether query matches everything.
func Blank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Match reports whether n matches query: a case-insensitive substring of the
// title, the content, or the space-joined tag list.
func Match(n notes.Note, query string) bool {
	_, ok := MatchField(n, query)
	return ok
}

// MatchField is Match that also returns the first field that matched. A
// blank query matches with an empty field.
func MatchField(n notes.Note, query string) (Field, bool) {
	if Blank(query) {
		return "", true
	}
	q := strings.ToLower(query)
	switch {
	case strings.Contains(strings.ToLower(n.Title), q):
		return FieldTitle, true
	case strings.Contains(strings.ToLower(n.Content), q):
		return FieldContent, true
	case strings.Contains(strings.ToLower(tags.Joined(n.Content)), q):
		return FieldTags, true
	}
	return "", false
}

// Result is the outcome of filtering a collection.
type Result struct {
	// Visible keeps the input order.
	Visible []notes.Note
	// Highlight holds the graph node ids of the visible notes.
	Highlight map[string]bool
}

// Filter applies query to list.
func Filter(list []notes.Note, query string) Result {
	res := Result{
		Visible:   make([]notes.Note, 0, len(list)),
		Highlight: make(map[string]bool),
	}
	for _, n := range list {
		if !Match(n, query) {
			continue
		}
		res.Visible = append(res.Visible, n)
		res.Highlight[graph.NoteNodeID(n.ID)] = true
	}
	return res
}
