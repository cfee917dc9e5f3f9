// Package tags extracts inline #tag markers from note text.
package tags

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`#(\w+)`)

// Extract returns the distinct tag labels in text, without the leading '#',
// in order of first occurrence. Labels keep their case.
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		label := m[1]
		if seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// Joined returns the extracted tags as "#a #b", the form search matches against.
func Joined(text string) string {
	labels := Extract(text)
	if len(labels) == 0 {
		return ""
	}
	return "#" + strings.Join(labels, " #")
}

// Replace rewrites every #tag marker in text, including the '#', with the
// result of fn.
func Replace(text string, fn func(marker string) string) string {
	return tagPattern.ReplaceAllStringFunc(text, fn)
}
