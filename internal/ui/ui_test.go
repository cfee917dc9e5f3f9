package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"ID", "Title"}, [][]string{
		{"1", "standup"},
		{"1700000000000", "café"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "  ID             Title" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[3] != "  1700000000000  café" {
		t.Errorf("row = %q", lines[3])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if out := FormatTable([]string{"a"}, nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestVisibleLenSkipsEscapes(t *testing.T) {
	if n := visibleLen("\x1b[38;2;1;2;3m■\x1b[0m"); n != 1 {
		t.Errorf("visibleLen = %d, want 1", n)
	}
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := parseHex("#4A90E2")
	if !ok || r != 0x4a || g != 0x90 || b != 0xe2 {
		t.Errorf("parseHex = %d %d %d %v", r, g, b, ok)
	}
	if _, _, _, ok := parseHex("blue"); ok {
		t.Error("expected malformed color to fail")
	}
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"":      false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		if got := Confirm(strings.NewReader(input), &out, "Delete?"); got != want {
			t.Errorf("Confirm(%q) = %v, want %v", input, got, want)
		}
		if !strings.Contains(out.String(), "[y/N]") {
			t.Errorf("prompt missing [y/N]: %q", out.String())
		}
	}
}
