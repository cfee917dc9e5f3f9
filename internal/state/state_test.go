package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestState(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	// Empty state
	s := Load()
	if len(s.Groups) != 0 || s.LastGroup != "" {
		t.Errorf("expected empty state, got %+v", s)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := RecordOpen("ideas", now); err != nil {
		t.Fatalf("RecordOpen failed: %v", err)
	}
	RecordOpen("shopping-list", now.Add(time.Minute))
	RecordOpen("ideas", now.Add(2*time.Minute))

	s = Load()
	if s.LastGroup != "ideas" {
		t.Errorf("expected last group 'ideas', got %q", s.LastGroup)
	}
	v := s.Groups["ideas"]
	if v.Opens != 2 {
		t.Errorf("expected 2 opens, got %d", v.Opens)
	}
	if !v.LastOpened.Equal(now.Add(2 * time.Minute)) {
		t.Errorf("unexpected last opened %v", v.LastOpened)
	}

	// Forget
	if err := Forget("ideas"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if LastGroup() != "" {
		t.Errorf("expected last group cleared, got %q", LastGroup())
	}
	if _, ok := Load().Groups["ideas"]; ok {
		t.Error("ideas should be forgotten")
	}
	if _, ok := Load().Groups["shopping-list"]; !ok {
		t.Error("shopping-list should remain")
	}
}

func TestStateCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := filepath.Join(tmpDir, "notegraph", "state.toml")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("not = [valid"), 0o644)

	s := Load()
	if s.Groups == nil {
		t.Fatal("Groups map should be initialized")
	}
	if err := RecordOpen("ideas", time.Now()); err != nil {
		t.Fatalf("RecordOpen over corrupt file failed: %v", err)
	}
	if LastGroup() != "ideas" {
		t.Errorf("expected recovery, got %q", LastGroup())
	}
}
