// Package state remembers which groups the interactive view opened, so the
// next session can resume where the last one stopped.
package state

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/notegraph/internal/config"
)

// Visit tracks how a group was used in the interactive view.
type Visit struct {
	Opens      int       `toml:"opens"`
	LastOpened time.Time `toml:"last_opened"`
}

// State is the resume file.
type State struct {
	LastGroup string           `toml:"last_group"`
	Groups    map[string]Visit `toml:"groups"`
}

func statePath() string {
	return filepath.Join(config.ConfigDir(), "state.toml")
}

// Load reads the state file, returning empty state if it doesn't exist.
func Load() *State {
	s := &State{Groups: make(map[string]Visit)}
	data, err := os.ReadFile(statePath())
	if err != nil {
		return s
	}
	_ = toml.Unmarshal(data, s)
	if s.Groups == nil {
		s.Groups = make(map[string]Visit)
	}
	return s
}

// Save writes the state file to disk.
func Save(s *State) error {
	path := statePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(s)
}

// RecordOpen marks group as the most recently opened one.
func RecordOpen(group string, now time.Time) error {
	s := Load()
	v := s.Groups[group]
	v.Opens++
	v.LastOpened = now
	s.Groups[group] = v
	s.LastGroup = group
	return Save(s)
}

// Forget drops a deleted group.
func Forget(group string) error {
	s := Load()
	if _, ok := s.Groups[group]; !ok && s.LastGroup != group {
		return nil
	}
	delete(s.Groups, group)
	if s.LastGroup == group {
		s.LastGroup = ""
	}
	return Save(s)
}

// LastGroup returns the most recently opened group, or "".
func LastGroup() string {
	return Load().LastGroup
}
