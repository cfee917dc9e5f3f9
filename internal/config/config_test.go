package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/test-data")
	cfg := Default()

	if cfg.Store.Dir != "/tmp/test-data/notegraph" {
		t.Errorf("expected store dir under XDG_DATA_HOME, got %q", cfg.Store.Dir)
	}
	if cfg.Store.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.Store.Concurrency)
	}
	if !cfg.Store.Watch {
		t.Error("default watch should be true")
	}
	if cfg.Layout.Iterations != 300 {
		t.Errorf("expected 300 iterations, got %d", cfg.Layout.Iterations)
	}
	if cfg.Layout.Damping != 0.92 {
		t.Errorf("expected damping 0.92, got %v", cfg.Layout.Damping)
	}
	if cfg.Layout.SeedX != 120 || cfg.Layout.SeedSize != 150 {
		t.Errorf("unexpected seed region %v/%v", cfg.Layout.SeedX, cfg.Layout.SeedSize)
	}
	if cfg.Camera.Duration() != 500*time.Millisecond {
		t.Errorf("expected 500ms camera, got %v", cfg.Camera.Duration())
	}
	if cfg.Render.Width != 390 || cfg.Render.Height != 390 {
		t.Errorf("expected 390x390, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.LabelBudget != 15 {
		t.Errorf("expected label budget 15, got %d", cfg.Render.LabelBudget)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %q", cfg.Log.Level)
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	dir := ConfigDir()
	if dir != "/tmp/test-xdg/notegraph" {
		t.Errorf("expected /tmp/test-xdg/notegraph, got %q", dir)
	}

	// Test without XDG_CONFIG_HOME
	t.Setenv("XDG_CONFIG_HOME", "")
	dir = ConfigDir()
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "notegraph")
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(DataDirEnv, "")
	t.Chdir(tmpDir)

	cfg := Default()
	cfg.Store.Concurrency = 8
	cfg.Layout.Repulsion = 450
	cfg.Log.Format = "json"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load()
	if loaded.Store.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", loaded.Store.Concurrency)
	}
	if loaded.Layout.Repulsion != 450 {
		t.Errorf("expected repulsion 450 after load, got %v", loaded.Layout.Repulsion)
	}
	if loaded.Layout.Iterations != 300 {
		t.Errorf("expected iterations 300 after load, got %d", loaded.Layout.Iterations)
	}
	if loaded.Log.Format != "json" {
		t.Errorf("expected json format, got %q", loaded.Log.Format)
	}
}

func TestLoadInvalidFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(tmpDir)

	path := filepath.Join(tmpDir, "notegraph", "config.toml")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("[store\nconcurrency = "), 0o644)

	cfg := Load()
	if cfg.Store.Concurrency != 4 {
		t.Errorf("expected default concurrency, got %d", cfg.Store.Concurrency)
	}
}

func TestDataDirOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(DataDirEnv, "/srv/notes")
	t.Chdir(tmpDir)

	if got := Load().Store.Dir; got != "/srv/notes" {
		t.Errorf("expected /srv/notes, got %q", got)
	}
}

func TestEnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if err := EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	path := filepath.Join(tmpDir, "notegraph", "config.toml")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// Second call should be no-op
	if err := EnsureExists(); err != nil {
		t.Fatalf("EnsureExists second call failed: %v", err)
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	subDir := filepath.Join(tmpDir, "a", "b", "c")
	os.MkdirAll(subDir, 0o755)

	// Write .notegraph.toml in the root tmpDir
	os.WriteFile(filepath.Join(tmpDir, ProjectFile), []byte("[layout]\niterations = 120\n"), 0o644)

	// Change to the deep subdirectory
	t.Chdir(subDir)

	found := findProjectConfig()
	// Resolve symlinks (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(filepath.Join(tmpDir, ProjectFile))
	foundResolved, _ := filepath.EvalSymlinks(found)
	if foundResolved != expectedResolved {
		t.Errorf("expected %q, got %q", expectedResolved, foundResolved)
	}

	if got := Load().Layout.Iterations; got != 120 {
		t.Errorf("expected project override 120, got %d", got)
	}
}
