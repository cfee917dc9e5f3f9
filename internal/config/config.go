package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/notegraph/internal/layout"
)

// DataDirEnv overrides Store.Dir when set.
const DataDirEnv = "NOTEGRAPH_DATA_DIR"

// Config holds notegraph configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Layout LayoutConfig `toml:"layout"`
	Camera CameraConfig `toml:"camera"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

// StoreConfig controls where notes live.
type StoreConfig struct {
	Dir         string `toml:"dir"`
	Concurrency int    `toml:"concurrency"` // parallel note reads per group
	Watch       bool   `toml:"watch"`       // follow external edits in the interactive view
}

// LayoutConfig holds the simulation constants and the seed region.
type LayoutConfig struct {
	layout.Params
	SeedX    float64 `toml:"seed_x"`
	SeedY    float64 `toml:"seed_y"`
	SeedSize float64 `toml:"seed_size"`
	Seed     uint64  `toml:"seed"` // 0 picks a random seed per build
	FrameMS  int     `toml:"frame_ms"`
}

// Frame returns the pause between interactive simulation steps.
func (l LayoutConfig) Frame() time.Duration {
	return time.Duration(l.FrameMS) * time.Millisecond
}

// CameraConfig controls focus transitions.
type CameraConfig struct {
	DurationMS int `toml:"duration_ms"`
}

// Duration returns the focus transition length.
func (c CameraConfig) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

// RenderConfig controls frame geometry.
type RenderConfig struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	LabelBudget int     `toml:"label_budget"`
	PickPadding float64 `toml:"pick_padding"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `toml:"level"`  // "debug", "info", "warn", "error"
	Format string `toml:"format"` // "console", "json"
	File   string `toml:"file"`   // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Dir: DefaultDataDir(), Concurrency: 4, Watch: true},
		Layout: LayoutConfig{
			Params:   layout.DefaultParams(),
			SeedX:    120,
			SeedY:    120,
			SeedSize: 150,
			FrameMS:  16,
		},
		Camera: CameraConfig{DurationMS: 500},
		Render: RenderConfig{Width: 390, Height: 390, LabelBudget: 15, PickPadding: 5},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// ConfigDir returns the notegraph config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "notegraph")
}

// DefaultDataDir returns the default root of the note store.
func DefaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "notegraph")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ProjectFile is the per-directory override file, searched upward from the
// working directory.
const ProjectFile = ".notegraph.toml"

// Load reads the config file, then the nearest project file over it. A
// missing or invalid file is skipped. DataDirEnv is applied last.
func Load() *Config {
	cfg := Default()

	for _, path := range []string{Path(), findProjectConfig()} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		next := *cfg
		if err := toml.Unmarshal(data, &next); err == nil {
			*cfg = next
		}
	}

	if dir := os.Getenv(DataDirEnv); dir != "" {
		cfg.Store.Dir = dir
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = DefaultDataDir()
	}
	return cfg
}

// findProjectConfig walks up from the working directory looking for
// ProjectFile.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}
