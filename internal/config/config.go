// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything a validation run needs. The Build section is
// immutable for the duration of a run; the rest tunes ambient behavior.
type Config struct {
	Build   Build   `toml:"build"`
	Scan    Scan    `toml:"scan"`
	Watch   Watch   `toml:"watch"`
	History History `toml:"history"`
	Metrics Metrics `toml:"metrics"`
}

// Build mirrors the BuildConfig handed over by the build pipeline.
type Build struct {
	PkgDir  string `toml:"pkg_dir"`
	RootDir string `toml:"root_dir"`
	ESMNode bool   `toml:"esm_node"`
	// NodeBinary overrides the executable used to load .cjs/.mjs artifacts.
	NodeBinary string `toml:"node_binary"`
}

type Scan struct {
	// Ignore lists basename globs the build tool always emits but never
	// declares (e.g. ".DS_Store"). Ignored paths are neither validated
	// nor reported as unexpected.
	Ignore []string `toml:"ignore"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Path string `toml:"path"`
}

type Metrics struct {
	Addr string `toml:"addr"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a config with no file backing it, suitable when the run
// is driven entirely by flags.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Build.NodeBinary == "" {
		c.Build.NodeBinary = "node"
	}
}

// Finalize resolves the build paths to absolute form and rejects an
// unusable build section. Called once after flags have been merged in.
func (c *Config) Finalize() error {
	if c.Build.PkgDir == "" {
		return fmt.Errorf("pkg_dir is required")
	}
	if c.Build.RootDir == "" {
		return fmt.Errorf("root_dir is required")
	}

	abs, err := filepath.Abs(c.Build.PkgDir)
	if err != nil {
		return fmt.Errorf("resolve pkg_dir %q: %w", c.Build.PkgDir, err)
	}
	c.Build.PkgDir = abs

	abs, err = filepath.Abs(c.Build.RootDir)
	if err != nil {
		return fmt.Errorf("resolve root_dir %q: %w", c.Build.RootDir, err)
	}
	c.Build.RootDir = abs

	return nil
}
