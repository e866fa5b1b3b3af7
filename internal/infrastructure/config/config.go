// Package config loads and saves workspace-local settings from
// .shuttle/config.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/shuttle/pkg/storage"
)

// Config stores workspace-local knobs that do not belong in the task
// ledger.
type Config struct {
	Git     GitConfig     `yaml:"git"`
	Apply   ApplyConfig   `yaml:"apply"`
	Context ContextConfig `yaml:"context"`
}

type GitConfig struct {
	// CommitPrefix is prepended to the task name in commit messages.
	CommitPrefix string `yaml:"commit_prefix"`
}

type ApplyConfig struct {
	// AutoConfirmOverwrites skips the interactive prompt when a CREATE
	// block targets an existing file.
	AutoConfirmOverwrites bool `yaml:"auto_confirm_overwrites"`

	// WatchDebounceMS is the quiet window for apply --watch, in
	// milliseconds.
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

type ContextConfig struct {
	// Excludes are glob patterns pruned from every context walk.
	Excludes []string `yaml:"excludes"`
}

// Default returns the configuration shuttle init writes.
func Default() *Config {
	return &Config{
		Apply: ApplyConfig{WatchDebounceMS: 500},
		Context: ContextConfig{
			Excludes: []string{".git", ".shuttle", "node_modules", "vendor", "*.lock"},
		},
	}
}

// Load reads the workspace config. A missing file returns (nil, nil);
// callers fall back to Default.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the workspace config.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
