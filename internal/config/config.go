// Package config loads project settings from .regen.yml, with REGEN_*
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is a project's regeneration settings.
type Config struct {
	// Model is the path to the model snapshot YAML, relative to the
	// project root.
	Model string
	// Include and Exclude are doublestar glob patterns.
	Include []string
	Exclude []string
	// StateDir holds the engine's persistent state database.
	StateDir string
	// Workers bounds parallel per-file rewrites.
	Workers int
}

// Defaults that apply when .regen.yml says nothing.
var defaults = Config{
	Model:    "regen.model.yml",
	Include:  []string{"**/*"},
	Exclude:  []string{".git/**", ".regen/**", "node_modules/**", "vendor/**"},
	StateDir: ".regen",
	Workers:  4,
}

// Load reads .regen.yml from dir. A missing file yields the defaults; a
// malformed one is an error.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".regen")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.AutomaticEnv()
	v.SetEnvPrefix("REGEN")

	v.SetDefault("model", defaults.Model)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("state_dir", defaults.StateDir)
	v.SetDefault("workers", defaults.Workers)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .regen.yml: %w", err)
		}
	}

	cfg := &Config{
		Model:    v.GetString("model"),
		Include:  v.GetStringSlice("include"),
		Exclude:  v.GetStringSlice("exclude"),
		StateDir: v.GetString("state_dir"),
		Workers:  v.GetInt("workers"),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

// StateFile returns the state database path under root without creating
// anything, for read-only consumers.
func (c *Config) StateFile(root string) string {
	return filepath.Join(root, c.StateDir, "state.db")
}

// StatePath returns the state database path under root, creating the
// state directory if needed.
func (c *Config) StatePath(root string) (string, error) {
	dir := filepath.Join(root, c.StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating state dir: %w", err)
	}
	return c.StateFile(root), nil
}

// ModelPath returns the model snapshot path under root.
func (c *Config) ModelPath(root string) string {
	if filepath.IsAbs(c.Model) {
		return c.Model
	}
	return filepath.Join(root, c.Model)
}
