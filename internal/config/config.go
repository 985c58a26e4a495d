// Package config loads the YAML settings file and writes it back with
// defaults on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/tasker/internal/plan"
	"github.com/sadopc/tasker/internal/store"
)

type Config struct {
	// DBPath overrides the default database location when non-empty.
	DBPath string `yaml:"db_path,omitempty"`

	// InitialDays is the size of the calendar window on startup.
	InitialDays int `yaml:"initial_days"`

	// HistoryScanDays caps how far back the history probe walks.
	HistoryScanDays int `yaml:"history_scan_days"`

	// DefaultDayType applies to days without an explicit assignment.
	DefaultDayType string `yaml:"default_day_type"`

	// Notifications toggles timer-completion notifications.
	Notifications bool `yaml:"notifications"`

	// TemplatePath and CompletionRoot locate the synced documents.
	TemplatePath   string `yaml:"template_path"`
	CompletionRoot string `yaml:"completion_root"`
}

func Default() Config {
	return Config{
		InitialDays:     7,
		HistoryScanDays: 60,
		DefaultDayType:  string(plan.DayTypeWork),
		Notifications:   true,
		TemplatePath:    "schedules/templates",
		CompletionRoot:  "completions",
	}
}

// DefaultPath returns ~/.config/tasker/config.yaml
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tasker", "config.yaml"), nil
}

// Load reads the config at path. A missing file is first run: the
// defaults are written there and returned. Out-of-range values are
// pulled back to their defaults rather than rejected.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return cfg, fmt.Errorf("write initial config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	encoded, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.InitialDays < 1 {
		c.InitialDays = defaults.InitialDays
	}
	if c.HistoryScanDays < 1 {
		c.HistoryScanDays = defaults.HistoryScanDays
	}
	if !plan.ValidDayType(c.DefaultDayType) {
		c.DefaultDayType = defaults.DefaultDayType
	}
	if c.TemplatePath == "" {
		c.TemplatePath = defaults.TemplatePath
	}
	if c.CompletionRoot == "" {
		c.CompletionRoot = defaults.CompletionRoot
	}
}

// ResolveDBPath returns the configured database path or the standard
// per-user location.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return store.DefaultDBPath()
}
