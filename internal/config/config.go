// Package config handles the XDG configuration directory, the taskpad.toml
// file and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "taskpad"

	// ConfigFile is the TOML configuration filename.
	ConfigFile = "taskpad.toml"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// LogFile is the debug log filename.
	LogFile = "taskpad.log"
)

// Config holds backend settings and configuration paths.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// URL is the backend project URL (e.g. https://xyz.supabase.co).
	URL string `toml:"url"`

	// AnonKey is the backend's public API key, sent as the apikey header.
	AnonKey string `toml:"anon_key"`

	// Debug enables debug logging to the log file.
	Debug bool `toml:"debug"`
}

// Load builds a Config from the config file and environment.
// Priority: taskpad.toml, then TASKPAD_* environment variables.
// If configDir is empty, uses XDG_CONFIG_HOME/taskpad or $HOME/.config/taskpad.
func Load(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		if v := os.Getenv("TASKPAD_CONFIG_DIR"); v != "" {
			dir = v
		} else {
			dir = DefaultConfigDir()
		}
	}

	cfg := &Config{Dir: dir}

	path := cfg.ConfigFilePath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", path, err)
		}
		cfg.Dir = dir // the file must not relocate itself
	}

	if v := os.Getenv("TASKPAD_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("TASKPAD_ANON_KEY"); v != "" {
		cfg.AnonKey = v
	}

	return cfg, nil
}

// Validate checks that the backend settings are present.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("backend url not set (taskpad.toml or TASKPAD_URL)")
	}
	if c.AnonKey == "" {
		return fmt.Errorf("backend anon key not set (taskpad.toml or TASKPAD_ANON_KEY)")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigFilePath returns the path to the TOML configuration file.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// LogPath returns the path to the debug log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}
