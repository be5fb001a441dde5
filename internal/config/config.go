// Package config loads feedward's TOML configuration, writing a default
// file on first run. Environment variables override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Feeds  FeedsConfig  `toml:"feeds"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// FeedsConfig holds fetch pipeline settings.
type FeedsConfig struct {
	// RefreshIntervalMinutes is how often the background loop re-fetches
	// every subscription. Zero disables the loop; feeds still refresh on
	// subscribe and on demand.
	RefreshIntervalMinutes int `toml:"refresh_interval_minutes"`
}

const defaultConfigContent = `[server]
port = 8080

[feeds]
refresh_interval_minutes = 60     # 0 disables background refresh
`

// Load reads and parses the TOML config from the given path. If the file
// does not exist, a default config file is created there first. Environment
// variables (FEEDWARD_PORT, FEEDWARD_REFRESH_INTERVAL_MINUTES) take highest
// priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return nil, fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields. A refresh
// interval of zero is a meaningful value (loop disabled), so only the port
// gets a fallback here; the default config file carries the 60-minute
// interval for fresh installs.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEEDWARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FEEDWARD_REFRESH_INTERVAL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			cfg.Feeds.RefreshIntervalMinutes = minutes
		}
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}
	if cfg.Feeds.RefreshIntervalMinutes < 0 {
		return fmt.Errorf("invalid feeds.refresh_interval_minutes %d: must be >= 0", cfg.Feeds.RefreshIntervalMinutes)
	}
	return nil
}
