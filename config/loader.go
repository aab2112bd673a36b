package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Loader handles configuration loading with defaults and environment overrides.
type Loader struct {
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		validation: true,
		envPrefix:  "EDISTREAMS",
	}
}

// EnableValidation enables or disables configuration validation.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single JSON file. Fields absent from
// the file keep their defaults. Passing an empty path returns defaults with
// environment overrides applied.
func (l *Loader) LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
// EDISTREAMS_NATS_URLS takes precedence over file-supplied URLs.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if urls := os.Getenv(l.envPrefix + "_NATS_URLS"); urls != "" {
		cfg.NATS.URLs = strings.Split(urls, ",")
	}
	if subject := os.Getenv(l.envPrefix + "_SUBJECT"); subject != "" {
		cfg.Input.Subject = subject
	}
}
