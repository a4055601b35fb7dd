// Package config loads the logfetch configuration file.
// Configuration lives in a TOML file, by default
// ~/.logfetch/config.toml; the OAuth token can also come from the
// LOGFETCH_TOKEN environment variable, which takes precedence so
// tokens can stay out of files entirely.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// EnvToken is the environment variable overriding the configured token.
const EnvToken = "LOGFETCH_TOKEN"

// Config is the full logfetch configuration.
type Config struct {
	// Token is the Yandex OAuth token used for all API calls.
	Token string `toml:"token"`

	// CounterID is the Metrika counter whose logs are exported.
	CounterID int64 `toml:"counter_id"`

	// BaseURL overrides the API root. Empty means the production
	// endpoint.
	BaseURL string `toml:"base_url"`

	Log    LogConfig    `toml:"log"`
	Export ExportConfig `toml:"export"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	// Default: info.
	Level string `toml:"level"`

	// Format is "console" or "json". Default: console.
	Format string `toml:"format"`
}

// ExportConfig carries the export session defaults. Zero values fall
// back to the documented service defaults.
type ExportConfig struct {
	// PollIntervalSeconds is the wait between status polls.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`

	// OverallTimeoutSeconds bounds polling one request to a
	// terminal status.
	OverallTimeoutSeconds int `toml:"overall_timeout_seconds"`

	// MaxRetryAttempts bounds transport retries per operation.
	MaxRetryAttempts int `toml:"max_retry_attempts"`

	// RetryBaseDelaySeconds is the delay before the first retry.
	RetryBaseDelaySeconds int `toml:"retry_base_delay_seconds"`

	// PartConcurrency bounds simultaneous part downloads.
	PartConcurrency int `toml:"part_concurrency"`

	// KeepAfterFetch leaves the prepared data on the service after
	// a successful download. Default: false (clean up).
	KeepAfterFetch bool `toml:"keep_after_fetch"`
}

// DefaultPath returns the default config file location,
// ~/.logfetch/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".logfetch", "config.toml"), nil
}

// Load reads and validates the config file at path. A missing file is
// not an error when the token and counter id are available elsewhere,
// so Load starts from an empty config in that case.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// proceed with env/flag-provided values
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if token := os.Getenv(EnvToken); token != "" {
		cfg.Token = token
	}

	return &cfg, nil
}

// Validate checks that the config is complete enough to make API
// calls.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required (set it in the config file or %s)", EnvToken)
	}
	if c.CounterID <= 0 {
		return errors.New("counter_id is required")
	}
	return nil
}
