package metrika

import (
	"errors"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the management API root. The counter id and
	// endpoint path are appended per request.
	DefaultBaseURL = "https://api-metrika.yandex.net/management/v1/counter/"

	// DefaultTimeout is the default HTTP request timeout. Part
	// downloads can be large, so this is generous.
	DefaultTimeout = 5 * time.Minute
)

// Config holds the connector configuration for one counter.
type Config struct {
	// CounterID is the Metrika counter whose logs are exported.
	CounterID int64

	// BaseURL overrides the API root, mainly for tests.
	// Default: DefaultBaseURL.
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	// Default: DefaultTimeout.
	Timeout time.Duration

	// MaxAttempts bounds retries per logical operation.
	// Default: DefaultMaxAttempts.
	MaxAttempts int

	// RetryBaseDelay is the delay before the first retry.
	// Default: DefaultRetryBaseDelay.
	RetryBaseDelay time.Duration
}

// Validate checks the config and fills in defaults.
func (c *Config) Validate() error {
	if c.CounterID <= 0 {
		return errors.New("metrika: counter id is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	return nil
}
