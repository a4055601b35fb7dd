// Package logging builds the zerolog logger used across logfetch.
// The CLI runs one-shot, so logs go to stderr and stay out of the
// way of the exported document on stdout.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from the config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels and
// "json" | "console" formats. Verbose forces debug-level console
// output regardless of config.
func New(level, format string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	var logger zerolog.Logger
	if strings.ToLower(format) == "json" && !verbose {
		logger = zerolog.New(os.Stderr)
	} else {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(out)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests and embedders that bring
// their own logging.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
