package services

import "time"

const (
	// DefaultPollInterval is the fixed wait between status polls.
	DefaultPollInterval = 10 * time.Second

	// DefaultOverallTimeout bounds the whole polling phase of one
	// request, independent of each poll call's own retry budget.
	DefaultOverallTimeout = time.Hour

	// DefaultPartConcurrency bounds simultaneous part downloads.
	DefaultPartConcurrency = 4
)

// Options configures an export session.
type Options struct {
	// PollInterval is the wait between status polls.
	// Default: DefaultPollInterval.
	PollInterval time.Duration

	// OverallTimeout is the outer deadline for polling one request
	// to a terminal status. Exceeding it fails the export with
	// [domain.ErrPollTimeout]. Default: DefaultOverallTimeout.
	OverallTimeout time.Duration

	// PartConcurrency is the maximum number of parts downloaded at
	// once. Default: DefaultPartConcurrency.
	PartConcurrency int

	// CleanupAfterFetch removes the remote request after a
	// successful download. Best effort: a cleanup failure is logged
	// and never invalidates the obtained document. Default: true.
	CleanupAfterFetch bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() Options {
	return Options{
		PollInterval:      DefaultPollInterval,
		OverallTimeout:    DefaultOverallTimeout,
		PartConcurrency:   DefaultPartConcurrency,
		CleanupAfterFetch: true,
	}
}

// normalize fills zero values with defaults.
func (o Options) normalize() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = DefaultOverallTimeout
	}
	if o.PartConcurrency < 1 {
		o.PartConcurrency = DefaultPartConcurrency
	}
	return o
}
