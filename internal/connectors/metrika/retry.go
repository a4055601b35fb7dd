package metrika

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxAttempts is the maximum number of attempts for one
	// logical operation, the first attempt included.
	DefaultMaxAttempts = 5

	// DefaultRetryBaseDelay is the delay before the first retry.
	DefaultRetryBaseDelay = time.Second

	// DefaultRetryMaxDelay caps the exponential backoff.
	DefaultRetryMaxDelay = 60 * time.Second
)

// retryPolicy re-runs an operation on transient failures with
// exponential backoff and jitter. Permanent failures propagate on the
// first attempt; a spent budget surfaces [ErrRetryExhausted] wrapping
// the last transient error.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	log         zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryPolicy(maxAttempts int, baseDelay time.Duration, log zerolog.Logger) *retryPolicy {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}
	return &retryPolicy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    DefaultRetryMaxDelay,
		log:         log,
		sleep:       sleepContext,
	}
}

// Do runs fn until it succeeds, fails permanently, or the attempt
// budget is spent. The delay before attempt n doubles from the base
// delay with randomized jitter, capped at maxDelay; a server-provided
// Retry-After takes precedence over the computed backoff.
func (p *retryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = p.baseDelay
	schedule.MaxInterval = p.maxDelay
	schedule.Multiplier = 2
	schedule.MaxElapsedTime = 0 // attempts are bounded by count, not wall time
	schedule.Reset()

	var lastErr error
	for attempt := 1; ; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt >= p.maxAttempts {
			break
		}

		delay := schedule.NextBackOff()
		if serverDelay := retryAfter(lastErr); serverDelay > 0 {
			delay = serverDelay
		}

		p.log.Warn().
			Str("op", op).
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(lastErr).
			Msg("transient failure, retrying")

		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %s failed after %d attempts: %w", ErrRetryExhausted, op, p.maxAttempts, lastErr)
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
