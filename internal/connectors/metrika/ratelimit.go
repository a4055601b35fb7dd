package metrika

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the proactive throttle rate in requests per
	// second. The Logs API quota is per-counter and undocumented in
	// headers, so the connector stays conservative rather than
	// reacting to remaining-quota counters.
	ProactiveRate = 4.0

	// ProactiveBurst allows short bursts, e.g. the first wave of
	// concurrent part downloads.
	ProactiveBurst = 4

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// rateLimiter throttles outgoing requests with a token bucket.
// Unlike richer APIs, Metrika publishes no quota headers, so there is
// nothing to track reactively beyond 429 responses (handled by the
// retry policy via [RateLimitError]).
type rateLimiter struct {
	bucket *rate.Limiter
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), ProactiveBurst),
	}
}

// Wait blocks until it's safe to make a request.
func (r *rateLimiter) Wait(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// parseRetryAfter reads the Retry-After header from a 429 response.
// Returns zero when absent or unparsable.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get(HeaderRetryAfter)
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
