package metrika

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRetryExhausted wraps the last transient failure once the retry
// budget for a single operation is spent.
var ErrRetryExhausted = errors.New("metrika: retry attempts exhausted")

// APIError represents a non-2xx Logs API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("metrika: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// RateLimitError represents a 429 response. RetryAfter is the server's
// suggested delay, zero when the header was absent or unparsable.
type RateLimitError struct {
	RetryAfter time.Duration
	URL        string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("metrika: rate limited, retry after %s (URL: %s)", e.RetryAfter, e.URL)
	}
	return fmt.Sprintf("metrika: rate limited (URL: %s)", e.URL)
}

// IsRetryable reports whether the error is a transient failure worth
// another attempt: a connection/timeout error, a 5xx response, or a
// 429. Context cancellation and other 4xx responses are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	// Anything else that reached us is a transport-level failure
	// (connection refused, reset, timeout).
	return true
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimited *RateLimitError
	return errors.As(err, &rateLimited)
}

// IsNotFound checks if the error indicates a missing request id.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an invalid token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// retryAfter extracts the server-suggested delay from an error, if any.
func retryAfter(err error) time.Duration {
	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter
	}
	return 0
}
