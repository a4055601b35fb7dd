package metrika

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetryAfter(t *testing.T) {
	resp := func(value string) *http.Response {
		r := &http.Response{Header: http.Header{}}
		if value != "" {
			r.Header.Set(HeaderRetryAfter, value)
		}
		return r
	}

	t.Run("seconds value", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, parseRetryAfter(resp("30")))
	})

	t.Run("http date value", func(t *testing.T) {
		at := time.Now().Add(time.Minute).UTC()
		d := parseRetryAfter(resp(at.Format(http.TimeFormat)))
		assert.Greater(t, d, 50*time.Second)
		assert.LessOrEqual(t, d, time.Minute)
	})

	t.Run("absent or malformed header", func(t *testing.T) {
		assert.Zero(t, parseRetryAfter(resp("")))
		assert.Zero(t, parseRetryAfter(resp("soon")))
		assert.Zero(t, parseRetryAfter(resp("-5")))
	})
}

func TestRateLimiterWait(t *testing.T) {
	t.Run("allows an initial burst without blocking", func(t *testing.T) {
		limiter := newRateLimiter()
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		for i := 0; i < ProactiveBurst; i++ {
			require.NoError(t, limiter.Wait(ctx))
		}
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		limiter := newRateLimiter()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Drain the burst first so Wait would actually block.
		for i := 0; i < ProactiveBurst; i++ {
			_ = limiter.bucket.Allow()
		}
		assert.Error(t, limiter.Wait(ctx))
	})
}
