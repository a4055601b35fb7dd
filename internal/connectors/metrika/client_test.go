package metrika

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
	"github.com/halcyon-labs/logfetch-cli/internal/logging"
)

const testCounterID = 99

// newTestClient points a Client at a test server with fast retries.
func newTestClient(t *testing.T, srv *httptest.Server, maxAttempts int) *Client {
	t.Helper()
	client, err := NewClient(Config{
		CounterID:      testCounterID,
		BaseURL:        srv.URL + "/",
		MaxAttempts:    maxAttempts,
		RetryBaseDelay: time.Millisecond,
	}, driven.StaticToken("test-token"), logging.Nop())
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("requires a counter id", func(t *testing.T) {
		_, err := NewClient(Config{}, driven.StaticToken("t"), logging.Nop())
		assert.Error(t, err)
	})

	t.Run("fills config defaults", func(t *testing.T) {
		cfg := Config{CounterID: 1}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
		assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
		assert.Equal(t, DefaultTimeout, cfg.Timeout)
	})
}

func TestClientAuthentication(t *testing.T) {
	t.Run("sends the OAuth authorization header", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"requests":[]}`)
		}))
		defer srv.Close()

		client := newTestClient(t, srv, 1)
		_, err := client.ListRequests(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "OAuth test-token", gotAuth)
	})

	t.Run("rejects an empty token before any call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{}`)
		}))
		defer srv.Close()

		client := newTestClient(t, srv, 1)
		client.tokenProvider = driven.StaticToken("")
		_, err := client.ListRequests(context.Background())
		assert.Error(t, err)
	})
}

func TestClientErrorMapping(t *testing.T) {
	t.Run("4xx maps to APIError and is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"message":"Wrong parameter: date1","errors":[{"error_type":"invalid_parameter","message":"Wrong parameter: date1"}]}`)
		}))
		defer srv.Close()

		client := newTestClient(t, srv, 5)
		_, err := client.GetRequest(context.Background(), 1)
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "Wrong parameter: date1", apiErr.Message)
		assert.Equal(t, int32(1), calls.Load(), "client errors must propagate on the first attempt")
	})

	t.Run("5xx is retried until success", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) <= 4 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"log_request":{"request_id":7,"status":"created"}}`)
		}))
		defer srv.Close()

		client := newTestClient(t, srv, 5)
		req, err := client.GetRequest(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), req.RequestID)
		assert.Equal(t, int32(5), calls.Load())
	})

	t.Run("spent budget surfaces retry exhaustion", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := newTestClient(t, srv, 3)
		_, err := client.GetRequest(context.Background(), 7)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRetryExhausted)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr, "exhaustion wraps the last transport error")
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("429 maps to RateLimitError with the server delay", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(HeaderRetryAfter, "7")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := newTestClient(t, srv, 1)
		_, err := client.GetRequest(context.Background(), 7)
		require.Error(t, err)

		var rateLimited *RateLimitError
		require.ErrorAs(t, err, &rateLimited)
		assert.Equal(t, 7*time.Second, rateLimited.RetryAfter)
	})

	t.Run("context cancellation is not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := newTestClient(t, srv, 5)
		_, err := client.GetRequest(ctx, 7)
		require.Error(t, err)
		assert.LessOrEqual(t, calls.Load(), int32(1))
	})
}

func TestClientEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	prefix := fmt.Sprintf("/%d/", testCounterID)

	mux.HandleFunc(prefix+"logrequests/evaluate", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("date1"))
		assert.Equal(t, "2024-01-02", r.URL.Query().Get("date2"))
		assert.Equal(t, "visits", r.URL.Query().Get("source"))
		assert.Equal(t, "ym:s:visitID,ym:s:dateTime", r.URL.Query().Get("fields"))
		fmt.Fprint(w, `{"log_request_evaluation":{"possible":false,"max_possible_day_quantity":30,"expected_size":1024}}`)
	})
	mux.HandleFunc(prefix+"logrequests", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			fmt.Fprint(w, `{"log_request":{"request_id":123,"counter_id":99,"source":"visits","date1":"2024-01-01","date2":"2024-01-02","fields":["ym:s:visitID"],"status":"created"}}`)
		case http.MethodGet:
			fmt.Fprint(w, `{"requests":[{"request_id":1,"status":"processed"},{"request_id":2,"status":"created"}]}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc(prefix+"logrequest/123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"log_request":{"request_id":123,"status":"processed","size":42,"parts":[{"part_number":0,"size":20},{"part_number":1,"size":22}]}}`)
	})
	mux.HandleFunc(prefix+"logrequest/123/part/1/download", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "col1\tcol2\nv1\tv2\n")
	})
	mux.HandleFunc(prefix+"logrequest/123/cancel", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"log_request":{"request_id":123,"status":"canceled"}}`)
	})
	mux.HandleFunc(prefix+"logrequest/123/clean", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"log_request":{"request_id":123,"status":"cleaned_by_user"}}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := newTestClient(t, srv, 1)
	ctx := context.Background()

	spec := domain.ExportSpec{
		Source:   domain.SourceVisits,
		DateFrom: mustDay(t, "2024-01-01"),
		DateTo:   mustDay(t, "2024-01-02"),
		Fields:   []string{"ym:s:visitID", "ym:s:dateTime"},
	}

	t.Run("evaluate", func(t *testing.T) {
		eval, err := client.Evaluate(ctx, spec)
		require.NoError(t, err)
		assert.False(t, eval.Possible)
		assert.Equal(t, 30, eval.MaxDays)
		assert.Equal(t, int64(1024), eval.ExpectedSize)
	})

	t.Run("create request", func(t *testing.T) {
		req, err := client.CreateRequest(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, int64(123), req.RequestID)
		assert.Equal(t, domain.StatusCreated, req.Status)
		assert.Equal(t, mustDay(t, "2024-01-01"), req.DateFrom)
	})

	t.Run("get request decodes parts", func(t *testing.T) {
		req, err := client.GetRequest(ctx, 123)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessed, req.Status)
		require.Len(t, req.Parts, 2)
		assert.Equal(t, domain.Part{Number: 1, Size: 22}, req.Parts[1])
	})

	t.Run("list requests", func(t *testing.T) {
		requests, err := client.ListRequests(ctx)
		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, domain.StatusProcessed, requests[0].Status)
	})

	t.Run("download part returns the raw body", func(t *testing.T) {
		body, err := client.DownloadPart(ctx, 123, 1)
		require.NoError(t, err)
		assert.Equal(t, "col1\tcol2\nv1\tv2\n", string(body))
	})

	t.Run("cancel request", func(t *testing.T) {
		assert.NoError(t, client.CancelRequest(ctx, 123))
	})

	t.Run("clean request", func(t *testing.T) {
		assert.NoError(t, client.CleanRequest(ctx, 123))
	})
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return day
}
