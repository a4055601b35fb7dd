package metrika

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/halcyon-labs/logfetch-cli/internal/core/ports/driven"
)

// Client talks to the Logs API for one counter. It owns the
// authenticated HTTP transport, the proactive rate limiter and the
// retry policy; the per-endpoint methods live in api.go.
//
// The underlying connection pool is shared by all concurrent calls on
// one Client, which is safe for concurrent use.
type Client struct {
	cfg           Config
	tokenProvider driven.TokenProvider
	rateLimiter   *rateLimiter
	retry         *retryPolicy
	log           zerolog.Logger

	mu   sync.Mutex
	http *http.Client
}

// NewClient creates a Logs API client. The HTTP client is initialized
// lazily so the token is only fetched when a call is actually made.
func NewClient(cfg Config, tokenProvider driven.TokenProvider, log zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:           cfg,
		tokenProvider: tokenProvider,
		rateLimiter:   newRateLimiter(),
		retry:         newRetryPolicy(cfg.MaxAttempts, cfg.RetryBaseDelay, log),
		log:           log,
	}, nil
}

// ensureClient initializes the authenticated HTTP client if not
// already done.
func (c *Client) ensureClient(ctx context.Context) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http != nil {
		return c.http, nil
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("get token: empty token")
	}

	// TokenType "OAuth" yields the header form Metrika expects:
	// "Authorization: OAuth <token>".
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "OAuth"})
	hc := oauth2.NewClient(context.WithoutCancel(ctx), ts)
	hc.Timeout = c.cfg.Timeout
	c.http = hc

	return c.http, nil
}

// counterURL builds an endpoint URL under the counter's API root.
func (c *Client) counterURL(path string, query url.Values) string {
	u := c.cfg.BaseURL + strconv.FormatInt(c.cfg.CounterID, 10) + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// send issues a single HTTP attempt and returns the response body.
// No retry logic here; callers route through the retry policy.
// Non-2xx statuses are mapped to typed errors: 429 to [*RateLimitError],
// everything else to [*APIError].
func (c *Client) send(ctx context.Context, method, endpoint string) ([]byte, error) {
	httpClient, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp), URL: endpoint}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiMessage(body),
			URL:        endpoint,
		}
	}

	return body, nil
}

// call routes one logical operation through the retry policy and
// decodes the JSON response into out when out is non-nil.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, out any) error {
	endpoint := c.counterURL(path, query)

	var body []byte
	err := c.retry.Do(ctx, op, func(ctx context.Context) error {
		var sendErr error
		body, sendErr = c.send(ctx, method, endpoint)
		return sendErr
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// apiMessage extracts the human-readable message from a Metrika error
// body, falling back to the raw body.
func apiMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Errors  []struct {
			ErrorType string `json:"error_type"`
			Message   string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}
	const maxRaw = 512
	if len(body) > maxRaw {
		body = body[:maxRaw]
	}
	return string(body)
}
