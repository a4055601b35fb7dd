// Package metrika implements the Logs API connector for Yandex Metrika.
//
// The Logs API materializes raw visit/hit logs asynchronously: the
// client submits a request for a date range and field set, the service
// prepares the data in the background, and the result is downloaded in
// numbered parts. This package owns the HTTP side of that workflow and
// implements [driven.LogsAPI]; lifecycle orchestration (polling,
// concurrent part download, cleanup) lives in core/services.
//
// # Architecture
//
//   - Client: authenticated HTTP transport with per-endpoint methods
//   - retryPolicy: bounded exponential backoff around every call
//   - rateLimiter: proactive token-bucket throttle
//   - APIError / RateLimitError: typed transport failures
//
// # Authentication
//
// Requests carry an OAuth token in the Authorization header
// ("Authorization: OAuth <token>"). Tokens are long-lived and issued
// out of band; the connector obtains them from a [driven.TokenProvider].
//
// # Error Handling
//
// Each endpoint method performs retries internally, so callers see a
// single outcome per logical operation:
//
//   - Network errors and 5xx responses: retried with exponential backoff
//   - 429 responses: retried, honouring the server's Retry-After delay
//   - Other 4xx responses: reported immediately as [*APIError]
//   - Spent retry budget: reported as [ErrRetryExhausted], wrapping the
//     last transient failure
package metrika
