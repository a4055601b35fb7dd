package driven

import "context"

// TokenProvider supplies access tokens for authenticated API calls.
// Implementations may refresh or re-read the token transparently;
// the connector asks again on every client (re)initialization.
type TokenProvider interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for a fixed, pre-issued token, the
// common case for Metrika where tokens are long-lived.
type StaticToken string

// GetToken returns the fixed token.
func (t StaticToken) GetToken(context.Context) (string, error) {
	return string(t), nil
}
