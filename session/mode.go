package session

import (
	"fmt"
	"net/http"

	"github.com/jonwraymond/sessionkit/token"
)

// AuthMode selects how outgoing calls are authenticated.
type AuthMode int

const (
	// ModeToken authenticates with a lifecycle-managed bearer token,
	// optionally falling back to a static API key when no token could
	// be acquired.
	ModeToken AuthMode = iota
	// ModeAPIKey authenticates with a static key header. Static keys
	// have no lifecycle and no refresh.
	ModeAPIKey
	// ModeNone sends unauthenticated requests.
	ModeNone
)

// String returns the string representation of the mode.
func (m AuthMode) String() string {
	switch m {
	case ModeToken:
		return "token"
	case ModeAPIKey:
		return "apikey"
	case ModeNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseAuthMode parses an auth_mode config value. Empty means ModeToken.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "", "token", "bearer":
		return ModeToken, nil
	case "apikey", "api_key":
		return ModeAPIKey, nil
	case "none":
		return ModeNone, nil
	default:
		return ModeToken, fmt.Errorf("%w: %q", ErrUnknownAuthMode, s)
	}
}

// Default header names.
const (
	// DefaultBearerHeader carries the token as "Bearer <token>".
	// A vendor-specific header configured instead carries the bare token.
	DefaultBearerHeader = "Authorization"

	// DefaultAPIKeyHeader carries a static API key.
	DefaultAPIKeyHeader = "X-API-Key"
)

// authTransport attaches authentication headers to outgoing requests.
// For ModeToken it consults the token manager before every request, so a
// request is never built with a token about to expire mid-flight.
type authTransport struct {
	base         http.RoundTripper
	mode         AuthMode
	bearerHeader string
	apiKeyHeader string
	apiKey       string
	tokens       *token.Manager
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())

	switch t.mode {
	case ModeToken:
		if tok := t.tokens.EnsureValid(req.Context()); tok != "" {
			if t.bearerHeader == DefaultBearerHeader {
				req.Header.Set(t.bearerHeader, "Bearer "+tok)
			} else {
				req.Header.Set(t.bearerHeader, tok)
			}
		} else if t.apiKey != "" {
			// Soft degradation: no token could be acquired, fall
			// back to the static key.
			req.Header.Set(t.apiKeyHeader, t.apiKey)
		}
	case ModeAPIKey:
		if t.apiKey != "" {
			req.Header.Set(t.apiKeyHeader, t.apiKey)
		}
	}

	return t.base.RoundTrip(req)
}

// Ensure authTransport implements http.RoundTripper
var _ http.RoundTripper = (*authTransport)(nil)
