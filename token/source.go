package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/sessionkit/resilience"
)

// Source acquires a fresh bearer token from the backend.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Acquire must honor cancellation/deadlines.
// - Errors: failures must carry a resilience kind. Transient failures are
//   retried by the Manager; auth rejections are not.
type Source interface {
	Acquire(ctx context.Context) (*Token, error)
}

// SourceFunc is an adapter to allow use of ordinary functions as Sources.
type SourceFunc func(ctx context.Context) (*Token, error)

// Acquire calls f.
func (f SourceFunc) Acquire(ctx context.Context) (*Token, error) {
	return f(ctx)
}

// EndpointSourceConfig configures the login-endpoint token source.
type EndpointSourceConfig struct {
	// URL is the login endpoint.
	URL string

	// Username and Password are the credentials posted to the endpoint.
	// Password is the decrypted vault secret; it is held in memory only.
	Username string
	Password string

	// DefaultLifetime is used when the endpoint does not declare
	// expires_in and the token carries no parseable expiry.
	// Default: 3600s
	DefaultLifetime time.Duration

	// HTTPClient is the client used for the login call.
	// If nil, a default client with 30s timeout is used.
	HTTPClient *http.Client
}

// EndpointSource acquires tokens from a REST login endpoint that answers
// with {"token": "...", "expires_in": <seconds>}.
type EndpointSource struct {
	config EndpointSourceConfig
}

// NewEndpointSource creates a login-endpoint token source.
func NewEndpointSource(config EndpointSourceConfig) *EndpointSource {
	// Apply defaults
	if config.DefaultLifetime <= 0 {
		config.DefaultLifetime = time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &EndpointSource{config: config}
}

// loginRequest is the login endpoint request body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the login endpoint response body.
type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Acquire posts the credentials and returns the issued token.
//
// Error classification: network failures, 5xx, and 429 are transient;
// 400/401/403 is a definitive credential rejection and is never retried.
func (s *EndpointSource) Acquire(ctx context.Context) (*Token, error) {
	body, err := json.Marshal(loginRequest{
		Username: s.config.Username,
		Password: s.config.Password,
	})
	if err != nil {
		return nil, resilience.Validation(fmt.Errorf("token: encode login request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, resilience.Validation(fmt.Errorf("token: create login request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.config.HTTPClient.Do(req)
	if err != nil {
		return nil, resilience.Transient(fmt.Errorf("token: login call: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, resilience.Auth(fmt.Errorf("token: login rejected: status %d", resp.StatusCode))
	default:
		return nil, resilience.Transient(fmt.Errorf("token: login failed: status %d", resp.StatusCode))
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, resilience.Transient(fmt.Errorf("token: decode login response: %w", err))
	}
	if lr.Token == "" {
		return nil, resilience.Transient(fmt.Errorf("token: login response carried no token"))
	}

	now := time.Now()
	tok := &Token{
		Value:    lr.Token,
		IssuedAt: now,
	}

	switch {
	case lr.ExpiresIn > 0:
		tok.ExpiresAt = now.Add(time.Duration(lr.ExpiresIn) * time.Second)
	default:
		// No declared lifetime. A JWT may carry its own exp claim;
		// parse it unverified as an expiry hint only.
		if exp, ok := jwtExpiry(lr.Token); ok {
			tok.ExpiresAt = exp
		} else {
			tok.ExpiresAt = now.Add(s.config.DefaultLifetime)
		}
	}

	return tok, nil
}

// jwtExpiry extracts the exp claim from a JWT without verifying the
// signature. The expiry is scheduling metadata here, not a trust
// decision; verification belongs to the backend that issued it.
func jwtExpiry(raw string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Ensure EndpointSource implements Source
var _ Source = (*EndpointSource)(nil)
