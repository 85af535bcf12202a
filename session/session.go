package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/sessionkit/observe"
	"github.com/jonwraymond/sessionkit/resilience"
	"github.com/jonwraymond/sessionkit/token"
)

// maxErrorBody caps how much of an error response body is retained.
const maxErrorBody = 64 * 1024

// Config configures a Session.
type Config struct {
	// Profile names this connection profile.
	Profile string

	// BaseURL is the backend endpoint, e.g. "https://mgmt.example.net".
	// Required.
	BaseURL string

	// Mode selects the auth scheme. Default: ModeToken.
	Mode AuthMode

	// BearerHeader is the header carrying the token in ModeToken.
	// Default: "Authorization" (with "Bearer " prefix). A vendor
	// header carries the bare token.
	BearerHeader string

	// APIKeyHeader is the header carrying the static key.
	// Default: "X-API-Key"
	APIKeyHeader string

	// APIKey is the static key for ModeAPIKey, or the fallback key for
	// ModeToken. Held in memory only.
	APIKey string

	// Tokens manages the bearer token lifecycle. Nil for modes without
	// a lifecycle (a nil manager is a no-op).
	Tokens *token.Manager

	// Registry supplies per-operation executors. If nil, a registry
	// with default breakers and transient-only retry is created.
	Registry *resilience.Registry

	// HTTPClient is the underlying client; its transport is wrapped
	// with auth header injection. If nil, a default client with 30s
	// timeout is used.
	HTTPClient *http.Client

	// Logger reports call outcomes. Default: discard.
	Logger observe.Logger

	// Tracer and Metrics instrument calls. Default: no-op.
	Tracer  observe.Tracer
	Metrics observe.Metrics
}

// Request describes one logical call against the backend.
type Request struct {
	// Method is the HTTP method. Default: GET.
	Method string

	// Path is joined onto the session's base URL.
	Path string

	// Query is appended to the URL.
	Query url.Values

	// Body is JSON-encoded when non-nil.
	Body any

	// Header carries extra headers; auth headers are attached by the
	// session and must not be set here.
	Header http.Header
}

// Response is the outcome of a successful call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("session: empty response body")
	}
	return json.Unmarshal(r.Body, v)
}

// Session is an authenticated handle to one remote backend. Safe for
// concurrent use: calls against an established session need no locking
// and proceed fully in parallel.
type Session struct {
	config   Config
	client   *http.Client
	registry *resilience.Registry
	mw       *observe.Middleware
}

// New creates a Session from config.
func New(config Config) (*Session, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if config.BearerHeader == "" {
		config.BearerHeader = DefaultBearerHeader
	}
	if config.APIKeyHeader == "" {
		config.APIKeyHeader = DefaultAPIKeyHeader
	}
	if config.Registry == nil {
		config.Registry = resilience.NewRegistry(nil)
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}

	base := config.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	inner := base.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}

	client := &http.Client{
		Timeout: base.Timeout,
		Jar:     base.Jar,
		Transport: &authTransport{
			base:         inner,
			mode:         config.Mode,
			bearerHeader: config.BearerHeader,
			apiKeyHeader: config.APIKeyHeader,
			apiKey:       config.APIKey,
			tokens:       config.Tokens,
		},
	}

	s := &Session{
		config:   config,
		client:   client,
		registry: config.Registry,
	}
	if config.Tracer != nil {
		s.mw = observe.NewMiddleware(config.Tracer, config.Metrics, config.Logger)
	}
	return s, nil
}

// Profile returns the profile name this session serves.
func (s *Session) Profile() string {
	return s.config.Profile
}

// Registry returns the session's resilience registry.
func (s *Session) Registry() *resilience.Registry {
	return s.registry
}

// Tokens returns the session's token manager. May be nil.
func (s *Session) Tokens() *token.Manager {
	return s.config.Tokens
}

// Call executes one logical operation against the backend.
//
// The call runs through the resilience executor registered for
// operation: the circuit breaker rejects immediately when the endpoint is
// judged unhealthy, and transient failures are retried within the
// caller's deadline. Errors carry a resilience kind; callers are expected
// to branch on resilience.ErrCircuitOpen rather than treat it as fatal.
func (s *Session) Call(ctx context.Context, operation string, req Request) (*Response, error) {
	if strings.TrimSpace(operation) == "" {
		return nil, resilience.Validation(ErrMissingOperation)
	}

	meta := observe.CallMeta{
		Profile:   s.config.Profile,
		Operation: operation,
		Endpoint:  s.config.BaseURL,
		Method:    req.Method,
	}

	run := func(ctx context.Context, _ observe.CallMeta, _ any) (any, error) {
		var resp *Response
		err := s.registry.Execute(ctx, operation, func(ctx context.Context) error {
			r, err := s.do(ctx, operation, req)
			if err != nil {
				return err
			}
			resp = r
			return nil
		})
		return resp, err
	}

	var (
		result any
		err    error
	)
	if s.mw != nil {
		result, err = s.mw.Wrap(run)(ctx, meta, req)
	} else {
		result, err = run(ctx, meta, req)
	}
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}

// do performs one attempt, replaying once after a forced token refresh
// when the backend answers 401.
func (s *Session) do(ctx context.Context, operation string, req Request) (*Response, error) {
	resp, err := s.roundTrip(ctx, req)
	if err != nil {
		return nil, resilience.Transient(err)
	}

	if resp.StatusCode == http.StatusUnauthorized && s.config.Mode == ModeToken && s.config.Tokens != nil {
		// The token this session considered valid was rejected.
		// Invalidate it, let the transport acquire a fresh one, and
		// replay exactly once.
		s.config.Tokens.Invalidate()
		s.config.Logger.Debug(ctx, "token rejected by backend, replaying after forced refresh",
			observe.Field{Key: "operation", Value: operation},
		)
		resp, err = s.roundTrip(ctx, req)
		if err != nil {
			return nil, resilience.Transient(err)
		}
	}

	return s.classify(operation, resp)
}

// roundTrip builds and executes the HTTP request.
func (s *Session) roundTrip(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := strings.TrimRight(s.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("session: encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("session: build request: %w", err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	var reader io.Reader = httpResp.Body
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		// Error bodies are only kept for diagnostics; cap them.
		reader = io.LimitReader(httpResp.Body, maxErrorBody)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("session: read response: %w", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// classify maps an HTTP outcome onto the resilience error taxonomy.
func (s *Session) classify(operation string, resp *Response) (*Response, error) {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return resp, nil

	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, resilience.Auth(fmt.Errorf("%w: status %d", ErrAuthFailed, code))

	case code == http.StatusTooManyRequests || code >= 500:
		return nil, resilience.Transient(&APIError{
			Operation:  operation,
			StatusCode: code,
			Body:       resp.Body,
		})

	default:
		// Remaining 4xx: the caller's input was bad. Never retried,
		// never counted by the breaker.
		return nil, resilience.Validation(&APIError{
			Operation:  operation,
			StatusCode: code,
			Body:       resp.Body,
		})
	}
}
