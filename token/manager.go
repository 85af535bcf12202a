package token

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/sessionkit/observe"
	"github.com/jonwraymond/sessionkit/resilience"
)

// ManagerConfig configures the token lifecycle manager.
type ManagerConfig struct {
	// Source acquires fresh tokens. Required.
	Source Source

	// Profile names the connection profile this manager serves,
	// for logs and metrics only.
	Profile string

	// RefreshBuffer is the safety margin subtracted from the token's
	// expiry; refresh fires once now enters that window.
	// Default: 300s
	RefreshBuffer time.Duration

	// DefaultLifetime is used when an acquired token has no expiry set.
	// Default: 3600s
	DefaultLifetime time.Duration

	// MaxAttempts is the number of acquisition attempts per refresh.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the backoff before the first retry; it doubles
	// each attempt. Default: 1s (giving delays of 1s, 2s).
	InitialDelay time.Duration

	// Logger reports refresh outcomes. Token values are never logged.
	Logger observe.Logger

	// Metrics records refresh attempts. Optional.
	Metrics observe.Metrics
}

// Manager owns one profile's bearer token.
//
// A nil *Manager is a valid no-lifecycle manager: every method is a no-op
// returning the zero value. Session setups that authenticate with a
// static API key use a nil manager, since static keys have no lifecycle.
type Manager struct {
	config ManagerConfig
	retry  *resilience.Retry

	mu      sync.RWMutex
	current *Token

	sfGroup singleflight.Group // collapses concurrent refreshes
}

// NewManager creates a token lifecycle manager.
func NewManager(config ManagerConfig) *Manager {
	// Apply defaults
	if config.RefreshBuffer <= 0 {
		config.RefreshBuffer = 5 * time.Minute
	}
	if config.DefaultLifetime <= 0 {
		config.DefaultLifetime = time.Hour
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}

	return &Manager{
		config: config,
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  config.MaxAttempts,
			InitialDelay: config.InitialDelay,
			Multiplier:   2.0,
			Strategy:     resilience.BackoffExponential,
		}),
	}
}

// State derives the current token's lifecycle state from the wall clock.
func (m *Manager) State() State {
	if m == nil {
		return StateNoToken
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.StateAt(time.Now(), m.config.RefreshBuffer)
}

// Bearer returns the current token value, or "" when none is held.
// It does not trigger a refresh; use EnsureValid for that.
func (m *Manager) Bearer() string {
	if m == nil {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Value
}

// EnsureValid returns a usable token value, refreshing first when the
// held token is missing, expired, or inside the refresh buffer.
//
// Concurrent callers observing a stale token share a single acquisition.
// When every acquisition attempt fails the token is left unset and "" is
// returned: the session degrades to its fallback auth rather than
// failing here (see the package comment for the policy).
func (m *Manager) EnsureValid(ctx context.Context) string {
	if m == nil {
		return ""
	}

	// Fast path: a valid token needs no lock beyond the read lock.
	m.mu.RLock()
	tok := m.current
	m.mu.RUnlock()
	if tok.StateAt(time.Now(), m.config.RefreshBuffer) == StateValid {
		return tok.Value
	}

	// Collapse the thundering herd: one refresh, shared by everyone
	// who observed the stale token.
	m.sfGroup.Do("refresh", func() (any, error) {
		m.refresh(ctx)
		return nil, nil
	})

	return m.Bearer()
}

// Invalidate drops the held token so the next EnsureValid refreshes.
// The session layer calls this when the backend answers 401 despite a
// token this manager considered valid.
func (m *Manager) Invalidate() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// refresh acquires a new token through the retry policy and stores it.
// Runs inside the singleflight group.
func (m *Manager) refresh(ctx context.Context) {
	// Re-check: the flight we joined may have refreshed already.
	m.mu.RLock()
	state := m.current.StateAt(time.Now(), m.config.RefreshBuffer)
	m.mu.RUnlock()
	if state == StateValid {
		return
	}

	var acquired *Token
	err := m.retry.Execute(ctx, func(ctx context.Context) error {
		tok, err := m.config.Source.Acquire(ctx)
		if err != nil {
			return err
		}
		acquired = tok
		return nil
	})

	m.config.Metrics.RecordTokenRefresh(ctx, m.config.Profile, err)

	if err != nil {
		// Soft degradation: leave the token unset and let the next
		// request surface the failure through its own auth path.
		m.mu.Lock()
		m.current = nil
		m.mu.Unlock()
		m.config.Logger.Warn(ctx, "token refresh failed; continuing without bearer token",
			observe.Field{Key: "profile", Value: m.config.Profile},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	now := time.Now()
	if acquired.IssuedAt.IsZero() {
		acquired.IssuedAt = now
	}
	if acquired.ExpiresAt.IsZero() {
		acquired.ExpiresAt = acquired.IssuedAt.Add(m.config.DefaultLifetime)
	}

	m.mu.Lock()
	m.current = acquired
	m.mu.Unlock()

	m.config.Logger.Debug(ctx, "token refreshed",
		observe.Field{Key: "profile", Value: m.config.Profile},
		observe.Field{Key: "expires_at", Value: acquired.ExpiresAt.UTC().Format(time.RFC3339)},
	)
}
