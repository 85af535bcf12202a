package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/sessionkit/resilience"
	"github.com/jonwraymond/sessionkit/session"
	"github.com/jonwraymond/sessionkit/vault"
)

// BreakerChecker reports health based on circuit breaker states in a
// resilience registry. Any open breaker makes the check unhealthy; a
// half-open breaker (recovery probe in progress) degrades it.
type BreakerChecker struct {
	registry *resilience.Registry
}

// NewBreakerChecker creates a checker over the registry's breakers.
func NewBreakerChecker(registry *resilience.Registry) *BreakerChecker {
	return &BreakerChecker{registry: registry}
}

// Name returns the checker name.
func (c *BreakerChecker) Name() string {
	return "breakers"
}

// Check inspects every breaker the registry has built so far.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	states := c.registry.States()
	if len(states) == 0 {
		return Healthy("no operations executed yet")
	}

	details := make(map[string]any, len(states))
	open := 0
	halfOpen := 0
	for op, state := range states {
		details[op] = state.String()
		switch state {
		case resilience.StateOpen:
			open++
		case resilience.StateHalfOpen:
			halfOpen++
		}
	}

	switch {
	case open > 0:
		return Unhealthy(fmt.Sprintf("%d of %d breakers open", open, len(states)), ErrCheckFailed).WithDetails(details)
	case halfOpen > 0:
		return Degraded(fmt.Sprintf("%d of %d breakers half-open", halfOpen, len(states))).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("all %d breakers closed", len(states))).WithDetails(details)
	}
}

// VaultChecker reports whether a credential config file is present and
// structurally valid. It never decrypts: no master password is needed
// to run the check, and no secret material appears in the result.
type VaultChecker struct {
	vault *vault.Vault
}

// NewVaultChecker creates a checker for the given vault.
func NewVaultChecker(v *vault.Vault) *VaultChecker {
	return &VaultChecker{vault: v}
}

// Name returns the checker name.
func (c *VaultChecker) Name() string {
	return "vault"
}

// Check verifies the config file without decrypting it.
func (c *VaultChecker) Check(ctx context.Context) Result {
	details := map[string]any{"path": c.vault.Path()}

	err := c.vault.Verify()
	switch {
	case err == nil:
		return Healthy("config file valid").WithDetails(details)
	case errors.Is(err, vault.ErrNotFound):
		return Degraded("config file not yet created").WithDetails(details)
	default:
		return Unhealthy("config file invalid", err).WithDetails(details)
	}
}

// SessionChecker reports the state of a supervised profile: whether a
// session has been initialized and, for token-authenticated profiles,
// the token lifecycle state.
type SessionChecker struct {
	supervisor *session.Supervisor
	profile    string
}

// NewSessionChecker creates a checker for one profile under the
// supervisor. It never triggers initialization; an uninitialized
// profile reports degraded, not unhealthy.
func NewSessionChecker(supervisor *session.Supervisor, profile string) *SessionChecker {
	return &SessionChecker{supervisor: supervisor, profile: profile}
}

// Name returns the checker name.
func (c *SessionChecker) Name() string {
	return "session:" + c.profile
}

// Check peeks at the profile's slot without initializing it.
func (c *SessionChecker) Check(ctx context.Context) Result {
	sess := c.supervisor.Peek(c.profile)
	if sess == nil {
		return Degraded("session not initialized")
	}

	details := map[string]any{"profile": c.profile}
	if tokens := sess.Tokens(); tokens != nil {
		state := tokens.State()
		details["token_state"] = state.String()
		if state.NeedsRefresh() {
			return Degraded("token needs refresh").WithDetails(details)
		}
	}

	return Healthy("session active").WithDetails(details)
}
