package token

import "time"

// State represents the lifecycle state of a bearer token.
type State int

const (
	// StateNoToken means no token is held.
	StateNoToken State = iota
	// StateValid means the token is usable and outside the refresh buffer.
	StateValid
	// StateNearExpiry means the token works but expires within the
	// refresh buffer. Treated the same as StateExpired: refresh now.
	StateNearExpiry
	// StateExpired means the token is past its expiry.
	StateExpired
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no-token"
	case StateValid:
		return "valid"
	case StateNearExpiry:
		return "near-expiry"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// NeedsRefresh reports whether this state calls for a refresh.
func (s State) NeedsRefresh() bool {
	return s != StateValid
}

// Token is a bearer token with its validity window.
// The Value is secret: never serialized, never logged.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// StateAt derives the lifecycle state at the given instant.
func (t *Token) StateAt(now time.Time, refreshBuffer time.Duration) State {
	if t == nil || t.Value == "" {
		return StateNoToken
	}
	if !now.Before(t.ExpiresAt) {
		return StateExpired
	}
	if !now.Before(t.ExpiresAt.Add(-refreshBuffer)) {
		return StateNearExpiry
	}
	return StateValid
}
