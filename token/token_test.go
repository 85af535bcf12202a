package token

import (
	"testing"
	"time"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateNoToken, "no-token"},
		{StateValid, "valid"},
		{StateNearExpiry, "near-expiry"},
		{StateExpired, "expired"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_NeedsRefresh(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateNoToken, true},
		{StateValid, false},
		{StateNearExpiry, true},
		{StateExpired, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.NeedsRefresh(); got != tt.want {
				t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToken_StateAt(t *testing.T) {
	now := time.Now()
	buffer := 300 * time.Second

	tests := []struct {
		name  string
		token *Token
		want  State
	}{
		{"nil token", nil, StateNoToken},
		{"empty value", &Token{}, StateNoToken},
		{
			"valid well before buffer",
			&Token{Value: "t", ExpiresAt: now.Add(3600 * time.Second)},
			StateValid,
		},
		{
			"inside refresh buffer",
			&Token{Value: "t", ExpiresAt: now.Add(240 * time.Second)},
			StateNearExpiry,
		},
		{
			"exactly at buffer edge",
			&Token{Value: "t", ExpiresAt: now.Add(buffer)},
			StateNearExpiry,
		},
		{
			"just outside buffer",
			&Token{Value: "t", ExpiresAt: now.Add(buffer + time.Second)},
			StateValid,
		},
		{
			"exactly at expiry",
			&Token{Value: "t", ExpiresAt: now},
			StateExpired,
		},
		{
			"past expiry",
			&Token{Value: "t", ExpiresAt: now.Add(-time.Second)},
			StateExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.StateAt(now, buffer); got != tt.want {
				t.Errorf("StateAt() = %v, want %v", got, tt.want)
			}
		})
	}
}
