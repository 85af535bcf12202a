package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
var (
	// ErrMissingOperation indicates an empty logical operation name.
	ErrMissingOperation = errors.New("session: operation name is required")

	// ErrMissingBaseURL indicates a config without a backend endpoint.
	ErrMissingBaseURL = errors.New("session: base URL is required")

	// ErrAuthFailed indicates the backend rejected the session's
	// credentials even after a forced token refresh.
	ErrAuthFailed = errors.New("session: authentication rejected by backend")

	// ErrUnknownAuthMode indicates an unrecognized auth_mode value.
	ErrUnknownAuthMode = errors.New("session: unknown auth mode")
)

// APIError describes a non-2xx response from the backend. It is always
// wrapped in a resilience kind before leaving this package.
type APIError struct {
	Operation  string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("session: %s: backend returned status %d", e.Operation, e.StatusCode)
}
