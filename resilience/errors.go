package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	// It is a control-flow signal, not a call failure: the wrapped
	// function was never invoked, and the breaker does not count it.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when max retry attempts are exhausted.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrRateLimitExceeded is returned when the rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// Kind classifies a call failure for retry and breaker accounting.
type Kind int

const (
	// KindUnknown is an unclassified error. Not retried, counted by the breaker.
	KindUnknown Kind = iota
	// KindTransient is a network or service failure. Retried and counted.
	KindTransient
	// KindValidation is a caller error. Never retried, never counted.
	KindValidation
	// KindAuth is a credential rejection. Not retried here, not counted.
	KindAuth
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// classifiedError tags an error with a Kind while preserving the original
// error for errors.Is/As chains.
type classifiedError struct {
	kind Kind
	err  error
}

func (e *classifiedError) Error() string { return e.err.Error() }
func (e *classifiedError) Unwrap() error { return e.err }

func classify(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{kind: kind, err: err}
}

// Transient marks err as a transient network/service failure.
// Returns nil if err is nil.
func Transient(err error) error {
	return classify(KindTransient, err)
}

// Validation marks err as a caller-input error.
// Returns nil if err is nil.
func Validation(err error) error {
	return classify(KindValidation, err)
}

// Auth marks err as a credential rejection by the backend.
// Returns nil if err is nil.
func Auth(err error) error {
	return classify(KindAuth, err)
}

// KindOf returns the Kind recorded on err, walking the wrapped chain.
// Unclassified errors (including nil) report KindUnknown.
func KindOf(err error) Kind {
	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.kind
	}
	return KindUnknown
}

// IsTransient reports whether err is classified as transient.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsValidation reports whether err is classified as a caller error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsAuth reports whether err is classified as a credential rejection.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
