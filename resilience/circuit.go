package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects every call without invoking the operation.
	StateOpen
	// StateHalfOpen lets a bounded number of probe calls through to see
	// whether the backend recovered.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of counted failures before opening the circuit.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long to wait before attempting recovery.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the max trial requests allowed in half-open state.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: transient and unclassified errors count; validation and
	// auth errors never count, nor does ErrCircuitOpen itself.
	IsFailure func(err error) bool
}

// defaultIsFailure counts only errors that signal an unhealthy backend.
// Validation errors are the caller's fault and auth errors mean the backend
// is up but the credentials are wrong; neither says anything about health.
func defaultIsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	switch KindOf(err) {
	case KindValidation, KindAuth:
		return false
	}
	return true
}

// CircuitBreaker implements the circuit breaker pattern for one logical
// endpoint. It lives for the process lifetime, independent of any session.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	lastFailure   time.Time
	halfOpenCount int
}

// NewCircuitBreaker creates a breaker, applying defaults for zero fields.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = defaultIsFailure
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker.
// When the circuit is open the operation is never invoked and
// ErrCircuitOpen is returned immediately.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the breaker closed and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCount = 0

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.currentStateLocked()

	switch state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		cb.halfOpenCount++
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failures++
			cb.lastFailure = time.Now()
			if cb.failures >= cb.config.MaxFailures {
				cb.setState(StateOpen)
			}
		} else if err == nil {
			// Reset failure count on success. An uncounted error
			// (validation, auth) leaves the count untouched.
			cb.failures = 0
		}

	case StateHalfOpen:
		if isFailure {
			cb.lastFailure = time.Now() // restart the open-state clock
			cb.setState(StateOpen)
		} else {
			cb.successes++
			// The backend responded, even if with an uncounted error
			// (validation, auth). That is enough to close the circuit.
			cb.setState(StateClosed)
			cb.failures = 0
			cb.successes = 0
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.state = StateHalfOpen
		cb.halfOpenCount = 0
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

func (cb *CircuitBreaker) setState(state State) {
	cb.state = state
	if state == StateHalfOpen {
		cb.halfOpenCount = 0
	}
}

// Metrics returns a snapshot of the breaker counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.currentStateLocked(),
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
	}
}

// CircuitBreakerMetrics is a point-in-time view of breaker counters.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	Successes   int
	LastFailure time.Time
}
