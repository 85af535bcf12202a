package resilience

import (
	"context"
	"time"
)

// Executor composes multiple resilience patterns around one logical
// endpoint's calls.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout adds a per-attempt timeout to the executor.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds timeout with custom config to the executor.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	return e.circuitBreaker
}

// pattern is anything that can wrap an operation, which is all five
// resilience primitives.
type pattern interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// Execute runs the operation through the configured patterns, innermost
// first: timeout, retry, circuit breaker, bulkhead, rate limiter. Absent
// patterns are skipped.
//
// The circuit breaker wraps the retry loop, never the reverse: a retried
// attempt that internally fails three times is one counted failure, not
// three.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	layers := []pattern{}
	if e.timeout != nil {
		layers = append(layers, e.timeout)
	}
	if e.retry != nil {
		layers = append(layers, e.retry)
	}
	if e.circuitBreaker != nil {
		layers = append(layers, e.circuitBreaker)
	}
	if e.bulkhead != nil {
		layers = append(layers, e.bulkhead)
	}
	if e.rateLimiter != nil {
		layers = append(layers, e.rateLimiter)
	}

	execute := op
	for _, layer := range layers {
		inner, outer := execute, layer
		execute = func(ctx context.Context) error {
			return outer.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
