package resilience

import (
	"context"
	"sync"
)

// BuildFunc constructs the executor for a logical operation name.
type BuildFunc func(operation string) *Executor

// Registry owns one Executor, and therefore one circuit breaker, per
// logical operation name. Executors are created on first use and live for
// the process lifetime, so one failing endpoint's breaker never affects
// calls to an unrelated endpoint sharing the same session.
type Registry struct {
	mu        sync.Mutex
	executors map[string]*Executor
	build     BuildFunc
}

// NewRegistry creates a registry. A nil build func installs DefaultBuild.
func NewRegistry(build BuildFunc) *Registry {
	if build == nil {
		build = DefaultBuild
	}
	return &Registry{
		executors: make(map[string]*Executor),
		build:     build,
	}
}

// DefaultBuild constructs an executor with a circuit breaker wrapping a
// transient-only retry, using package defaults.
func DefaultBuild(operation string) *Executor {
	return NewExecutor(
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})),
		WithRetry(NewRetry(RetryConfig{})),
	)
}

// Executor returns the executor for operation, creating it on first use.
func (r *Registry) Executor(operation string) *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.executors[operation]; ok {
		return e
	}
	e := r.build(operation)
	r.executors[operation] = e
	return e
}

// Execute runs op through the executor registered for operation.
func (r *Registry) Execute(ctx context.Context, operation string, op func(context.Context) error) error {
	return r.Executor(operation).Execute(ctx, op)
}

// Breaker returns the circuit breaker for operation, or nil if the
// operation's executor has none. The executor is created on first use.
func (r *Registry) Breaker(operation string) *CircuitBreaker {
	return r.Executor(operation).CircuitBreaker()
}

// States returns a snapshot of breaker states for all known operations.
// Operations whose executor has no breaker are omitted.
func (r *Registry) States() map[string]State {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make(map[string]State, len(r.executors))
	for name, e := range r.executors {
		if cb := e.CircuitBreaker(); cb != nil {
			states[name] = cb.State()
		}
	}
	return states
}
