// Package resilience provides resilience patterns for remote management API calls.
//
// This package implements the fault-tolerance layer shared by all sessions:
// failures are classified, transient ones are retried, and persistently
// unhealthy endpoints are short-circuited so callers fail fast.
//
// # Error classification
//
// Every error that crosses this package carries a Kind:
//
//   - Transient: network or service failure. Retried, and counted by the
//     circuit breaker when the whole retry sequence fails.
//
//   - Validation: the caller supplied bad input. Never retried, never
//     counted by the breaker.
//
//   - Auth: the backend rejected credentials. Never retried here; the
//     token layer reacts by forcing a refresh.
//
// Unclassified errors are treated conservatively: not retried, but counted
// by the breaker.
//
// # Patterns
//
//   - Circuit Breaker: stops calling a failing endpoint after a threshold,
//     letting one trial call through after a cooldown.
//
//   - Retry: retries transient failures with exponential backoff. The
//     backoff sleep shares the caller's context deadline.
//
//   - Rate Limiter: bounds the call rate against a throttled backend.
//
//   - Bulkhead: bounds in-flight calls per endpoint.
//
//   - Timeout: bounds the duration of a single attempt.
//
// # Composition
//
// The Executor composes patterns in a fixed order: the circuit breaker
// wraps the retry loop, so the breaker observes only the aggregate outcome
// of a fully retried attempt, never each sub-attempt:
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  3,
//	        ResetTimeout: 30 * time.Second,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxAttempts:  3,
//	        InitialDelay: time.Second,
//	    })),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return resilience.Transient(callManagementAPI(ctx))
//	})
//
// A Registry holds one executor per logical operation name, so one failing
// endpoint's breaker never affects calls to an unrelated endpoint:
//
//	reg := resilience.NewRegistry(nil)
//	err := reg.Execute(ctx, "node.power", powerOn)
package resilience
