// Package health provides health checking primitives for session
// infrastructure.
//
// This package implements a generic health checking framework plus
// checkers for the pieces of a credential/session stack: circuit
// breaker state, credential config files, and live sessions. It
// provides interfaces for defining health checks, aggregating results
// from multiple checkers, and exposing health status via HTTP
// endpoints.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The
// Status type represents the health state: Healthy, Degraded, or
// Unhealthy.
//
// # Basic Usage
//
//	// Watch circuit breaker state for a profile's operations
//	brk := health.NewBreakerChecker(session.Registry())
//
//	result := brk.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("circuit open: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single
// composite check:
//
//	agg := health.NewAggregator()
//	agg.Register("breakers", health.NewBreakerChecker(registry))
//	agg.Register("config", health.NewVaultChecker(v))
//	agg.Register("session", health.NewSessionChecker(supervisor, "default"))
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
//
// # History
//
// The aggregator retains a bounded history of results per checker,
// readable through Aggregator.History or the /health/history endpoint.
// History makes a flapping session visible after the fact: a probe that
// is healthy right now says nothing about the last hour.
package health
