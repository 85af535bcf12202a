package observe

import (
	"context"
	"time"
)

// CallFunc is the signature for session call functions.
// This is the standard function signature that Middleware wraps.
type CallFunc func(ctx context.Context, meta CallMeta, req any) (any, error)

// Middleware wraps session calls with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CallFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Request/response values are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a CallFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn CallFunc) CallFunc {
	return func(ctx context.Context, meta CallMeta, req any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		result, err := fn(ctx, meta, req)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordCall(ctx, meta, duration, err)

		callLogger := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			callLogger.Error(ctx, "session call failed", fields...)
		} else {
			callLogger.Info(ctx, "session call completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// NewCallMetrics creates a Metrics instance from an Observer.
// Components that record individual counters (token refresh, breaker
// transitions) use this instead of the full middleware.
func NewCallMetrics(obs Observer) (Metrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return newMetrics(obs.Meter())
}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics {
	return &noopMetrics{}
}
