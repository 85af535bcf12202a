package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution metrics for session calls and token lifecycle.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records a session call with duration and error status.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordTokenRefresh records a token acquisition attempt.
	RecordTokenRefresh(ctx context.Context, profile string, err error)

	// RecordBreakerTransition records a circuit breaker state change.
	RecordBreakerTransition(ctx context.Context, operation, from, to string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter          metric.Meter
	callCount      metric.Int64Counter
	callErrors     metric.Int64Counter
	callDuration   metric.Float64Histogram
	tokenRefreshes metric.Int64Counter
	breakerChanges metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	callCount, err := meter.Int64Counter(
		"session.call.total",
		metric.WithDescription("Total number of session calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callErrors, err := meter.Int64Counter(
		"session.call.errors",
		metric.WithDescription("Total number of failed session calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"session.call.duration_ms",
		metric.WithDescription("Session call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	tokenRefreshes, err := meter.Int64Counter(
		"session.token.refreshes",
		metric.WithDescription("Total number of token acquisition attempts"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	breakerChanges, err := meter.Int64Counter(
		"session.breaker.transitions",
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		callCount:      callCount,
		callErrors:     callErrors,
		callDuration:   callDuration,
		tokenRefreshes: tokenRefreshes,
		breakerChanges: breakerChanges,
	}, nil
}

// RecordCall records metrics for a session call.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("session.call", meta.CallID()),
		attribute.String("session.operation", meta.Operation),
	}

	if meta.Profile != "" {
		attrs = append(attrs, attribute.String("session.profile", meta.Profile))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.callCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.callErrors.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.callDuration.Record(ctx, durationMs, opt)
}

// RecordTokenRefresh records a token acquisition attempt.
func (m *metricsImpl) RecordTokenRefresh(ctx context.Context, profile string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("session.profile", profile),
		attribute.Bool("session.refresh.ok", err == nil),
	}
	m.tokenRefreshes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBreakerTransition records a circuit breaker state change.
func (m *metricsImpl) RecordBreakerTransition(ctx context.Context, operation, from, to string) {
	attrs := []attribute.KeyValue{
		attribute.String("session.operation", operation),
		attribute.String("breaker.from", from),
		attribute.String("breaker.to", to),
	}
	m.breakerChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordTokenRefresh(ctx context.Context, profile string, err error) {}

func (m *noopMetrics) RecordBreakerTransition(ctx context.Context, operation, from, to string) {}
