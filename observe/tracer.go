package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta contains metadata about a session call for telemetry purposes.
type CallMeta struct {
	Profile   string // connection profile name (may be empty for single-profile setups)
	Operation string // logical operation name (required)
	Endpoint  string // remote endpoint host (optional)
	Method    string // HTTP method (optional)
}

// SpanName returns the deterministic span name for this call.
// Format: session.call.<profile>.<operation> or session.call.<operation>
func (m CallMeta) SpanName() string {
	if m.Profile != "" {
		return "session.call." + m.Profile + "." + m.Operation
	}
	return "session.call." + m.Operation
}

// CallID returns the fully qualified call identifier.
func (m CallMeta) CallID() string {
	if m.Profile != "" {
		return m.Profile + "." + m.Operation
	}
	return m.Operation
}

// Tracer wraps OpenTelemetry tracing with session-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a session call.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with call metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	spanName := meta.SpanName()

	attrs := []attribute.KeyValue{
		attribute.String("session.call", meta.CallID()),
		attribute.String("session.operation", meta.Operation),
		attribute.Bool("session.error", false), // Will be updated in EndSpan if error
	}

	if meta.Profile != "" {
		attrs = append(attrs, attribute.String("session.profile", meta.Profile))
	}
	if meta.Endpoint != "" {
		attrs = append(attrs, attribute.String("session.endpoint", meta.Endpoint))
	}
	if meta.Method != "" {
		attrs = append(attrs, attribute.String("http.method", meta.Method))
	}

	ctx, span := t.tracer.Start(ctx, spanName,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("session.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
