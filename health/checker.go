package health

import (
	"context"
	"time"
)

// Status grades a component: healthy, degraded, or unhealthy.
type Status int

const (
	// StatusHealthy means the component is working normally.
	StatusHealthy Status = iota
	// StatusDegraded means the component works but with reduced capability,
	// for example a session running without a token after refresh exhaustion.
	StatusDegraded
	// StatusUnhealthy means the component is not usable.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Checker probes one component and reports its status.
type Checker interface {
	// Name identifies this checker in aggregated output.
	Name() string

	// Check probes the component. It must not block past ctx.
	Check(ctx context.Context) Result
}

// Result is the outcome of a single probe.
type Result struct {
	// Status is the graded outcome.
	Status Status

	// Message is a short human-readable explanation.
	Message string

	// Details carries per-component metadata, such as breaker states
	// keyed by operation name.
	Details map[string]any

	// Duration is how long the probe took.
	Duration time.Duration

	// Timestamp is when the probe ran.
	Timestamp time.Time

	// Error is set when the probe found a failure.
	Error error
}

// Healthy builds a StatusHealthy result stamped with the current time.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Degraded builds a StatusDegraded result stamped with the current time.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy builds a StatusUnhealthy result carrying err.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// WithDetails returns a copy of the result carrying details.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns a copy of the result carrying the probe duration.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc wraps fn as a named Checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
