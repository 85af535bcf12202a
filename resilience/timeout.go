package resilience

import (
	"context"
	"time"
)

// TimeoutConfig configures the per-attempt timeout.
type TimeoutConfig struct {
	// Timeout is the maximum duration for one attempt.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout bounds a single call attempt. It layers a child deadline on the
// caller's context, so an overall deadline still wins when shorter.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout wrapper, applying the default for a zero
// duration.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs op under the attempt deadline. Hitting the deadline returns
// ErrTimeout; a cancelled parent context returns its own error. The op
// goroutine keeps running after a timeout, so op must honor its context.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// Config returns the applied configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
