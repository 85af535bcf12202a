package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy selects how the delay grows between attempts.
type BackoffStrategy int

const (
	// BackoffExponential doubles the delay each attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear increases delay linearly.
	BackoffLinear
	// BackoffConstant uses the same delay for all retries.
	BackoffConstant
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 1s
	InitialDelay time.Duration

	// MaxDelay caps the maximum delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier for exponential backoff.
	// Default: 2.0
	Multiplier float64

	// Strategy is the backoff strategy.
	// Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter adds randomness to delays to prevent thundering herd.
	// Default: false
	Jitter bool

	// RetryIf determines if an error should trigger a retry.
	// Default: only transient errors are retried. Validation and auth
	// errors are surfaced immediately.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry reruns a failed operation with backoff between attempts.
//
// The sleep between attempts is context-aware: the retry loop consumes
// from the caller's deadline budget instead of extending it.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry handler, applying defaults for zero fields.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = IsTransient
	}

	return &Retry{config: config}
}

// Execute runs op until it succeeds, a non-retryable error surfaces, or
// the attempt budget runs out. On exhaustion the last error is returned
// unchanged, so its classification survives for the circuit breaker above.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

func (r *Retry) calculateDelay(attempt int) time.Duration {
	var delay time.Duration

	switch r.config.Strategy {
	case BackoffConstant:
		delay = r.config.InitialDelay

	case BackoffLinear:
		delay = r.config.InitialDelay * time.Duration(attempt)

	case BackoffExponential:
		multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
		delay = time.Duration(float64(r.config.InitialDelay) * multiplier)
	}

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if r.config.Jitter && delay > 0 {
		// Up to 25% extra, non-cryptographic.
		// #nosec G404
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}

	return delay
}

// Config returns the applied configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
