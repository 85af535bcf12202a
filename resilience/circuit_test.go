package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	if cb.config.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cb.config.MaxFailures)
	}
	if cb.config.ResetTimeout != 30*time.Second {
		t.Errorf("ResetTimeout = %v, want 30s", cb.config.ResetTimeout)
	}
	if cb.config.HalfOpenMaxRequests != 1 {
		t.Errorf("HalfOpenMaxRequests = %d, want 1", cb.config.HalfOpenMaxRequests)
	}
	if cb.State() != StateClosed {
		t.Errorf("initial State() = %v, want StateClosed", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3})
	boom := Transient(errors.New("boom"))

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("State() = %v, want StateOpen", cb.State())
	}

	// Open circuit rejects without invoking the operation
	called := false
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("operation should not run while circuit is open")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3})
	boom := Transient(errors.New("boom"))

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})

	if got := cb.Metrics().Failures; got != 0 {
		t.Errorf("Failures after success = %d, want 0", got)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want StateClosed", cb.State())
	}
}

func TestCircuitBreaker_ValidationAndAuthNeverCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})

	for i := 0; i < 10; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return Validation(errors.New("bad request"))
		})
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return Auth(errors.New("bad credentials"))
		})
	}

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want StateClosed after uncounted errors", cb.State())
	}
}

func TestCircuitBreaker_UncountedErrorLeavesFailuresUntouched(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3})
	boom := Transient(errors.New("boom"))

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return Validation(errors.New("bad request"))
	})

	if got := cb.Metrics().Failures; got != 2 {
		t.Errorf("Failures = %d, want 2 (validation error is neither failure nor success)", got)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
	})
	boom := Transient(errors.New("boom"))

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want StateOpen", cb.State())
	}

	time.Sleep(30 * time.Millisecond)

	if cb.State() != StateHalfOpen {
		t.Fatalf("State() = %v, want StateHalfOpen after reset timeout", cb.State())
	}

	// Successful probe closes the circuit
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("probe Execute() error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want StateClosed after successful probe", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
	})
	boom := Transient(errors.New("boom"))

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return boom
	})
	time.Sleep(30 * time.Millisecond)

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if cb.State() != StateOpen {
		t.Errorf("State() = %v, want StateOpen after failed probe", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenUncountedErrorCloses(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
	})

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return Transient(errors.New("boom"))
	})
	time.Sleep(30 * time.Millisecond)

	// The backend answered the probe, even though the answer was an
	// auth error. The circuit must not get stuck half-open.
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return Auth(errors.New("bad credentials"))
	})
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want StateClosed after answered probe", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:         1,
		ResetTimeout:        20 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return Transient(errors.New("boom"))
	})
	time.Sleep(30 * time.Millisecond)

	// First probe slot taken by a slow in-flight request
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})
	}()

	// Give the goroutine time to claim the probe slot
	time.Sleep(10 * time.Millisecond)

	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second probe error = %v, want ErrCircuitOpen", err)
	}

	close(release)
	<-done
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 20 * time.Millisecond,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return Transient(errors.New("boom"))
	})
	time.Sleep(30 * time.Millisecond)
	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transitions[%d] = %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})

	_ = cb.Execute(context.Background(), func(ctx context.Context) error {
		return Transient(errors.New("boom"))
	})
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want StateOpen", cb.State())
	}

	cb.Reset()

	if cb.State() != StateClosed {
		t.Errorf("State() after Reset = %v, want StateClosed", cb.State())
	}
	if err := cb.Execute(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("Execute() after Reset error = %v", err)
	}
}
