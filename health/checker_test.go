package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResultConstructors(t *testing.T) {
	probeErr := errors.New("breaker open")

	tests := []struct {
		name       string
		result     Result
		wantStatus Status
		wantErr    error
	}{
		{"healthy", Healthy("token valid"), StatusHealthy, nil},
		{"degraded", Degraded("no token, using fallback auth"), StatusDegraded, nil},
		{"unhealthy", Unhealthy("circuit open", probeErr), StatusUnhealthy, probeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.wantStatus)
			}
			if tt.result.Message == "" {
				t.Error("Message should carry the constructor argument")
			}
			if tt.result.Error != tt.wantErr {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.wantErr)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should be stamped at construction")
			}
		})
	}
}

func TestResult_WithDetails(t *testing.T) {
	result := Healthy("ok").WithDetails(map[string]any{"tickets.list": "closed"})

	if result.Details["tickets.list"] != "closed" {
		t.Errorf("Details[tickets.list] = %v, want %q", result.Details["tickets.list"], "closed")
	}
}

func TestResult_WithDuration(t *testing.T) {
	result := Healthy("ok").WithDuration(100 * time.Millisecond)

	if result.Duration != 100*time.Millisecond {
		t.Errorf("Duration = %v, want 100ms", result.Duration)
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("probe", func(ctx context.Context) Result {
		return Healthy("from func")
	})

	if checker.Name() != "probe" {
		t.Errorf("Name() = %q, want %q", checker.Name(), "probe")
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Check() Status = %v, want StatusHealthy", result.Status)
	}
	if result.Message != "from func" {
		t.Errorf("Check() Message = %q, want %q", result.Message, "from func")
	}
}

func TestCheckerFunc_ObservesContext(t *testing.T) {
	checker := NewCheckerFunc("probe", func(ctx context.Context) Result {
		select {
		case <-ctx.Done():
			return Unhealthy("cancelled", ctx.Err())
		default:
			return Healthy("ok")
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if result := checker.Check(ctx); result.Status != StatusUnhealthy {
		t.Errorf("Check() Status = %v, want StatusUnhealthy", result.Status)
	}
}
