package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveHealth(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func staticAggregator(name string, result Result) *Aggregator {
	agg := NewAggregator()
	agg.Register(name, NewCheckerFunc(name, func(ctx context.Context) Result {
		return result
	}))
	return agg
}

func TestLivenessHandler(t *testing.T) {
	rec := serveHealth(t, LivenessHandler(), "/healthz")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "OK")
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", rec.Header().Get("Content-Type"))
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "OK"},
		{"degraded still ready", Degraded("no token"), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("breaker open", nil), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := staticAggregator("session", tt.result)
			rec := serveHealth(t, ReadinessHandler(agg), "/readyz")

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := staticAggregator("breakers", Healthy("all closed").WithDetails(map[string]any{
		"tickets.list": "closed",
	}))

	rec := serveHealth(t, DetailedHandler(agg), "/health")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", rec.Header().Get("Content-Type"))
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", response.Status)
	}
	if response.Timestamp == "" {
		t.Error("Timestamp should be set")
	}
	check, ok := response.Checks["breakers"]
	if !ok {
		t.Fatal("Checks should contain breakers")
	}
	if check.Status != "healthy" {
		t.Errorf("check status = %q, want healthy", check.Status)
	}
	if check.Details["tickets.list"] != "closed" {
		t.Errorf("check details = %v, want breaker state map", check.Details)
	}
}

func TestDetailedHandler_Unhealthy(t *testing.T) {
	agg := staticAggregator("breakers", Unhealthy("breaker open", ErrCheckFailed))

	rec := serveHealth(t, DetailedHandler(agg), "/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if response.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", response.Status)
	}
	if response.Checks["breakers"].Error == "" {
		t.Error("check error message should be included")
	}
}

func TestDetailedHandler_SlowCheckTimesOut(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(200 * time.Millisecond)
		return Healthy("ok")
	}))

	rec := serveHealth(t, DetailedHandler(agg), "/health")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d for timed out check", rec.Code, http.StatusServiceUnavailable)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", response.Status)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	agg := staticAggregator("vault", Healthy("config readable"))

	rec := serveHealth(t, SingleCheckHandler(agg, "vault"), "/health/vault")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", response.Status)
	}
}

func TestSingleCheckHandler_NotFound(t *testing.T) {
	agg := NewAggregator()

	rec := serveHealth(t, SingleCheckHandler(agg, "missing"), "/health/missing")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSingleCheckHandler_Unhealthy(t *testing.T) {
	agg := staticAggregator("vault", Unhealthy("config corrupt", ErrCheckFailed))

	rec := serveHealth(t, SingleCheckHandler(agg, "vault"), "/health/vault")

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHistoryHandler(t *testing.T) {
	agg := NewAggregator()

	n := 0
	agg.Register("session", NewCheckerFunc("session", func(ctx context.Context) Result {
		n++
		if n == 1 {
			return Degraded("no token")
		}
		return Healthy("token valid")
	}))

	for i := 0; i < 2; i++ {
		if _, err := agg.Check(context.Background(), "session"); err != nil {
			t.Fatalf("Check() error = %v", err)
		}
	}

	rec := serveHealth(t, HistoryHandler(agg), "/health/history?check=session")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if response.Check != "session" {
		t.Errorf("Check = %q, want session", response.Check)
	}
	if len(response.Results) != 2 {
		t.Fatalf("got %d history entries, want 2", len(response.Results))
	}
	if response.Results[0].Status != "degraded" || response.Results[1].Status != "healthy" {
		t.Errorf("history = [%s %s], want [degraded healthy]",
			response.Results[0].Status, response.Results[1].Status)
	}
}

func TestHistoryHandler_UnknownChecker(t *testing.T) {
	agg := NewAggregator()

	rec := serveHealth(t, HistoryHandler(agg), "/health/history?check=missing")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHistoryHandler_DoesNotProbe(t *testing.T) {
	agg := NewAggregator()

	probes := 0
	agg.Register("session", NewCheckerFunc("session", func(ctx context.Context) Result {
		probes++
		return Healthy("ok")
	}))

	rec := serveHealth(t, HistoryHandler(agg), "/health/history?check=session")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if probes != 0 {
		t.Errorf("checker ran %d times, history must not trigger probes", probes)
	}

	var response HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Results) != 0 {
		t.Errorf("got %d history entries, want 0", len(response.Results))
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	agg := staticAggregator("session", Healthy("ok"))

	RegisterHandlers(mux, agg)

	paths := []string{"/healthz", "/readyz", "/health", "/health/history?check=session"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
