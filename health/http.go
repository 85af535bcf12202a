package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler answers liveness probes. It reports only that the
// process is up; it never runs checkers.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler answers readiness probes by running every registered
// checker. Degraded still reads ready: a session limping along without a
// token should not be pulled out of rotation.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		w.Header().Set("Content-Type", "text/plain")

		switch status {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// HealthResponse is the body of the detailed health endpoint.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is one checker's result in JSON form.
type CheckResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Duration  string         `json:"duration,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func toCheckResponse(result Result) CheckResponse {
	check := CheckResponse{
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if !result.Timestamp.IsZero() {
		check.Timestamp = result.Timestamp.UTC().Format(time.RFC3339)
	}
	if result.Error != nil {
		check.Error = result.Error.Error()
	}
	return check
}

// DetailedHandler runs every checker and returns the full result set as
// JSON. Unhealthy maps to 503, healthy and degraded to 200.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		response := HealthResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			response.Checks[name] = toCheckResponse(result)
		}

		w.Header().Set("Content-Type", "application/json")
		if status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	}
}

// SingleCheckHandler runs one named checker per request.
func SingleCheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := agg.Check(ctx, name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if result.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(toCheckResponse(result))
	}
}

// HistoryResponse is the body of the history endpoint.
type HistoryResponse struct {
	Check   string          `json:"check"`
	Results []CheckResponse `json:"results"`
}

// HistoryHandler returns the retained results for the checker named by
// the "check" query parameter, oldest first. It serves whatever past
// probes recorded and never triggers a new one.
func HistoryHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("check")

		found := false
		for _, n := range agg.CheckerNames() {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": ErrCheckerNotFound.Error(),
			})
			return
		}

		past := agg.History(name)
		response := HistoryResponse{
			Check:   name,
			Results: make([]CheckResponse, 0, len(past)),
		}
		for _, result := range past {
			response.Results = append(response.Results, toCheckResponse(result))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// RegisterHandlers mounts the standard endpoints on mux: /healthz for
// liveness, /readyz for readiness, /health for details, and
// /health/history for retained results.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
	mux.HandleFunc("/health/history", HistoryHandler(agg))
}
