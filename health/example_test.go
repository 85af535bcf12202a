package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/sessionkit/health"
	"github.com/jonwraymond/sessionkit/resilience"
)

func ExampleNewBreakerChecker() {
	registry := resilience.NewRegistry(nil)
	checker := health.NewBreakerChecker(registry)

	result := checker.Check(context.Background())

	fmt.Println("Checker name:", checker.Name())
	fmt.Println("Status is healthy:", result.Status == health.StatusHealthy)
	// Output:
	// Checker name: breakers
	// Status is healthy: true
}

func ExampleNewCheckerFunc() {
	checker := health.NewCheckerFunc("upstream", func(ctx context.Context) health.Result {
		return health.Healthy("management API reachable")
	})

	result := checker.Check(context.Background())

	fmt.Println("Checker name:", checker.Name())
	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Checker name: upstream
	// Status: healthy
	// Message: management API reachable
}

func ExampleDegraded() {
	result := health.Degraded("token refresh exhausted, using fallback auth")

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Message:", result.Message)
	// Output:
	// Status: degraded
	// Message: token refresh exhausted, using fallback auth
}

func ExampleUnhealthy() {
	err := errors.New("circuit open")
	result := health.Unhealthy("operations failing fast", err)

	fmt.Println("Status:", result.Status.String())
	fmt.Println("Has error:", result.Error != nil)
	// Output:
	// Status: unhealthy
	// Has error: true
}

func ExampleResult_WithDetails() {
	result := health.Healthy("all breakers closed").WithDetails(map[string]any{
		"tickets.list":   "closed",
		"tickets.create": "closed",
	})

	fmt.Println("Status:", result.Status.String())
	fmt.Println("tickets.list:", result.Details["tickets.list"])
	// Output:
	// Status: healthy
	// tickets.list: closed
}

func ExampleNewAggregator() {
	agg := health.NewAggregator()

	agg.Register("breakers", health.NewBreakerChecker(resilience.NewRegistry(nil)))
	agg.Register("service", health.NewCheckerFunc("service", func(ctx context.Context) health.Result {
		return health.Healthy("service running")
	}))

	fmt.Println("Registered checkers:", agg.CheckerNames())
	// Output:
	// Registered checkers: [breakers service]
}

func ExampleAggregator_CheckAll() {
	agg := health.NewAggregator()

	agg.Register("breakers", health.NewCheckerFunc("breakers", func(ctx context.Context) health.Result {
		return health.Healthy("all closed")
	}))
	agg.Register("session", health.NewCheckerFunc("session", func(ctx context.Context) health.Result {
		return health.Degraded("token near expiry")
	}))

	results := agg.CheckAll(context.Background())

	fmt.Println("Results:", len(results))
	fmt.Println("breakers:", results["breakers"].Status.String())
	fmt.Println("session:", results["session"].Status.String())
	fmt.Println("Overall:", agg.OverallStatus(results).String())
	// Output:
	// Results: 2
	// breakers: healthy
	// session: degraded
	// Overall: degraded
}

func ExampleAggregator_Check() {
	agg := health.NewAggregator()
	agg.Register("vault", health.NewCheckerFunc("vault", func(ctx context.Context) health.Result {
		return health.Healthy("config readable")
	}))

	result, err := agg.Check(context.Background(), "vault")
	if err == nil {
		fmt.Println("Status:", result.Status.String())
	}

	_, err = agg.Check(context.Background(), "unknown")
	fmt.Println("Unknown checker error:", errors.Is(err, health.ErrCheckerNotFound))
	// Output:
	// Status: healthy
	// Unknown checker error: true
}

func ExampleAggregator_History() {
	agg := health.NewAggregator()

	healthy := false
	agg.Register("session", health.NewCheckerFunc("session", func(ctx context.Context) health.Result {
		if healthy {
			return health.Healthy("token valid")
		}
		return health.Degraded("no token")
	}))

	agg.CheckAll(context.Background())
	healthy = true
	agg.CheckAll(context.Background())

	for _, result := range agg.History("session") {
		fmt.Println(result.Status.String())
	}
	// Output:
	// degraded
	// healthy
}

func ExampleAggregator_Checker() {
	agg := health.NewAggregator()
	agg.Register("vault", health.NewCheckerFunc("vault", func(ctx context.Context) health.Result {
		return health.Healthy("config readable")
	}))
	agg.Register("breakers", health.NewCheckerFunc("breakers", func(ctx context.Context) health.Result {
		return health.Healthy("all closed")
	}))

	checker := agg.Checker()
	result := checker.Check(context.Background())

	fmt.Println("Checker name:", checker.Name())
	fmt.Println("Overall status:", result.Status.String())
	// Output:
	// Checker name: aggregate
	// Overall status: healthy
}

func ExampleNewAggregator_withConfig() {
	agg := health.NewAggregator(health.AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: false,
	})

	agg.Register("vault", health.NewCheckerFunc("vault", func(ctx context.Context) health.Result {
		return health.Healthy("config readable")
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println("Check completed:", len(results) == 1)
	// Output:
	// Check completed: true
}

func ExampleLivenessHandler() {
	handler := health.LivenessHandler()

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	fmt.Println("Status code:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// Status code: 200
	// Body: OK
}

func ExampleDetailedHandler() {
	agg := health.NewAggregator()
	agg.Register("breakers", health.NewCheckerFunc("breakers", func(ctx context.Context) health.Result {
		return health.Healthy("all closed")
	}))

	handler := health.DetailedHandler(agg)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var response health.HealthResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &response)

	fmt.Println("Status code:", rec.Code)
	fmt.Println("Overall status:", response.Status)
	// Output:
	// Status code: 200
	// Overall status: healthy
}

func ExampleRegisterHandlers() {
	agg := health.NewAggregator()
	agg.Register("session", health.NewCheckerFunc("session", func(ctx context.Context) health.Result {
		return health.Healthy("ok")
	}))

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, agg)

	for _, ep := range []string{"/healthz", "/readyz", "/health"} {
		req := httptest.NewRequest("GET", ep, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		fmt.Printf("%s: %d\n", ep, rec.Code)
	}
	// Output:
	// /healthz: 200
	// /readyz: 200
	// /health: 200
}
