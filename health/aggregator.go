package health

import (
	"context"
	"sync"
	"time"
)

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds a full CheckAll run.
	// Default: 10 seconds
	Timeout time.Duration

	// Parallel runs the registered checks concurrently.
	// Default: true
	Parallel bool

	// HistorySize is how many past results are retained per checker.
	// History lets an operator see a session flapping between degraded
	// and healthy, not just its current state. Negative disables
	// retention.
	// Default: 32
	HistorySize int
}

// Aggregator fans a probe out to every registered checker and folds the
// results into one status. It also retains a bounded history of results
// per checker.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // registration order
	history  map[string][]Result
}

// NewAggregator creates an Aggregator, applying defaults for zero fields.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{
		Timeout:     10 * time.Second,
		Parallel:    true,
		HistorySize: 32,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
		if cfg.HistorySize == 0 {
			cfg.HistorySize = 32
		} else if cfg.HistorySize < 0 {
			cfg.HistorySize = 0
		}
	}

	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
		history:  make(map[string][]Result),
	}
}

// Register adds a checker under name, replacing any previous registration.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes a checker and its retained history.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	delete(a.history, name)

	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns registered checker names in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs the single named checker.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	result := a.runCheck(ctx, checker)
	a.record(name, result)
	return result, nil
}

// CheckAll runs every registered checker and returns results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if a.config.Parallel {
		var wg sync.WaitGroup
		var mu sync.Mutex

		for name, checker := range checkers {
			wg.Add(1)
			go func(name string, checker Checker) {
				defer wg.Done()
				result := a.runCheck(ctx, checker)
				mu.Lock()
				results[name] = result
				mu.Unlock()
			}(name, checker)
		}

		wg.Wait()
	} else {
		for name, checker := range checkers {
			results[name] = a.runCheck(ctx, checker)
		}
	}

	for name, result := range results {
		a.record(name, result)
	}
	return results
}

// History returns the retained results for name, oldest first. The slice
// is a copy; callers may keep it.
func (a *Aggregator) History(name string) []Result {
	a.mu.RLock()
	defer a.mu.RUnlock()

	past := a.history[name]
	out := make([]Result, len(past))
	copy(out, past)
	return out
}

// OverallStatus folds a result set: any unhealthy wins, then any degraded,
// otherwise healthy. An empty set is healthy.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

func (a *Aggregator) record(name string, result Result) {
	if a.config.HistorySize == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	past := append(a.history[name], result)
	if len(past) > a.config.HistorySize {
		past = past[len(past)-a.config.HistorySize:]
	}
	a.history[name] = past
}

func (a *Aggregator) runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()

	resultCh := make(chan Result, 1)
	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker exposes the aggregator itself as a single Checker, letting a
// whole session stack roll up into one probe.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string { return "aggregate" }

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
	}

	var message string
	switch status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	case StatusUnhealthy:
		message = "some checks failed"
	}

	return Result{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}
