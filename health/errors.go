package health

import "errors"

var (
	// ErrCheckFailed marks a probe that found a failing component.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a probe that did not finish within the
	// aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned when a named checker is not registered.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
