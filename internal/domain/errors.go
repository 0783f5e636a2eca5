package domain

import "errors"

// Sentinel errors surfaced by the core. Callers match them with errors.Is;
// wrapping with fmt.Errorf("...: %w", err) is expected at each layer.
var (
	// ErrNotFound is raised when a referenced task id does not resolve.
	ErrNotFound = errors.New("task not found")

	// ErrDepMissing is raised when a dependency id does not resolve to a task.
	ErrDepMissing = errors.New("dependency task not found")

	// ErrCircular is raised when a proposed dependency set would introduce a cycle.
	ErrCircular = errors.New("circular dependency")

	// ErrHasDependents is raised when deleting a task that other tasks depend on.
	ErrHasDependents = errors.New("task has dependents")

	// ErrInvalidCurveArgs is raised for out-of-range curve parameters.
	ErrInvalidCurveArgs = errors.New("invalid curve arguments")

	// ErrMissingCurveField is raised when a curve config lacks a field its type requires.
	ErrMissingCurveField = errors.New("missing curve field")
)
