package curve

import (
	"fmt"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// Options carries the context the factory needs beyond the config record
// itself: the evaluation instant (for defaulting start/deadline), the
// owning task (for Accumulator/Blocked defaults), and a dependency
// checker (required by Blocked).
type Options struct {
	Now     time.Time
	Task    *domain.Task
	Checker TaskGetter
}

// Build constructs a Curve from cfg, dispatching on cfg.Type per spec §4.3.
func Build(cfg domain.CurveConfig, opts Options) (Curve, error) {
	switch cfg.Type {
	case domain.CurveLinear:
		return buildLinear(cfg, opts)
	case domain.CurveExponential:
		return buildExponential(cfg, opts)
	case domain.CurveHardWindow:
		return buildHardWindow(cfg)
	case domain.CurveBlocked:
		return buildBlocked(cfg, opts)
	case domain.CurveAccumulator:
		return buildAccumulator(cfg, opts)
	default:
		return nil, fmt.Errorf("curve: factory: %w: unknown curve type %q", domain.ErrMissingCurveField, cfg.Type)
	}
}

func startDeadline(cfg domain.CurveConfig, now time.Time) (time.Time, time.Time) {
	start := now
	if cfg.StartDate != nil {
		start = *cfg.StartDate
	}
	deadline := now.Add(7 * 24 * time.Hour)
	if cfg.Deadline != nil {
		deadline = *cfg.Deadline
	}
	return start, deadline
}

func buildLinear(cfg domain.CurveConfig, opts Options) (Curve, error) {
	start, deadline := startDeadline(cfg, opts.Now)
	c, err := NewLinearCurve(start, deadline)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildExponential(cfg domain.CurveConfig, opts Options) (Curve, error) {
	start, deadline := startDeadline(cfg, opts.Now)
	k := 2.0
	if cfg.Exponent != nil {
		k = *cfg.Exponent
	}
	c, err := NewExponentialCurve(start, deadline, k)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildHardWindow(cfg domain.CurveConfig) (Curve, error) {
	if cfg.WindowStart == nil || cfg.WindowEnd == nil {
		return nil, fmt.Errorf("curve: factory: %w: hard_window requires window_start and window_end", domain.ErrMissingCurveField)
	}
	p := 1.0
	if cfg.Priority != nil {
		p = *cfg.Priority
	}
	c, err := NewHardWindowCurve(*cfg.WindowStart, *cfg.WindowEnd, p)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildBlocked(cfg domain.CurveConfig, opts Options) (Curve, error) {
	if opts.Checker == nil {
		return nil, fmt.Errorf("curve: factory: %w: blocked requires a dependency checker", domain.ErrMissingCurveField)
	}
	if len(cfg.Dependencies) == 0 {
		return nil, fmt.Errorf("curve: factory: %w: blocked requires non-empty dependencies", domain.ErrMissingCurveField)
	}

	var then *domain.CurveConfig
	if cfg.ThenCurve != nil {
		copied := *cfg.ThenCurve
		then = &copied
	} else {
		then = &domain.CurveConfig{Type: domain.CurveLinear}
	}
	if then.StartDate == nil {
		then.StartDate = cfg.StartDate
	}
	if then.Deadline == nil {
		then.Deadline = cfg.Deadline
	}

	inner, err := Build(*then, opts)
	if err != nil {
		return nil, err
	}

	return NewBlockedCurve(cfg.Dependencies, inner, opts.Checker)
}

func buildAccumulator(cfg domain.CurveConfig, opts Options) (Curve, error) {
	pattern := cfg.Recurrence
	if pattern == nil && opts.Task != nil {
		pattern = opts.Task.Recurrence
	}
	if pattern == nil {
		return nil, fmt.Errorf("curve: factory: %w: accumulator requires a recurrence pattern", domain.ErrMissingCurveField)
	}

	rate := 0.1
	if cfg.BuildupRate != nil {
		rate = *cfg.BuildupRate
	}

	nextDue := opts.Now
	var lastCompleted *time.Time
	if opts.Task != nil {
		if opts.Task.NextDueAt != nil {
			nextDue = *opts.Task.NextDueAt
		}
		lastCompleted = opts.Task.LastCompletedAt
	}

	return &AccumulatorCurve{
		Pattern:       pattern,
		LastCompleted: lastCompleted,
		NextDue:       &nextDue,
		BuildupRate:   rate,
	}, nil
}

// DefaultConfigForTask chooses the default curve type on task creation
// (spec §4.3): Accumulator with the task's recurrence injected if one
// exists, otherwise Linear.
func DefaultConfigForTask(task *domain.Task) domain.CurveConfig {
	if task.Recurrence != nil {
		return domain.CurveConfig{Type: domain.CurveAccumulator, Recurrence: task.Recurrence}
	}
	return domain.CurveConfig{Type: domain.CurveLinear}
}
