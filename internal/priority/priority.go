// Package priority composes dependency-blocking, window containment, and
// curve evaluation into a task's final priority at an instant (C6), and
// provides the priority-ordered batch query the planner consumes.
package priority

import (
	"context"
	"sort"
	"time"

	"github.com/hochfrequenz/task-engine/internal/curve"
	"github.com/hochfrequenz/task-engine/internal/depgraph"
	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/store"
	"github.com/hochfrequenz/task-engine/internal/timeutil"
)

// Store is the slice of the persistence surface the evaluator needs: a
// single-task lookup (for dependency/blocked checks) and a filtered list
// (for batch priority queries).
type Store interface {
	Get(ctx context.Context, id int) (*domain.Task, error)
	List(ctx context.Context, filter store.Filter) ([]*domain.Task, error)
}

// Evaluate computes task's priority at instant t, per spec §4.6.
func Evaluate(ctx context.Context, st Store, task *domain.Task, t time.Time) (float64, error) {
	if len(task.Dependencies) > 0 {
		ok, err := depgraph.AllComplete(ctx, st, task.Dependencies)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
	}

	if task.HasWindow() {
		start, errStart := timeutil.ParseHHMM(*task.WindowStart)
		end, errEnd := timeutil.ParseHHMM(*task.WindowEnd)
		if errStart == nil && errEnd == nil {
			minute := t.Hour()*60 + t.Minute()
			if !timeutil.InWindow(minute, start, end) {
				return 0, nil
			}
		}
	}

	c, err := curve.Build(task.Curve, curve.Options{Now: t, Task: task, Checker: st})
	if err != nil {
		c = fallbackCurve(task)
	}
	return c.Evaluate(ctx, t)
}

// fallbackCurve builds the synthetic linear curve spec §4.6 step 3
// specifies when curve construction fails: from created_at to deadline
// (or created_at + 7 days). It is itself guaranteed valid (deadline is
// always after created_at here), so construction errors are discarded.
func fallbackCurve(task *domain.Task) curve.Curve {
	start := task.CreatedAt
	deadline := start.Add(7 * 24 * time.Hour)
	if task.Deadline != nil && task.Deadline.After(start) {
		deadline = *task.Deadline
	}
	c, _ := curve.NewLinearCurve(start, deadline)
	return c
}

// Scored pairs a task with its computed priority.
type Scored struct {
	Task     *domain.Task
	Priority float64
}

// GetByPriority loads open and in-progress tasks, computes each one's
// priority at t, and returns them sorted by priority descending (stable:
// ties keep the store's natural order), optionally truncated to limit.
// limit <= 0 means unbounded.
func GetByPriority(ctx context.Context, st Store, limit int, t time.Time) ([]Scored, error) {
	tasks, err := st.List(ctx, store.Filter{
		Status: []domain.TaskStatus{domain.StatusOpen, domain.StatusInProgress},
	})
	if err != nil {
		return nil, err
	}

	scored := make([]Scored, 0, len(tasks))
	for _, task := range tasks {
		p, err := Evaluate(ctx, st, task, t)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{Task: task, Priority: p})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Priority > scored[j].Priority
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
