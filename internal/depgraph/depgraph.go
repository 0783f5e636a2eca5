// Package depgraph validates the dependency DAG over tasks: existence of
// referenced ids, acyclicity on update, and the "all dependencies
// complete" predicate the priority evaluator and planner rely on (C5).
package depgraph

import (
	"context"
	"fmt"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// Getter is the narrow read view the validator borrows from the task
// store (spec §3 "Ownership": the validator borrows a read view).
type Getter interface {
	Get(ctx context.Context, id int) (*domain.Task, error)
}

// CheckExistence ensures every id in depIDs resolves to a task.
func CheckExistence(ctx context.Context, store Getter, depIDs []int) error {
	for _, id := range depIDs {
		task, err := store.Get(ctx, id)
		if err != nil || task == nil {
			return fmt.Errorf("depgraph: dependency %d: %w", id, domain.ErrDepMissing)
		}
	}
	return nil
}

// CheckAcyclic verifies that adding proposedDeps as the dependency list of
// excludeTaskID would not introduce a cycle. It BFS-walks the transitive
// closure of proposedDeps over the live task graph; if excludeTaskID is
// reached, the proposed edge set is circular. The visited set bounds the
// walk to O(V+E).
func CheckAcyclic(ctx context.Context, store Getter, excludeTaskID int, proposedDeps []int) error {
	visited := make(map[int]bool)
	queue := append([]int(nil), proposedDeps...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if id == excludeTaskID {
			return fmt.Errorf("depgraph: %w: task %d depends on itself transitively", domain.ErrCircular, excludeTaskID)
		}
		if visited[id] {
			continue
		}
		visited[id] = true

		task, err := store.Get(ctx, id)
		if err != nil || task == nil {
			continue // existence is checked separately by CheckExistence
		}
		for _, dep := range task.Dependencies {
			if !visited[dep] {
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

// AllComplete reports whether every id in depIDs resolves to a task AND
// every resolved task has Status == Completed. An empty depIDs list is
// vacuously true.
func AllComplete(ctx context.Context, store Getter, depIDs []int) (bool, error) {
	for _, id := range depIDs {
		task, err := store.Get(ctx, id)
		if err != nil || task == nil {
			return false, nil
		}
		if task.Status != domain.StatusCompleted {
			return false, nil
		}
	}
	return true, nil
}
