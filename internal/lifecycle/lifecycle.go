// Package lifecycle owns task creation, mutation, completion, reopening,
// and deletion — the only writer of the task store (C7).
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hochfrequenz/task-engine/internal/curve"
	"github.com/hochfrequenz/task-engine/internal/depgraph"
	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/recurrence"
	"github.com/hochfrequenz/task-engine/internal/store"
)

// Manager is the exclusive owner of task mutation (spec §3 "Ownership").
type Manager struct {
	store store.TaskStore
}

// New wraps a TaskStore in a lifecycle Manager.
func New(s store.TaskStore) *Manager {
	return &Manager{store: s}
}

// Create validates dependency existence, defaults the curve config when
// the caller left it unset, and persists the task as Open.
func (m *Manager) Create(ctx context.Context, input store.TaskInput) (int, error) {
	if err := depgraph.CheckExistence(ctx, m.store, input.Dependencies); err != nil {
		return 0, fmt.Errorf("lifecycle: create: %w", err)
	}

	if input.Curve.Type == "" {
		task := &domain.Task{Recurrence: input.Recurrence}
		input.Curve = curve.DefaultConfigForTask(task)
	}

	id, err := m.store.Insert(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("lifecycle: create: %w", err)
	}
	return id, nil
}

// Update applies patch to task id. When patch.Dependencies is set, it runs
// existence and cycle checks (excluding id itself from the cycle search).
func (m *Manager) Update(ctx context.Context, id int, patch store.Patch) error {
	task, err := m.store.Get(ctx, id)
	if err != nil || task == nil {
		return fmt.Errorf("lifecycle: update: %w", domain.ErrNotFound)
	}

	if patch.Dependencies != nil {
		deps := *patch.Dependencies
		if err := depgraph.CheckExistence(ctx, m.store, deps); err != nil {
			return fmt.Errorf("lifecycle: update: %w", err)
		}
		if err := depgraph.CheckAcyclic(ctx, m.store, id, deps); err != nil {
			return fmt.Errorf("lifecycle: update: %w", err)
		}
	}

	if err := m.store.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("lifecycle: update: %w", err)
	}
	return nil
}

// Delete refuses to remove a task any other task still lists as a
// dependency (invariant 8).
func (m *Manager) Delete(ctx context.Context, id int) error {
	all, err := m.store.List(ctx, store.Filter{})
	if err != nil {
		return fmt.Errorf("lifecycle: delete: %w", err)
	}
	for _, t := range all {
		if t.ID == id {
			continue
		}
		for _, dep := range t.Dependencies {
			if dep == id {
				return fmt.Errorf("lifecycle: delete: %w", domain.ErrHasDependents)
			}
		}
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("lifecycle: delete: %w", err)
	}
	return nil
}

// Complete records a completion row and, for a recurring task, reopens it
// with a freshly computed next_due_at (invariant 3); for a non-recurring
// task it sets Status = Completed (invariant 4).
func (m *Manager) Complete(ctx context.Context, id int, completedAt time.Time) error {
	task, err := m.store.Get(ctx, id)
	if err != nil || task == nil {
		return fmt.Errorf("lifecycle: complete: %w", domain.ErrNotFound)
	}

	if err := m.store.InsertCompletion(ctx, store.CompletionRecord{
		ID:          uuid.NewString(),
		TaskID:      id,
		CompletedAt: completedAt,
	}); err != nil {
		return fmt.Errorf("lifecycle: complete: %w", err)
	}

	if err := m.store.SetLastCompleted(ctx, id, completedAt); err != nil {
		return fmt.Errorf("lifecycle: complete: %w", err)
	}

	if task.Recurrence != nil {
		nextDue := recurrence.NextDue(task.Recurrence, completedAt, task.CreatedAt)
		if err := m.store.SetNextDue(ctx, id, nextDue); err != nil {
			return fmt.Errorf("lifecycle: complete: %w", err)
		}
		open := domain.StatusOpen
		return m.store.Update(ctx, id, store.Patch{Status: &open})
	}

	completed := domain.StatusCompleted
	return m.store.Update(ctx, id, store.Patch{Status: &completed})
}

// Reopen sets a task's status back to Open.
func (m *Manager) Reopen(ctx context.Context, id int) error {
	task, err := m.store.Get(ctx, id)
	if err != nil || task == nil {
		return fmt.Errorf("lifecycle: reopen: %w", domain.ErrNotFound)
	}
	open := domain.StatusOpen
	if err := m.store.Update(ctx, id, store.Patch{Status: &open}); err != nil {
		return fmt.Errorf("lifecycle: reopen: %w", err)
	}
	return nil
}
