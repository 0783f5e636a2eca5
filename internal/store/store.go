// Package store declares the TaskStore collaborator surface (spec §6):
// the persistence interface the core depends on but never implements
// itself. internal/taskstore provides the concrete sqlite
// implementation; the core packages (depgraph, curve, priority,
// lifecycle, planner) only ever see this interface, or a narrower slice
// of it declared locally.
package store

import (
	"context"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// Filter narrows List results. Zero-value fields are unconstrained.
type Filter struct {
	Status       []domain.TaskStatus
	Project      string
	Bucket       *int
	Tags         []string
	HasDeadline  *bool
	HasRecurrence *bool
	Overdue      *bool
}

// CompletionRecord is an immutable row recorded each time a task (or one
// of its recurrences) is completed.
type CompletionRecord struct {
	ID          string
	TaskID      int
	CompletedAt time.Time
}

// TaskInput is the payload for Insert; Status/CreatedAt/UpdatedAt are
// assigned by the store.
type TaskInput struct {
	Title           string
	Project         string
	Bucket          *int
	Tags            []string
	Notes           string
	Deadline        *time.Time
	EstimateMinutes *int
	WindowStart     *string
	WindowEnd       *string
	Recurrence      *domain.RecurrencePattern
	Dependencies    []int
	Curve           domain.CurveConfig
}

// Patch is a partial update for Update; nil fields are left unchanged.
// A double pointer distinguishes "absent" from "set to nil" for optional
// fields.
type Patch struct {
	Title           *string
	Project         *string
	Bucket          **int
	Tags            *[]string
	Notes           *string
	Deadline        **time.Time
	EstimateMinutes **int
	WindowStart     **string
	WindowEnd       **string
	Recurrence      **domain.RecurrencePattern
	Dependencies    *[]int
	Curve           *domain.CurveConfig
	Status          *domain.TaskStatus
}

// TaskStore is the external persistence collaborator of spec §6.
type TaskStore interface {
	Get(ctx context.Context, id int) (*domain.Task, error)
	List(ctx context.Context, filter Filter) ([]*domain.Task, error)
	Insert(ctx context.Context, input TaskInput) (int, error)
	Update(ctx context.Context, id int, patch Patch) error
	Delete(ctx context.Context, id int) error
	SetLastCompleted(ctx context.Context, id int, ts time.Time) error
	SetNextDue(ctx context.Context, id int, ts time.Time) error
	InsertCompletion(ctx context.Context, record CompletionRecord) error
	Search(ctx context.Context, query string) ([]*domain.Task, error)
}
