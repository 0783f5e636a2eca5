package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/store"
)

// memStore is a minimal in-memory store.TaskStore used only to exercise
// the lifecycle Manager's orchestration logic in isolation.
type memStore struct {
	tasks      map[int]*domain.Task
	nextID     int
	completions []store.CompletionRecord
}

func newMemStore() *memStore {
	return &memStore{tasks: make(map[int]*domain.Task), nextID: 1}
}

func (m *memStore) Get(_ context.Context, id int) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *memStore) List(_ context.Context, _ store.Filter) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) Insert(_ context.Context, input store.TaskInput) (int, error) {
	id := m.nextID
	m.nextID++
	now := time.Now()
	m.tasks[id] = &domain.Task{
		ID:           id,
		Title:        input.Title,
		Project:      input.Project,
		Bucket:       input.Bucket,
		Tags:         input.Tags,
		Notes:        input.Notes,
		Deadline:     input.Deadline,
		WindowStart:  input.WindowStart,
		WindowEnd:    input.WindowEnd,
		Recurrence:   input.Recurrence,
		Dependencies: input.Dependencies,
		Curve:        input.Curve,
		Status:       domain.StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return id, nil
}

func (m *memStore) Update(_ context.Context, id int, patch store.Patch) error {
	t, ok := m.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Dependencies != nil {
		t.Dependencies = *patch.Dependencies
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) Delete(_ context.Context, id int) error {
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) SetLastCompleted(_ context.Context, id int, ts time.Time) error {
	t, ok := m.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.LastCompletedAt = &ts
	return nil
}

func (m *memStore) SetNextDue(_ context.Context, id int, ts time.Time) error {
	t, ok := m.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.NextDueAt = &ts
	return nil
}

func (m *memStore) InsertCompletion(_ context.Context, record store.CompletionRecord) error {
	m.completions = append(m.completions, record)
	return nil
}

func (m *memStore) Search(_ context.Context, _ string) ([]*domain.Task, error) {
	return nil, nil
}

func TestCreate_RoundTrip(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	id, err := mgr.Create(context.Background(), store.TaskInput{
		Title: "write report",
		Curve: domain.CurveConfig{Type: domain.CurveLinear},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := st.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "write report" || got.Status != domain.StatusOpen {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreate_MissingDependency(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	_, err := mgr.Create(context.Background(), store.TaskInput{
		Title:        "blocked task",
		Dependencies: []int{99},
	})
	if !errors.Is(err, domain.ErrDepMissing) {
		t.Fatalf("expected ErrDepMissing, got %v", err)
	}
}

func TestUpdate_IntroducingCycleIsRejected(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	id1, _ := mgr.Create(context.Background(), store.TaskInput{Title: "task1"})
	id2, _ := mgr.Create(context.Background(), store.TaskInput{Title: "task2"})

	// task2 already depends on task1.
	deps2 := []int{id1}
	if err := mgr.Update(context.Background(), id2, store.Patch{Dependencies: &deps2}); err != nil {
		t.Fatal(err)
	}

	// Updating task1 to depend on task2 would close the cycle.
	deps1 := []int{id2}
	err := mgr.Update(context.Background(), id1, store.Patch{Dependencies: &deps1})
	if !errors.Is(err, domain.ErrCircular) {
		t.Fatalf("expected ErrCircular, got %v", err)
	}
}

func TestDelete_RefusedWhenDependentExists(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	id1, _ := mgr.Create(context.Background(), store.TaskInput{Title: "task1"})
	deps := []int{id1}
	id2, _ := mgr.Create(context.Background(), store.TaskInput{Title: "task2", Dependencies: deps})
	_ = id2

	err := mgr.Delete(context.Background(), id1)
	if !errors.Is(err, domain.ErrHasDependents) {
		t.Fatalf("expected ErrHasDependents, got %v", err)
	}
}

func TestDelete_SucceedsWithNoDependents(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	id, _ := mgr.Create(context.Background(), store.TaskInput{Title: "lonely task"})
	if err := mgr.Delete(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected task to be gone, got %v", err)
	}
}

func TestComplete_NonRecurringSetsCompleted(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	id, _ := mgr.Create(context.Background(), store.TaskInput{Title: "one-off"})
	completedAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	if err := mgr.Complete(context.Background(), id, completedAt); err != nil {
		t.Fatal(err)
	}

	got, _ := st.Get(context.Background(), id)
	if got.Status != domain.StatusCompleted {
		t.Errorf("status = %v, want Completed", got.Status)
	}
	if got.LastCompletedAt == nil || !got.LastCompletedAt.Equal(completedAt) {
		t.Errorf("LastCompletedAt = %v, want %v", got.LastCompletedAt, completedAt)
	}
	if len(st.completions) != 1 || st.completions[0].TaskID != id {
		t.Errorf("expected one completion record for task %d, got %+v", id, st.completions)
	}
}

func TestComplete_RecurringReopensWithNextDue(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	dow := 1 // Monday
	pattern := &domain.RecurrencePattern{
		Mode:      domain.ModeCalendar,
		Type:      domain.Weekly,
		DayOfWeek: &dow,
	}

	id, _ := mgr.Create(context.Background(), store.TaskInput{
		Title:      "water plants",
		Recurrence: pattern,
	})

	// Friday 2024-01-12.
	completedAt := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)
	if err := mgr.Complete(context.Background(), id, completedAt); err != nil {
		t.Fatal(err)
	}

	got, _ := st.Get(context.Background(), id)
	if got.Status != domain.StatusOpen {
		t.Errorf("recurring task status = %v, want Open", got.Status)
	}
	if got.NextDueAt == nil {
		t.Fatal("NextDueAt not set")
	}
	if got.NextDueAt.Weekday() != time.Monday {
		t.Errorf("NextDueAt weekday = %v, want Monday", got.NextDueAt.Weekday())
	}
	if !got.NextDueAt.After(completedAt) {
		t.Errorf("NextDueAt = %v, want after %v", got.NextDueAt, completedAt)
	}
}

func TestReopen_SetsOpen(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	id, _ := mgr.Create(context.Background(), store.TaskInput{Title: "task"})
	if err := mgr.Complete(context.Background(), id, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Reopen(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	got, _ := st.Get(context.Background(), id)
	if got.Status != domain.StatusOpen {
		t.Errorf("status after reopen = %v, want Open", got.Status)
	}
}

func TestComplete_UnknownTask(t *testing.T) {
	st := newMemStore()
	mgr := New(st)

	err := mgr.Complete(context.Background(), 42, time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
