package recur

import (
	"context"
	"testing"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/notify"
	"github.com/hochfrequenz/task-engine/internal/store"
)

type fakeStore struct {
	tasks []*domain.Task
}

func (f *fakeStore) List(_ context.Context, _ store.Filter) ([]*domain.Task, error) {
	return f.tasks, nil
}

type fakeNotifier struct {
	sent []notify.Notification
}

func (f *fakeNotifier) Send(n notify.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func TestConfig_Validate_DefaultsCron(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.SweepCron == "" {
		t.Error("expected a default sweep_cron")
	}
}

func TestConfig_Validate_RejectsBadCron(t *testing.T) {
	cfg := Config{SweepCron: "not a cron expression"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a malformed cron expression")
	}
}

func TestSweep_NotifiesPastDueRecurringTasks(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	pastDue := now.Add(-time.Hour)
	notYetDue := now.Add(time.Hour)

	st := &fakeStore{tasks: []*domain.Task{
		{ID: 1, Title: "water plants", Status: domain.StatusOpen, NextDueAt: &pastDue},
		{ID: 2, Title: "file taxes", Status: domain.StatusOpen, NextDueAt: &notYetDue},
		{ID: 3, Title: "no due date set"},
	}}
	notifier := &fakeNotifier{}

	runner, err := New(Config{SweepCron: "*/15 * * * *"}, st, notifier)
	if err != nil {
		t.Fatal(err)
	}

	due, err := runner.Sweep(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}

	if len(due) != 1 || due[0].ID != 1 {
		t.Fatalf("due = %+v, want only task 1", due)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].TaskID != "1" {
		t.Fatalf("sent = %+v, want one notification for task 1", notifier.sent)
	}
}

func TestShouldRun_FalseImmediatelyAfterSweep(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	st := &fakeStore{}

	runner, err := New(Config{SweepCron: "*/15 * * * *"}, st, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !runner.ShouldRun(now) {
		t.Error("expected ShouldRun to be true before any sweep has happened")
	}

	if _, err := runner.Sweep(context.Background(), now); err != nil {
		t.Fatal(err)
	}

	if runner.ShouldRun(now.Add(time.Minute)) {
		t.Error("expected ShouldRun to be false a minute after the sweep")
	}
}

func TestUpdateSchedule_SwapsCronWithoutResettingLastRun(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	st := &fakeStore{}

	runner, err := New(Config{SweepCron: "*/15 * * * *"}, st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := runner.Sweep(context.Background(), now); err != nil {
		t.Fatal(err)
	}

	if err := runner.UpdateSchedule(Config{SweepCron: "0 * * * *"}); err != nil {
		t.Fatal(err)
	}

	if runner.ShouldRun(now.Add(time.Minute)) {
		t.Error("expected ShouldRun to stay false right after an UpdateSchedule, lastRun is unaffected")
	}

	if err := runner.UpdateSchedule(Config{SweepCron: "not a cron expression"}); err == nil {
		t.Error("expected UpdateSchedule to reject a malformed cron expression")
	}
}
