// Package recur runs a periodic sweep over recurring tasks past their
// next_due_at and notifies about them, on a configurable cron cadence
// (SPEC_FULL §A.3). Recurrence math itself lives in internal/recurrence;
// this package only decides when to look and what to do with what it
// finds.
package recur

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/notify"
	"github.com/hochfrequenz/task-engine/internal/store"
)

// Config configures the sweep cadence.
type Config struct {
	SweepCron string `toml:"sweep_cron"`
}

// Validate checks the cron expression and fills in the default cadence.
func (c *Config) Validate() error {
	if c.SweepCron == "" {
		c.SweepCron = "*/15 * * * *"
	}
	if _, err := parseCron(c.SweepCron); err != nil {
		return fmt.Errorf("recur: invalid sweep_cron: %w", err)
	}
	return nil
}

func parseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// Store is the slice of store.TaskStore the sweep needs.
type Store interface {
	List(ctx context.Context, filter store.Filter) ([]*domain.Task, error)
}

// Runner periodically sweeps for recurring tasks that have come due and
// emits a notification for each.
type Runner struct {
	store    Store
	notifier notify.Notifier
	schedule cron.Schedule

	mu      sync.RWMutex
	lastRun time.Time

	stopChan chan struct{}
}

// New builds a Runner from a validated Config.
func New(cfg Config, st Store, notifier notify.Notifier) (*Runner, error) {
	schedule, err := parseCron(cfg.SweepCron)
	if err != nil {
		return nil, fmt.Errorf("recur: %w", err)
	}
	return &Runner{
		store:    st,
		notifier: notifier,
		schedule: schedule,
		stopChan: make(chan struct{}),
	}, nil
}

// ShouldRun reports whether the sweep is due, given the schedule and the
// last time it ran.
func (r *Runner) ShouldRun(now time.Time) bool {
	r.mu.RLock()
	lastRun := r.lastRun
	r.mu.RUnlock()

	if lastRun.IsZero() {
		lastRun = now.Add(-24 * time.Hour)
	}
	nextRun := r.schedule.Next(lastRun)
	return now.After(nextRun)
}

// UpdateSchedule re-parses cfg.SweepCron and swaps the running schedule,
// without resetting lastRun. Used to pick up a config file edit without
// restarting the sweep loop.
func (r *Runner) UpdateSchedule(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	schedule, err := parseCron(cfg.SweepCron)
	if err != nil {
		return fmt.Errorf("recur: %w", err)
	}

	r.mu.Lock()
	r.schedule = schedule
	r.mu.Unlock()
	return nil
}

// Sweep lists open recurring tasks whose next_due_at has passed, notifies
// about each, and returns them.
func (r *Runner) Sweep(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	hasRecurrence := true
	tasks, err := r.store.List(ctx, store.Filter{
		Status:        []domain.TaskStatus{domain.StatusOpen},
		HasRecurrence: &hasRecurrence,
	})
	if err != nil {
		return nil, fmt.Errorf("recur: sweep: %w", err)
	}

	var due []*domain.Task
	for _, task := range tasks {
		if task.NextDueAt == nil || task.NextDueAt.After(now) {
			continue
		}
		due = append(due, task)
		if r.notifier != nil {
			r.notifier.Send(notify.Notification{
				Title:   "task due",
				Message: task.Title,
				Type:    notify.NotifyInfo,
				TaskID:  strconv.Itoa(task.ID),
			})
		}
	}

	r.mu.Lock()
	r.lastRun = now
	r.mu.Unlock()

	return due, nil
}

// Start runs the sweep loop until Stop is called, checking the schedule
// once a minute.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if r.ShouldRun(now) {
				if _, err := r.Sweep(ctx, now); err != nil {
					fmt.Printf("recur: sweep failed: %v\n", err)
				}
			}
		}
	}
}

// Stop ends the Start loop.
func (r *Runner) Stop() {
	close(r.stopChan)
}
