// Package planner builds a day's actionable task list and, optionally,
// a greedy first-fit schedule of time blocks within the work day (C8).
package planner

import (
	"context"
	"sort"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/priority"
	"github.com/hochfrequenz/task-engine/internal/timeutil"
)

// Options configures a planning pass. PlanDay uses the fields as given and
// does not fill in zero values; callers start from DefaultOptions (or the
// loaded config) and override individual fields.
type Options struct {
	WorkHoursStart         string // "HH:MM", default "08:00"
	WorkHoursEnd           string // "HH:MM", default "17:00"
	DefaultEstimateMinutes int    // default 15
	Limit                  int    // default 8
	IncludeTimeBlocks      bool   // default true
}

// DefaultOptions returns the planner defaults from spec §4.8.
func DefaultOptions() Options {
	return Options{
		WorkHoursStart:         "08:00",
		WorkHoursEnd:           "17:00",
		DefaultEstimateMinutes: 15,
		Limit:                  8,
		IncludeTimeBlocks:      true,
	}
}

// ScheduledTask is a task assigned a concrete time block.
type ScheduledTask struct {
	Task              *domain.Task
	Slot              timeutil.Range // minutes-since-midnight
	EstimateMinutes   int
	IsDefaultEstimate bool
}

// UnscheduledTask is an actionable task the greedy scheduler could not
// place, along with why.
type UnscheduledTask struct {
	Task   *domain.Task
	Reason string
}

// Plan is the result of a single planDay call.
type Plan struct {
	Date                  time.Time
	Scheduled             []ScheduledTask
	Unscheduled           []UnscheduledTask
	TotalScheduledMinutes int
	RemainingMinutes      int
}

// PlanDay builds the actionable list for date and, when
// opts.IncludeTimeBlocks, a greedy first-fit schedule (spec §4.8).
func PlanDay(ctx context.Context, st priority.Store, date time.Time, opts Options) (*Plan, error) {
	workStart, err := timeutil.ParseHHMM(opts.WorkHoursStart)
	if err != nil {
		return nil, err
	}
	workEnd, err := timeutil.ParseHHMM(opts.WorkHoursEnd)
	if err != nil {
		return nil, err
	}

	// Step 1: priority time hoists early-morning-only windows out of
	// candidacy before the work day begins.
	workStartHour := workStart / 60
	workStartMinute := workStart % 60
	priorityHour := workStartHour
	if priorityHour < 9 {
		priorityHour = 9
	}
	priorityTime := time.Date(date.Year(), date.Month(), date.Day(), priorityHour, workStartMinute, 0, 0, date.Location())

	// Step 2: candidate pool of size 2*limit.
	candidates, err := priority.GetByPriority(ctx, st, 2*opts.Limit, priorityTime)
	if err != nil {
		return nil, err
	}

	endOfDay := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, date.Location())

	// Step 3: actionability filter.
	actionable := make([]priority.Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Priority <= 0 {
			continue
		}
		t := c.Task
		keep := (t.HasDeadline() && !t.Deadline.After(endOfDay)) ||
			(t.NextDueAt != nil && !t.NextDueAt.After(endOfDay)) ||
			t.HasWindow() ||
			c.Priority > 0.3
		if keep {
			actionable = append(actionable, c)
		}
	}

	plan := &Plan{Date: date}

	if !opts.IncludeTimeBlocks {
		n := opts.Limit
		if n > len(actionable) {
			n = len(actionable)
		}
		for _, c := range actionable[:n] {
			estimate, isDefault := resolveEstimate(c.Task, opts.DefaultEstimateMinutes)
			plan.Scheduled = append(plan.Scheduled, ScheduledTask{
				Task:              c.Task,
				Slot:              timeutil.Range{Start: workStart, End: workEnd},
				EstimateMinutes:   estimate,
				IsDefaultEstimate: isDefault,
			})
			plan.TotalScheduledMinutes += estimate
		}
		plan.RemainingMinutes = (workEnd - workStart) - plan.TotalScheduledMinutes
		return plan, nil
	}

	// Step 4: greedy first-fit scheduling.
	work := timeutil.Range{Start: workStart, End: workEnd}
	var used []timeutil.Range

	n := opts.Limit
	if n > len(actionable) {
		n = len(actionable)
	}
	for _, c := range actionable[:n] {
		task := c.Task
		estimate, isDefault := resolveEstimate(task, opts.DefaultEstimateMinutes)

		allowed := work
		if task.HasWindow() {
			ws, errStart := timeutil.ParseHHMM(*task.WindowStart)
			we, errEnd := timeutil.ParseHHMM(*task.WindowEnd)
			if errStart != nil || errEnd != nil {
				plan.Unscheduled = append(plan.Unscheduled, UnscheduledTask{Task: task, Reason: "window outside work hours"})
				continue
			}
			intersected, ok := timeutil.Intersect(work, timeutil.Range{Start: ws, End: we})
			if !ok {
				plan.Unscheduled = append(plan.Unscheduled, UnscheduledTask{Task: task, Reason: "window outside work hours"})
				continue
			}
			allowed = intersected
		}

		start, ok := findGap(allowed, used, estimate)
		if !ok {
			plan.Unscheduled = append(plan.Unscheduled, UnscheduledTask{Task: task, Reason: "does not fit"})
			continue
		}

		slot := timeutil.Range{Start: start, End: start + estimate}
		used = insertSorted(used, slot)
		plan.Scheduled = append(plan.Scheduled, ScheduledTask{
			Task:              task,
			Slot:              slot,
			EstimateMinutes:   estimate,
			IsDefaultEstimate: isDefault,
		})
		plan.TotalScheduledMinutes += estimate
	}

	plan.RemainingMinutes = (workEnd - workStart) - plan.TotalScheduledMinutes
	return plan, nil
}

func resolveEstimate(task *domain.Task, defaultMinutes int) (int, bool) {
	if task.EstimateMinutes != nil {
		return *task.EstimateMinutes, false
	}
	return defaultMinutes, true
}

// findGap locates the earliest start >= allowed.Start such that
// [start, start+estimate) fits in allowed without overlapping any range in
// used. used must be sorted by Start ascending.
func findGap(allowed timeutil.Range, used []timeutil.Range, estimate int) (int, bool) {
	cursor := allowed.Start
	for _, u := range used {
		if u.Start >= allowed.End {
			break
		}
		if u.End <= cursor {
			continue
		}
		if u.Start > cursor && u.Start-cursor >= estimate {
			return cursor, true
		}
		if u.End > cursor {
			cursor = u.End
		}
	}
	if allowed.End-cursor >= estimate {
		return cursor, true
	}
	return 0, false
}

func insertSorted(used []timeutil.Range, slot timeutil.Range) []timeutil.Range {
	i := sort.Search(len(used), func(i int) bool { return used[i].Start > slot.Start })
	used = append(used, timeutil.Range{})
	copy(used[i+1:], used[i:])
	used[i] = slot
	return used
}
