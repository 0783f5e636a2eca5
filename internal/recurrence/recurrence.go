// Package recurrence computes the next due instant for a recurring task
// (C4): four frequency families (Daily, Weekly, Monthly, Interval) each
// split by mode (Calendar, Completion).
package recurrence

import (
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// NextDue computes next_due from (pattern, completedAt, taskCreatedAt).
// taskCreatedAt stands in for the Interval type's anchor when the pattern
// carries none.
func NextDue(pattern *domain.RecurrencePattern, completedAt, taskCreatedAt time.Time) time.Time {
	if pattern.Mode == domain.ModeCompletion {
		days := pattern.ExpectedIntervalDays()
		return completedAt.Add(time.Duration(days * float64(24*time.Hour)))
	}
	return nextDueCalendar(pattern, completedAt, taskCreatedAt)
}

func nextDueCalendar(pattern *domain.RecurrencePattern, completedAt, taskCreatedAt time.Time) time.Time {
	switch pattern.Type {
	case domain.Daily:
		return startOfDay(completedAt.AddDate(0, 0, 1))

	case domain.Weekly:
		if len(pattern.DaysOfWeek) > 0 {
			return nextMatchingWeekday(completedAt, pattern.DaysOfWeek)
		}
		if pattern.DayOfWeek != nil {
			return nextSingleWeekday(completedAt, *pattern.DayOfWeek)
		}
		return completedAt.AddDate(0, 0, 7)

	case domain.Monthly:
		next := completedAt.AddDate(0, 1, 0)
		return startOfDay(next)

	case domain.Interval:
		anchor := taskCreatedAt
		if pattern.Anchor != nil {
			anchor = *pattern.Anchor
		}
		days := pattern.ExpectedIntervalDays()
		step := time.Duration(days * float64(24*time.Hour))
		if step <= 0 {
			return completedAt.AddDate(0, 0, 7)
		}
		next := anchor
		for !next.After(completedAt) {
			next = next.Add(step)
		}
		return next

	default:
		return completedAt.AddDate(0, 0, 7)
	}
}

// nextMatchingWeekday finds the earliest start-of-day strictly after
// completedAt whose weekday is in days, searching at most 7 days ahead.
func nextMatchingWeekday(completedAt time.Time, days map[int]bool) time.Time {
	for i := 1; i <= 7; i++ {
		candidate := completedAt.AddDate(0, 0, i)
		if days[int(candidate.Weekday())] {
			return startOfDay(candidate)
		}
	}
	return startOfDay(completedAt.AddDate(0, 0, 7))
}

// nextSingleWeekday finds the next occurrence of weekday after completedAt;
// if completedAt already falls on that weekday, it pushes a full week out.
func nextSingleWeekday(completedAt time.Time, weekday int) time.Time {
	daysUntil := (weekday - int(completedAt.Weekday()) + 7) % 7
	if daysUntil <= 0 {
		daysUntil += 7
	}
	return startOfDay(completedAt.AddDate(0, 0, daysUntil))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
