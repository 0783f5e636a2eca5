package curve

import (
	"context"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// AccumulatorCurve ramps priority up as a recurring task's due instant
// approaches (calendar mode) or as time since last completion grows
// (completion mode). It is the only curve that branches on pattern mode.
type AccumulatorCurve struct {
	Pattern       *domain.RecurrencePattern
	LastCompleted *time.Time
	NextDue       *time.Time
	BuildupRate   float64
}

func (c *AccumulatorCurve) Type() domain.CurveType { return domain.CurveAccumulator }

func (c *AccumulatorCurve) Evaluate(_ context.Context, t time.Time) (float64, error) {
	d := c.Pattern.ExpectedIntervalDays()

	if c.Pattern.Mode == domain.ModeCompletion {
		return c.evaluateCompletion(t, d), nil
	}
	return c.evaluateCalendar(t, d), nil
}

func (c *AccumulatorCurve) evaluateCalendar(t time.Time, d float64) float64 {
	nextDue := t
	if c.NextDue != nil {
		nextDue = *c.NextDue
	}
	delta := nextDue.Sub(t).Hours() / 24

	half := d / 2
	switch {
	case delta > half:
		return 0.2
	case delta < 0:
		return min(1.5, 1.0+(-delta)*c.BuildupRate)
	default:
		return 0.2 + (1-delta/half)*0.8
	}
}

func (c *AccumulatorCurve) evaluateCompletion(t time.Time, d float64) float64 {
	last := t.AddDate(0, 0, -int(d))
	if c.LastCompleted != nil {
		last = *c.LastCompleted
	}
	daysSince := t.Sub(last).Hours() / 24
	r := daysSince / d

	switch {
	case r < 0.5:
		return 0.1
	case r < 0.8:
		return 0.3
	case r < 1.0:
		return 0.6
	case r < 1.2:
		return 0.9
	default:
		return 1.0
	}
}
