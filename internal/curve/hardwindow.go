package curve

import (
	"context"
	"fmt"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/timeutil"
)

// HardWindowCurve returns a flat priority P while the evaluation instant's
// time-of-day falls within [WindowStart, WindowEnd] (inclusive both ends),
// and 0 outside it.
type HardWindowCurve struct {
	WindowStart, WindowEnd int // minutes-since-midnight
	P                       float64
}

// NewHardWindowCurve validates WindowEnd > WindowStart and P in [0, 2.0].
func NewHardWindowCurve(windowStart, windowEnd string, p float64) (*HardWindowCurve, error) {
	start, err := timeutil.ParseHHMM(windowStart)
	if err != nil {
		return nil, fmt.Errorf("curve: hard_window: %w", err)
	}
	end, err := timeutil.ParseHHMM(windowEnd)
	if err != nil {
		return nil, fmt.Errorf("curve: hard_window: %w", err)
	}
	if end <= start {
		return nil, fmt.Errorf("curve: hard_window: %w: window_end must be after window_start", domain.ErrInvalidCurveArgs)
	}
	if p < 0 || p > 2.0 {
		return nil, fmt.Errorf("curve: hard_window: %w: priority %v out of [0,2]", domain.ErrInvalidCurveArgs, p)
	}
	return &HardWindowCurve{WindowStart: start, WindowEnd: end, P: p}, nil
}

func (c *HardWindowCurve) Type() domain.CurveType { return domain.CurveHardWindow }

func (c *HardWindowCurve) Evaluate(_ context.Context, t time.Time) (float64, error) {
	minute := t.Hour()*60 + t.Minute()
	if minute >= c.WindowStart && minute <= c.WindowEnd {
		return c.P, nil
	}
	return 0, nil
}
