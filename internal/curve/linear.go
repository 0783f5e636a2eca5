package curve

import (
	"context"
	"fmt"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// LinearCurve grows linearly from 0 at Start to 1 at Deadline, and keeps
// growing past 1 at the same slope after the deadline.
type LinearCurve struct {
	Start    time.Time
	Deadline time.Time
}

// NewLinearCurve validates Start < Deadline per spec §4.2.
func NewLinearCurve(start, deadline time.Time) (*LinearCurve, error) {
	if !deadline.After(start) {
		return nil, fmt.Errorf("curve: linear: %w: deadline must be after start", domain.ErrInvalidCurveArgs)
	}
	return &LinearCurve{Start: start, Deadline: deadline}, nil
}

func (c *LinearCurve) Type() domain.CurveType { return domain.CurveLinear }

func (c *LinearCurve) Evaluate(_ context.Context, t time.Time) (float64, error) {
	switch {
	case t.Before(c.Start):
		return 0, nil
	case t.After(c.Deadline):
		return overdueLinear(t, c.Start, c.Deadline), nil
	default:
		total := c.Deadline.Sub(c.Start).Minutes()
		elapsed := t.Sub(c.Start).Minutes()
		return elapsed / total, nil
	}
}
