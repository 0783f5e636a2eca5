package curve

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// ExponentialCurve behaves like LinearCurve inside [Start, Deadline] except
// the normalized elapsed fraction is raised to K; before Start it is 0,
// after Deadline it falls back to the same overdue growth as Linear (never
// raised to K).
type ExponentialCurve struct {
	Start    time.Time
	Deadline time.Time
	K        float64
}

// NewExponentialCurve validates Start < Deadline and K in [1.0, 5.0].
func NewExponentialCurve(start, deadline time.Time, k float64) (*ExponentialCurve, error) {
	if !deadline.After(start) {
		return nil, fmt.Errorf("curve: exponential: %w: deadline must be after start", domain.ErrInvalidCurveArgs)
	}
	if k < 1.0 || k > 5.0 {
		return nil, fmt.Errorf("curve: exponential: %w: exponent %v out of [1,5]", domain.ErrInvalidCurveArgs, k)
	}
	return &ExponentialCurve{Start: start, Deadline: deadline, K: k}, nil
}

func (c *ExponentialCurve) Type() domain.CurveType { return domain.CurveExponential }

func (c *ExponentialCurve) Evaluate(_ context.Context, t time.Time) (float64, error) {
	switch {
	case t.Before(c.Start):
		return 0, nil
	case t.After(c.Deadline):
		return overdueLinear(t, c.Start, c.Deadline), nil
	default:
		total := c.Deadline.Sub(c.Start).Minutes()
		elapsed := t.Sub(c.Start).Minutes()
		return math.Pow(elapsed/total, c.K), nil
	}
}
