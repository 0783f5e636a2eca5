// Package curve implements the priority-curve family (C2) and the factory
// that builds one from a domain.CurveConfig plus task context (C3).
//
// Every curve is a sum-type member behind a single Evaluate entry point —
// no runtime type sniffing. The Blocked variant is the only one that
// touches a store; all others are pure functions of time.
package curve

import (
	"context"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// Curve evaluates to a non-negative priority at a given instant. Pure
// curves ignore ctx; Blocked uses it to bound its store lookups.
type Curve interface {
	Evaluate(ctx context.Context, t time.Time) (float64, error)
	Type() domain.CurveType
}

// TaskGetter is the narrow read-only collaborator BlockedCurve needs — a
// borrowed view of the task store (spec §3 "Ownership").
type TaskGetter interface {
	Get(ctx context.Context, id int) (*domain.Task, error)
}

// overdueLinear is the shared "1 + (t-e)/(e-s)" growth used past the
// deadline by both LinearCurve and ExponentialCurve (spec §4.2: the
// overdue branch is never raised to the exponent).
func overdueLinear(t, s, e time.Time) float64 {
	total := e.Sub(s).Minutes()
	over := t.Sub(e).Minutes()
	return 1 + over/total
}
