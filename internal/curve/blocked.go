package curve

import (
	"context"
	"fmt"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

// BlockedCurve forces priority to 0 while any listed dependency is missing
// or not Completed, otherwise delegates to Inner. It is the only curve
// variant that may suspend (spec §5).
type BlockedCurve struct {
	DepIDs []int
	Inner  Curve
	Store  TaskGetter
}

// NewBlockedCurve validates a non-empty dependency list.
func NewBlockedCurve(depIDs []int, inner Curve, store TaskGetter) (*BlockedCurve, error) {
	if len(depIDs) == 0 {
		return nil, fmt.Errorf("curve: blocked: %w: dependencies must be non-empty", domain.ErrInvalidCurveArgs)
	}
	return &BlockedCurve{DepIDs: depIDs, Inner: inner, Store: store}, nil
}

func (c *BlockedCurve) Type() domain.CurveType { return domain.CurveBlocked }

func (c *BlockedCurve) Evaluate(ctx context.Context, t time.Time) (float64, error) {
	for _, id := range c.DepIDs {
		dep, err := c.Store.Get(ctx, id)
		if err != nil || dep == nil || dep.Status != domain.StatusCompleted {
			return 0, nil
		}
	}
	return c.Inner.Evaluate(ctx, t)
}
