package domain

import "time"

// CurveType selects which priority-curve variant a CurveConfig builds.
type CurveType string

const (
	CurveLinear      CurveType = "linear"
	CurveExponential CurveType = "exponential"
	CurveHardWindow  CurveType = "hard_window"
	CurveBlocked     CurveType = "blocked"
	CurveAccumulator CurveType = "accumulator"
)

// CurveConfig is the tagged record driving curve construction (spec §4.3).
// Only the fields relevant to Type are populated by callers; the factory
// fills in type-specific defaults for the rest.
type CurveConfig struct {
	Type CurveType `json:"type"`

	StartDate *time.Time `json:"start_date,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Exponent  *float64   `json:"exponent,omitempty"`

	WindowStart *string  `json:"window_start,omitempty"`
	WindowEnd   *string  `json:"window_end,omitempty"`
	Priority    *float64 `json:"priority,omitempty"`

	Dependencies []int        `json:"dependencies,omitempty"`
	ThenCurve    *CurveConfig `json:"then_curve,omitempty"`

	Recurrence   *RecurrencePattern `json:"recurrence,omitempty"`
	BuildupRate  *float64           `json:"buildup_rate,omitempty"`
}
