package curve

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/hochfrequenz/task-engine/internal/domain"
)

func closeEnough(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestLinear_Midpoint(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	eval := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	c, err := NewLinearCurve(start, deadline)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Evaluate(context.Background(), eval)
	if err != nil {
		t.Fatal(err)
	}
	if !closeEnough(got, 0.5, 1e-3) {
		t.Errorf("Linear midpoint = %v, want ~0.5", got)
	}
}

func TestLinear_BeforeStartIsZero(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	c, _ := NewLinearCurve(start, deadline)
	got, _ := c.Evaluate(context.Background(), start.Add(-time.Hour))
	if got != 0 {
		t.Errorf("Linear before start = %v, want 0", got)
	}
}

func TestLinear_AtDeadlineIsOne(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	c, _ := NewLinearCurve(start, deadline)
	got, _ := c.Evaluate(context.Background(), deadline)
	if got != 1.0 {
		t.Errorf("Linear at deadline = %v, want 1.0", got)
	}
}

func TestLinear_OverdueMonotone(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	c, _ := NewLinearCurve(start, deadline)

	prev, _ := c.Evaluate(context.Background(), deadline)
	for _, days := range []int{1, 2, 5, 10} {
		got, _ := c.Evaluate(context.Background(), deadline.AddDate(0, 0, days))
		if got <= 1.0 {
			t.Errorf("Linear overdue at +%dd = %v, want > 1.0", days, got)
		}
		if got < prev {
			t.Errorf("Linear overdue not monotone: %v then %v", prev, got)
		}
		prev = got
	}
}

func TestLinear_RejectsBadBounds(t *testing.T) {
	s := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	if _, err := NewLinearCurve(s, s); err == nil {
		t.Error("expected error for deadline == start")
	}
	if _, err := NewLinearCurve(s, s.Add(-time.Hour)); err == nil {
		t.Error("expected error for deadline before start")
	}
}

func TestExponential_Midpoint(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	eval := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	c, err := NewExponentialCurve(start, deadline, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c.Evaluate(context.Background(), eval)
	if !closeEnough(got, 0.25, 1e-3) {
		t.Errorf("Exponential(k=2) midpoint = %v, want ~0.25", got)
	}
}

func TestExponential_AtDeadlineIsOneRegardlessOfK(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	for _, k := range []float64{1.0, 2.0, 5.0} {
		c, err := NewExponentialCurve(start, deadline, k)
		if err != nil {
			t.Fatal(err)
		}
		got, _ := c.Evaluate(context.Background(), deadline)
		if got != 1.0 {
			t.Errorf("Exponential(k=%v) at deadline = %v, want 1.0", k, got)
		}
	}
}

func TestExponential_Overdue(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	eval := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	c, err := NewExponentialCurve(start, deadline, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c.Evaluate(context.Background(), eval)
	if got <= 1.0 {
		t.Errorf("Exponential overdue = %v, want > 1.0", got)
	}
}

func TestExponential_RejectsBadExponent(t *testing.T) {
	s := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	d := s.AddDate(0, 0, 10)
	for _, k := range []float64{0.5, 5.1, -1} {
		if _, err := NewExponentialCurve(s, d, k); err == nil {
			t.Errorf("expected error for exponent %v", k)
		}
	}
}

func TestHardWindow_InsideAndOutside(t *testing.T) {
	c, err := NewHardWindowCurve("09:00", "17:00", 1.5)
	if err != nil {
		t.Fatal(err)
	}

	inside := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	got, _ := c.Evaluate(context.Background(), inside)
	if got != 1.5 {
		t.Errorf("HardWindow inside = %v, want 1.5", got)
	}

	boundaryStart := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if got, _ := c.Evaluate(context.Background(), boundaryStart); got != 1.5 {
		t.Errorf("HardWindow at start boundary = %v, want 1.5", got)
	}
	boundaryEnd := time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)
	if got, _ := c.Evaluate(context.Background(), boundaryEnd); got != 1.5 {
		t.Errorf("HardWindow at end boundary = %v, want 1.5", got)
	}

	outside := time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)
	got, _ = c.Evaluate(context.Background(), outside)
	if got != 0 {
		t.Errorf("HardWindow outside = %v, want 0", got)
	}
}

func TestHardWindow_RejectsBadArgs(t *testing.T) {
	if _, err := NewHardWindowCurve("17:00", "09:00", 1.0); err == nil {
		t.Error("expected error when window_end <= window_start")
	}
	if _, err := NewHardWindowCurve("09:00", "17:00", 2.1); err == nil {
		t.Error("expected error for priority out of [0,2]")
	}
}

type fakeStore struct {
	tasks map[int]*domain.Task
}

func (f *fakeStore) Get(_ context.Context, id int) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func TestBlocked_IncompleteDepReturnsZero(t *testing.T) {
	store := &fakeStore{tasks: map[int]*domain.Task{
		1: {ID: 1, Status: domain.StatusOpen},
	}}
	inner, _ := NewLinearCurve(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	c, err := NewBlockedCurve([]int{1}, inner, store)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c.Evaluate(context.Background(), time.Now())
	if got != 0 {
		t.Errorf("Blocked with incomplete dep = %v, want 0", got)
	}
}

func TestBlocked_MissingDepReturnsZero(t *testing.T) {
	store := &fakeStore{tasks: map[int]*domain.Task{}}
	inner, _ := NewLinearCurve(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	c, _ := NewBlockedCurve([]int{99}, inner, store)
	got, _ := c.Evaluate(context.Background(), time.Now())
	if got != 0 {
		t.Errorf("Blocked with missing dep = %v, want 0", got)
	}
}

func TestBlocked_AllCompleteDelegatesToInner(t *testing.T) {
	store := &fakeStore{tasks: map[int]*domain.Task{
		1: {ID: 1, Status: domain.StatusCompleted},
		2: {ID: 2, Status: domain.StatusCompleted},
	}}
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	inner, _ := NewLinearCurve(start, deadline)
	c, err := NewBlockedCurve([]int{1, 2}, inner, store)
	if err != nil {
		t.Fatal(err)
	}

	eval := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got, _ := c.Evaluate(context.Background(), eval)
	want, _ := inner.Evaluate(context.Background(), eval)
	if got != want {
		t.Errorf("Blocked with all complete = %v, want inner result %v", got, want)
	}
}

func TestBlocked_RejectsEmptyDeps(t *testing.T) {
	inner, _ := NewLinearCurve(time.Now(), time.Now().Add(time.Hour))
	if _, err := NewBlockedCurve(nil, inner, &fakeStore{}); err == nil {
		t.Error("expected error for empty dependency list")
	}
}

func TestAccumulator_CompletionMode(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	pattern := &domain.RecurrencePattern{Mode: domain.ModeCompletion, Type: domain.Weekly}

	oneDayAgo := now.AddDate(0, 0, -1)
	c := &AccumulatorCurve{Pattern: pattern, LastCompleted: &oneDayAgo, BuildupRate: 0.1}
	got, _ := c.Evaluate(context.Background(), now)
	if got != 0.1 {
		t.Errorf("Accumulator completion 1 day since (weekly) = %v, want 0.1", got)
	}

	tenDaysAgo := now.AddDate(0, 0, -10)
	c2 := &AccumulatorCurve{Pattern: pattern, LastCompleted: &tenDaysAgo, BuildupRate: 0.1}
	got2, _ := c2.Evaluate(context.Background(), now)
	if got2 != 1.0 {
		t.Errorf("Accumulator completion 10 days since (weekly) = %v, want 1.0", got2)
	}

	intervalPattern := &domain.RecurrencePattern{
		Mode: domain.ModeCompletion, Type: domain.Interval, Interval: 3, Unit: domain.UnitDays,
	}
	fiveDaysAgo := now.AddDate(0, 0, -5)
	c3 := &AccumulatorCurve{Pattern: intervalPattern, LastCompleted: &fiveDaysAgo, BuildupRate: 0.1}
	got3, _ := c3.Evaluate(context.Background(), now)
	if got3 != 1.0 {
		t.Errorf("Accumulator completion 5 days on interval(3,days) = %v, want 1.0", got3)
	}
}

func TestAccumulator_CalendarMode(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	pattern := &domain.RecurrencePattern{Mode: domain.ModeCalendar, Type: domain.Weekly}

	farFuture := now.AddDate(0, 0, 10)
	c := &AccumulatorCurve{Pattern: pattern, NextDue: &farFuture, BuildupRate: 0.1}
	got, _ := c.Evaluate(context.Background(), now)
	if got != 0.2 {
		t.Errorf("Accumulator calendar far future = %v, want 0.2", got)
	}

	overdue := now.AddDate(0, 0, -2)
	c2 := &AccumulatorCurve{Pattern: pattern, NextDue: &overdue, BuildupRate: 0.1}
	got2, _ := c2.Evaluate(context.Background(), now)
	want2 := 1.0 + 2*0.1
	if !closeEnough(got2, want2, 1e-9) {
		t.Errorf("Accumulator calendar overdue = %v, want %v", got2, want2)
	}
}

func TestFactory_DefaultsLinear(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := Build(domain.CurveConfig{Type: domain.CurveLinear}, Options{Now: now})
	if err != nil {
		t.Fatal(err)
	}
	lc, ok := c.(*LinearCurve)
	if !ok {
		t.Fatalf("expected *LinearCurve, got %T", c)
	}
	if !lc.Start.Equal(now) {
		t.Errorf("default start = %v, want %v", lc.Start, now)
	}
	if !lc.Deadline.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("default deadline = %v, want now+7d", lc.Deadline)
	}
}

func TestFactory_AccumulatorRequiresRecurrence(t *testing.T) {
	_, err := Build(domain.CurveConfig{Type: domain.CurveAccumulator}, Options{Now: time.Now()})
	if err == nil {
		t.Error("expected MissingCurveField error")
	}
}

func TestFactory_BlockedRequiresCheckerAndDeps(t *testing.T) {
	_, err := Build(domain.CurveConfig{Type: domain.CurveBlocked}, Options{Now: time.Now()})
	if err == nil {
		t.Error("expected MissingCurveField error for missing checker")
	}
	_, err = Build(domain.CurveConfig{Type: domain.CurveBlocked}, Options{Now: time.Now(), Checker: &fakeStore{}})
	if err == nil {
		t.Error("expected MissingCurveField error for empty dependencies")
	}
}

func TestFactory_UnknownType(t *testing.T) {
	_, err := Build(domain.CurveConfig{Type: "nonsense"}, Options{Now: time.Now()})
	if err == nil {
		t.Error("expected error for unknown curve type")
	}
}

func TestDefaultConfigForTask(t *testing.T) {
	recurring := &domain.Task{Recurrence: &domain.RecurrencePattern{Type: domain.Daily}}
	cfg := DefaultConfigForTask(recurring)
	if cfg.Type != domain.CurveAccumulator {
		t.Errorf("recurring task default = %v, want accumulator", cfg.Type)
	}
	if cfg.Recurrence != recurring.Recurrence {
		t.Error("expected recurrence to be injected")
	}

	plain := &domain.Task{}
	cfg2 := DefaultConfigForTask(plain)
	if cfg2.Type != domain.CurveLinear {
		t.Errorf("non-recurring task default = %v, want linear", cfg2.Type)
	}
}
