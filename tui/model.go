// Package tui is a read-only terminal dashboard over today's plan
// (SPEC_FULL §D.3): it calls planner.PlanDay on a refresh tick or an
// explicit 'r' keypress and renders the scheduled and unscheduled tasks.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/task-engine/internal/planner"
	"github.com/hochfrequenz/task-engine/internal/priority"
)

// Model is the TUI application model.
type Model struct {
	store       priority.Store
	plannerOpts planner.Options

	plan     *planner.Plan
	loadErr  error
	loading  bool
	width    int
	height   int
	lastDraw time.Time
}

// NewModel creates a new TUI model over the given store and planner
// options.
func NewModel(st priority.Store, opts planner.Options) Model {
	return Model{
		store:       st,
		plannerOpts: opts,
	}
}

// Init kicks off the first plan load and the periodic refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadPlanCmd(m.store, m.plannerOpts, time.Now()), tickCmd())
}

// planLoadedMsg carries the result of a planner.PlanDay call.
type planLoadedMsg struct {
	plan *planner.Plan
	err  error
}

func loadPlanCmd(st priority.Store, opts planner.Options, date time.Time) tea.Cmd {
	return func() tea.Msg {
		plan, err := planner.PlanDay(context.Background(), st, date, opts)
		return planLoadedMsg{plan: plan, err: err}
	}
}

// tickMsg triggers a periodic refresh.
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(30*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
