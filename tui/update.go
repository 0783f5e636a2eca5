package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, loadPlanCmd(m.store, m.plannerOpts, time.Now())
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(loadPlanCmd(m.store, m.plannerOpts, time.Now()), tickCmd())

	case planLoadedMsg:
		m.loading = false
		m.plan = msg.plan
		m.loadErr = msg.err
		m.lastDraw = time.Now()
		return m, nil
	}

	return m, nil
}
