package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hochfrequenz/task-engine/internal/timeutil"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	scheduledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	unscheduledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// View renders today's plan.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("task-engine — daily plan"))
	b.WriteString("\n\n")

	switch {
	case m.loadErr != nil:
		b.WriteString(warningStyle.Render(fmt.Sprintf("error loading plan: %v", m.loadErr)))
		b.WriteString("\n\n")
	case m.plan == nil:
		b.WriteString(dimmedStyle.Render("loading..."))
		b.WriteString("\n\n")
	default:
		b.WriteString(m.renderPlan())
	}

	b.WriteString(statusBarStyle.Render(" r: refresh   q: quit "))
	return b.String()
}

func (m Model) renderPlan() string {
	var b strings.Builder

	header := fmt.Sprintf("%s   scheduled: %d   unscheduled: %d   busy: %d min",
		m.plan.Date.Format("2006-01-02"), len(m.plan.Scheduled), len(m.plan.Unscheduled),
		m.plan.TotalScheduledMinutes)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	var scheduled strings.Builder
	if len(m.plan.Scheduled) == 0 {
		scheduled.WriteString(dimmedStyle.Render("nothing scheduled"))
	}
	for _, st := range m.plan.Scheduled {
		line := fmt.Sprintf("%s-%s  %s",
			timeutil.FormatHHMM(st.Slot.Start), timeutil.FormatHHMM(st.Slot.End), st.Task.Title)
		scheduled.WriteString(scheduledStyle.Render(line))
		scheduled.WriteString("\n")
	}
	b.WriteString(sectionStyle.Render(scheduled.String()))
	b.WriteString("\n")

	if len(m.plan.Unscheduled) > 0 {
		var unscheduled strings.Builder
		for _, ut := range m.plan.Unscheduled {
			line := fmt.Sprintf("%s  (%s)", ut.Task.Title, ut.Reason)
			unscheduled.WriteString(unscheduledStyle.Render(line))
			unscheduled.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(unscheduled.String()))
		b.WriteString("\n")
	}

	return b.String()
}
