package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hkarvonen/tickd/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	lapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(4)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).MarginTop(1)
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
)

func statusDot(s domain.Status) string {
	switch s {
	case domain.StatusRunning:
		return runningStyle.Render("●")
	case domain.StatusPaused:
		return pausedStyle.Render("◐")
	default:
		return stoppedStyle.Render("○")
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("tickd"))
	b.WriteString("\n")

	if len(m.views) == 0 && m.mode != modeNewTimer {
		b.WriteString(stoppedStyle.Render("no activities yet — press n to start one"))
		b.WriteString("\n")
	}

	for i, v := range m.views {
		line := fmt.Sprintf("%s %-20s %12s", statusDot(v.Status), v.Name, v.Formatted)
		if i == m.cursor && m.mode == modeList {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if m.showLaps && i == m.cursor {
			for _, lap := range v.Laps {
				b.WriteString(lapStyle.Render(fmt.Sprintf("lap %d  +%s  %s",
					lap.Number,
					domain.FormatElapsed(lap.SplitMs),
					domain.FormatElapsed(lap.TotalMs))))
				b.WriteString("\n")
			}
		}
	}

	if m.mode == modeNewTimer {
		b.WriteString("\n")
		b.WriteString(inputStyle.Render("new activity: " + m.input + "▌"))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

// helpLine shows only the actions valid for the selected timer's status.
func (m Model) helpLine() string {
	if m.mode == modeNewTimer {
		return "enter: start · esc: cancel"
	}
	common := "n: new · tab: laps · q: quit"
	if len(m.views) == 0 {
		return common
	}
	switch m.selStatus {
	case domain.StatusRunning:
		return "space: pause · l: lap · c: complete · r: reset · d: delete · " + common
	case domain.StatusPaused:
		return "space: resume · c: complete · r: reset · d: delete · " + common
	default:
		return "space: start · d: delete · " + common
	}
}
