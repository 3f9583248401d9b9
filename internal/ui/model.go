// Package ui is the bubbletea front-end over the timer service.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hkarvonen/tickd/internal/app"
	"github.com/hkarvonen/tickd/internal/domain"
)

// inputGuard is how long action keys are dropped after the selected timer's
// status changes. Rebuilding the key bindings moves the actions around; this
// keeps a keypress aimed at the old layout from landing on the new one.
const inputGuard = 100 * time.Millisecond

type tickMsg time.Time

// RefreshMsg is sent by the service's OnChange hook via Program.Send.
type RefreshMsg struct{}

type mode int

const (
	modeList mode = iota
	modeNewTimer
)

type Model struct {
	svc *app.Service

	views    []app.TimerView
	cursor   int
	mode     mode
	input    string
	status   string
	showLaps bool

	selStatus   domain.Status
	ignoreUntil time.Time

	quitting bool
}

func NewModel(svc *app.Service) Model {
	return Model{svc: svc, views: svc.List()}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(app.DefaultTickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tickCmd()
	case RefreshMsg:
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.mode == modeNewTimer {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

// refresh re-pulls the renderer snapshot. When the selected row's status
// changed, the key bindings shown in the footer change with it, so the input
// guard window opens.
func (m *Model) refresh() {
	m.views = m.svc.List()
	if m.cursor >= len(m.views) {
		m.cursor = len(m.views) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	status := m.selectedStatus()
	if status != m.selStatus {
		m.selStatus = status
		m.ignoreUntil = time.Now().Add(inputGuard)
	}
}

func (m *Model) selectedStatus() domain.Status {
	if len(m.views) == 0 {
		return ""
	}
	return m.views[m.cursor].Status
}

func (m *Model) selectedName() string {
	if len(m.views) == 0 {
		return ""
	}
	return m.views[m.cursor].Name
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.selStatus = m.selectedStatus()
		return m, nil
	case "down", "j":
		if m.cursor < len(m.views)-1 {
			m.cursor++
		}
		m.selStatus = m.selectedStatus()
		return m, nil
	case "n":
		m.mode = modeNewTimer
		m.input = ""
		return m, nil
	case "tab":
		m.showLaps = !m.showLaps
		return m, nil
	}

	// Action keys depend on the selected timer's status; inside the guard
	// window they are dropped, not redirected.
	if time.Now().Before(m.ignoreUntil) {
		return m, nil
	}
	name := m.selectedName()
	if name == "" {
		return m, nil
	}

	switch msg.String() {
	case " ", "space":
		if m.selStatus == domain.StatusRunning {
			m.svc.Stop(name)
		} else {
			m.svc.Start(name)
		}
		m.refresh()
	case "l":
		m.svc.AddLap(name)
		m.refresh()
	case "c":
		if rec := m.svc.Complete(name); rec != nil {
			m.status = "completed " + rec.ActivityName + " (" + domain.FormatElapsed(rec.EndTime.Sub(rec.StartTime).Milliseconds()) + ")"
		}
		m.refresh()
	case "r":
		m.svc.Reset(name)
		m.refresh()
	case "d":
		m.svc.Delete(name)
		m.refresh()
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.input != "" {
			m.svc.Start(m.input)
			m.status = "started " + m.input
		}
		m.mode = modeList
		m.input = ""
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeList
		m.input = ""
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}
