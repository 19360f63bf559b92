package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/track"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		// Re-read the state twice a minute so a second terminal or a
		// remote client does not leave this one stale.
		if m.now.Second()%30 == 0 {
			return m, tea.Batch(tick(), m.refreshStatus())
		}
		return m, tick()

	case statusMsg:
		m.status = msg.status
		m.statusErr = msg.err
		if msg.err != nil {
			logger.Error("Status refresh failed", logger.F("error", msg.err))
		}
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeProject, ModeBreakNote:
			return m.handleInputKeys(msg)
		case ModeConfirmSwitch:
			return m.handleConfirmKeys(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		default:
			return m.handleNormalKeys(msg)
		}
	}

	return m, nil
}

func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.message = msg.err.Error()
		m.messageErr = true
		return m, m.refreshStatus()
	}
	if msg.confirm != nil {
		m.confirm = msg.confirm
		m.mode = ModeConfirmSwitch
		return m, nil
	}
	m.message = strings.Join(msg.lines, "; ")
	m.messageErr = false
	return m, m.refreshStatus()
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, keys.Refresh):
		m.message = ""
		return m, m.refreshStatus()

	case key.Matches(msg, keys.StartDay):
		return m, action(m.session.StartDay)

	case key.Matches(msg, keys.EndDay):
		return m, m.endDay()

	case key.Matches(msg, keys.Project):
		m.mode = ModeProject
		m.input.Placeholder = "Project name..."
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.EndProj):
		if m.status == nil || m.status.ActiveProject == "" {
			m.message = "no project active"
			m.messageErr = true
			return m, nil
		}
		name := m.status.ActiveProject
		return m, action(func() (*track.Outcome, error) {
			return m.session.EndProject(name, "")
		})

	case key.Matches(msg, keys.Break):
		m.mode = ModeBreakNote
		m.input.Placeholder = "Break note (optional)..."
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Continue):
		return m, action(m.session.Continue)
	}

	return m, nil
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		m.input.Blur()

		if mode == ModeProject {
			if value == "" {
				return m, nil
			}
			m.pending = value
			return m, m.activate(value, false)
		}
		return m, action(func() (*track.Outcome, error) {
			return m.session.Break(value)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		name := m.pending
		m.mode = ModeNormal
		m.confirm = nil
		return m, m.activate(name, true)
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
		m.confirm = nil
		m.pending = ""
		m.message = "switch cancelled"
		m.messageErr = false
		return m, nil
	}
	return m, nil
}
