package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/ironclock/internal/logger"
	"github.com/existflow/ironclock/internal/track"
)

// Session is the tracking backend the dashboard drives. Both the local
// and the remote CLI sessions satisfy it.
type Session interface {
	StartDay() (*track.Outcome, error)
	EndDay() (*track.DayClose, error)
	Activate(name string, autoCreate, force bool) (*track.ActivateResult, error)
	EndProject(name, startNext string) (*track.Outcome, error)
	Break(note string) (*track.Outcome, error)
	Continue() (*track.Outcome, error)
	Status() (*track.Status, error)
}

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeProject
	ModeBreakNote
	ModeConfirmSwitch
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	session Session
	user    string

	status    *track.Status
	statusErr error

	// UI state
	width  int
	height int
	mode   Mode
	now    time.Time

	// Input
	input textinput.Model

	// Pending project switch awaiting confirmation
	pending string
	confirm *track.Confirmation

	message    string
	messageErr bool
}

// tickMsg drives the elapsed-time display
type tickMsg time.Time

// statusMsg carries a refreshed tracking state
type statusMsg struct {
	status *track.Status
	err    error
}

// actionMsg carries the result of a tracking verb
type actionMsg struct {
	lines   []string
	confirm *track.Confirmation
	err     error
}

// NewModel creates a new dashboard model
func NewModel(session Session, user string) Model {
	logger.Info("Initializing TUI model", logger.F("user", user))

	ti := textinput.New()
	ti.Placeholder = "Project name..."
	ti.CharLimit = 128
	ti.Width = 40

	return Model{
		session: session,
		user:    user,
		mode:    ModeNormal,
		now:     time.Now(),
		input:   ti,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshStatus(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.session.Status()
		return statusMsg{status: st, err: err}
	}
}

// action wraps a tracking verb into a command
func action(fn func() (*track.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn()
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{lines: out.Lines}
	}
}

func (m Model) activate(name string, force bool) tea.Cmd {
	return func() tea.Msg {
		res, err := m.session.Activate(name, true, force)
		if err != nil {
			return actionMsg{err: err}
		}
		if res.Confirm != nil {
			return actionMsg{confirm: res.Confirm}
		}
		return actionMsg{lines: res.Outcome.Lines}
	}
}

func (m Model) endDay() tea.Cmd {
	return func() tea.Msg {
		res, err := m.session.EndDay()
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{lines: res.Outcome.Lines}
	}
}
