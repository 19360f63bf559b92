package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// State colors
	Tracking = lipgloss.Color("#95E1A3") // Green
	Paused   = lipgloss.Color("#FFE66D") // Yellow
	Stopped  = lipgloss.Color("#6C757D") // Gray
	Alert    = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Dashboard panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 2)

	// State lines
	TrackingStyle = lipgloss.NewStyle().Foreground(Tracking).Bold(true)
	PausedStyle   = lipgloss.NewStyle().Foreground(Paused).Bold(true)
	StoppedStyle  = lipgloss.NewStyle().Foreground(Stopped)

	// Labels and values
	LabelStyle = lipgloss.NewStyle().Foreground(TextMuted)
	ValueStyle = lipgloss.NewStyle().Foreground(Text)
	TimerStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	// Feedback
	MessageStyle = lipgloss.NewStyle().Foreground(Tracking)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Alert)
	WarnStyle    = lipgloss.NewStyle().Foreground(Paused)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
