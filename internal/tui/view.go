package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/ironclock/internal/track"
)

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("IronClock"))
	b.WriteString(LabelStyle.Render("  " + m.user))
	b.WriteString("\n\n")

	switch m.mode {
	case ModeHelp:
		b.WriteString(m.helpView())
	case ModeProject, ModeBreakNote:
		b.WriteString(m.dashboardView())
		b.WriteString("\n")
		b.WriteString(m.inputView())
	case ModeConfirmSwitch:
		b.WriteString(m.dashboardView())
		b.WriteString("\n")
		b.WriteString(m.confirmView())
	default:
		b.WriteString(m.dashboardView())
	}

	if m.message != "" && m.mode == ModeNormal {
		b.WriteString("\n")
		if m.messageErr {
			b.WriteString(ErrorStyle.Render("✗ " + m.message))
		} else {
			b.WriteString(MessageStyle.Render("✓ " + m.message))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("s start day · p project · b break · c continue · x end project · e end day · ? help · q quit"))
	return b.String()
}

func (m Model) dashboardView() string {
	if m.statusErr != nil {
		return PanelStyle.Render(ErrorStyle.Render("Cannot read tracking state: " + m.statusErr.Error()))
	}
	if m.status == nil {
		return PanelStyle.Render(LabelStyle.Render("Loading..."))
	}

	p := m.status.Projection
	var lines []string

	if !p.DayOpen {
		lines = append(lines, StoppedStyle.Render("● No workday open"))
		lines = append(lines, "")
		lines = append(lines, LabelStyle.Render("Press 's' to start your day."))
		return PanelStyle.Render(strings.Join(lines, "\n"))
	}

	lines = append(lines, fmt.Sprintf("%s %s",
		LabelStyle.Render("Workday since"),
		ValueStyle.Render(track.FormatClock(p.DayStartedAt))))

	switch {
	case p.BreakOpen:
		label := "● On break"
		if p.BreakNote != "" {
			label += " (" + p.BreakNote + ")"
		}
		lines = append(lines, PausedStyle.Render(label)+"  "+TimerStyle.Render(elapsed(p.BreakStartedAt, m.now)))
		if m.status.SuspendedProject != "" {
			lines = append(lines, LabelStyle.Render("Suspended: ")+ValueStyle.Render(m.status.SuspendedProject))
		}
	case m.status.ActiveProject != "":
		lines = append(lines, TrackingStyle.Render("● Tracking "+m.status.ActiveProject)+
			"  "+TimerStyle.Render(elapsed(p.ProjectStartedAt, m.now)))
	default:
		lines = append(lines, StoppedStyle.Render("● Day open, no project active"))
	}

	if m.status.Today != nil {
		lines = append(lines, "", m.todayView(m.status.Today))
	}

	if n := len(p.Faults); n > 0 {
		lines = append(lines, "", WarnStyle.Render(fmt.Sprintf("⚠ %d log inconsistencies, see 'clock report'", n)))
	}

	return PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) todayView(day *track.DaySummary) string {
	var lines []string
	total := track.FormatDuration(day.WorkTotal())
	if bt := day.BreakTotal(); bt > 0 {
		total += LabelStyle.Render("  (breaks " + track.FormatDuration(bt) + ")")
	}
	lines = append(lines, LabelStyle.Render("Today: ")+ValueStyle.Render(total))
	for _, pt := range day.ProjectTotals() {
		lines = append(lines, fmt.Sprintf("  %s %s",
			LabelStyle.Render(pt.Project),
			ValueStyle.Render(track.FormatDuration(pt.Total))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) inputView() string {
	title := "Start project"
	if m.mode == ModeBreakNote {
		title = "Start break"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render(title),
		m.input.View(),
		HelpStyle.Render("enter confirm · esc cancel"),
	)
	return ModalStyle.Render(content)
}

func (m Model) confirmView() string {
	c := m.confirm
	if c == nil {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		HeaderStyle.Render("Switch project?"),
		fmt.Sprintf("Currently working on %q since %s (%s tracked today).",
			c.Project, track.FormatClock(c.Since), track.FormatDuration(c.Elapsed)),
		"",
		HelpStyle.Render("y switch · n keep tracking"),
	)
	return ModalStyle.Render(content)
}

func (m Model) helpView() string {
	rows := [][2]string{
		{"s", "start the workday"},
		{"e", "end the workday (closes project and break)"},
		{"p", "start or switch to a project"},
		{"x", "end the active project"},
		{"b", "start a break (suspends the project)"},
		{"c", "end the break and resume the project"},
		{"R", "refresh"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n", TimerStyle.Render(r[0]), LabelStyle.Render(r[1])))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("press any key to close"))
	return PanelStyle.Render(b.String())
}

// elapsed renders a live h:mm:ss timer
func elapsed(since, now time.Time) string {
	d := now.Sub(since)
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
