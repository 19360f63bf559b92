package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/existflow/ironclock/internal/track"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(title string, headers ...string) (*strings.Builder, *table.Table) {
	var b strings.Builder
	if title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
		b.WriteByte('\n')
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return &b, t
}

func dailyTable(r *track.Report) string {
	b, t := newTable("Daily Time Report", "Project", "Start", "End", "Duration")
	for _, row := range sessionRows(r) {
		t.Row(row.Project, row.Start, row.End, row.Duration)
	}
	t.Row("Total Work Time", "", "", track.FormatDuration(r.WorkTotal()))
	if bt := r.BreakTotal(); bt > 0 {
		t.Row("Total Break Time", "", "", track.FormatDuration(bt))
	}
	b.WriteString(t.Render())
	b.WriteByte('\n')
	return b.String()
}

func projectTable(r *track.Report, name string) string {
	b, t := newTable("Project Report: "+name, "Date", "Start", "End", "Duration")
	for _, day := range r.Days {
		first := true
		for _, s := range day.Sessions {
			date := ""
			if first {
				date = day.Date
				first = false
			}
			t.Row(date, track.FormatClock(s.Start), track.FormatClock(s.End),
				track.FormatDuration(s.Duration()))
		}
		t.Row("", "", "Day Total", track.FormatDuration(day.WorkTotal()))
	}
	t.Row("Total", "", "", track.FormatDuration(r.WorkTotal()))
	b.WriteString(t.Render())
	b.WriteByte('\n')
	return b.String()
}

func timesheetTable(r *track.Report) string {
	b, t := newTable("Weekly Timesheet", "Date", "Project", "Start", "End", "Duration")
	for _, day := range r.Days {
		first := true
		for _, s := range day.Sessions {
			date := ""
			if first {
				date = day.Date
				first = false
			}
			end := track.FormatClock(s.End)
			if s.Ongoing {
				end += "*"
			}
			t.Row(date, s.Project, track.FormatClock(s.Start), end,
				track.FormatDuration(s.Duration()))
		}
		t.Row("", "Day Total", "", "", track.FormatDuration(day.WorkTotal()))
	}
	t.Row("Week Total", "", "", "", track.FormatDuration(r.WorkTotal()))
	b.WriteString(t.Render())
	b.WriteByte('\n')
	return b.String()
}

func summaryTable(r *track.Report) string {
	b, t := newTable("Weekly Work Report", "Project", "Total Duration")
	for _, pt := range r.ProjectTotals() {
		t.Row(pt.Project, track.FormatDuration(pt.Total))
	}
	t.Row("Total Work Time", track.FormatDuration(r.WorkTotal()))
	if bt := r.BreakTotal(); bt > 0 {
		t.Row("Total Break Time", track.FormatDuration(bt))
	}
	b.WriteString(t.Render())
	b.WriteByte('\n')
	return b.String()
}
