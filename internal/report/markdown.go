package report

import (
	"fmt"
	"strings"

	"github.com/existflow/ironclock/internal/track"
)

func dailyMarkdown(r *track.Report) string {
	var b strings.Builder
	b.WriteString("# Daily Time Report\n\n")
	b.WriteString("| Project | Start | End | Duration |\n")
	b.WriteString("|---------|-------|-----|----------|\n")
	for _, row := range sessionRows(r) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.Project, row.Start, row.End, row.Duration)
	}
	fmt.Fprintf(&b, "\n**Total Work Time:** %s\n", track.FormatDuration(r.WorkTotal()))
	if bt := r.BreakTotal(); bt > 0 {
		fmt.Fprintf(&b, "**Total Break Time:** %s\n", track.FormatDuration(bt))
	}
	return b.String()
}

func projectMarkdown(r *track.Report, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Project Report: %s\n\n", name)
	b.WriteString("| Date | Start | End | Duration |\n")
	b.WriteString("|------|-------|-----|----------|\n")
	for _, row := range sessionRows(r) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.Date, row.Start, row.End, row.Duration)
	}
	fmt.Fprintf(&b, "\n**Total:** %s\n", track.FormatDuration(r.WorkTotal()))
	return b.String()
}

func timesheetMarkdown(r *track.Report) string {
	var b strings.Builder
	b.WriteString("# Weekly Timesheet\n\n")
	b.WriteString("| Date | Project | Start | End | Duration |\n")
	b.WriteString("|------|---------|-------|-----|----------|\n")
	for _, day := range r.Days {
		for _, s := range day.Sessions {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				day.Date, s.Project,
				track.FormatClock(s.Start), track.FormatClock(s.End),
				track.FormatDuration(s.Duration()))
		}
		fmt.Fprintf(&b, "| %s | **Day Total** | | | %s |\n",
			day.Date, track.FormatDuration(day.WorkTotal()))
	}
	fmt.Fprintf(&b, "\n**Week Total:** %s\n", track.FormatDuration(r.WorkTotal()))
	return b.String()
}

func summaryMarkdown(r *track.Report) string {
	var b strings.Builder
	b.WriteString("# Weekly Work Report\n\n")
	b.WriteString("| Project | Total Duration |\n")
	b.WriteString("|---------|----------------|\n")
	for _, pt := range r.ProjectTotals() {
		fmt.Fprintf(&b, "| %s | %s |\n", pt.Project, track.FormatDuration(pt.Total))
	}
	fmt.Fprintf(&b, "\n**Total Work Time:** %s\n", track.FormatDuration(r.WorkTotal()))
	if bt := r.BreakTotal(); bt > 0 {
		fmt.Fprintf(&b, "**Total Break Time:** %s\n", track.FormatDuration(bt))
	}
	return b.String()
}
