package report

import (
	"encoding/csv"
	"strings"

	"github.com/existflow/ironclock/internal/track"
)

func writeCSV(records [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	return b.String(), nil
}

func dailyCSV(r *track.Report) (string, error) {
	records := [][]string{{"Project", "Start", "End", "Duration"}}
	for _, row := range sessionRows(r) {
		records = append(records, []string{row.Project, row.Start, row.End, row.Duration})
	}
	return writeCSV(records)
}

func projectCSV(r *track.Report) (string, error) {
	records := [][]string{{"Date", "Start", "End", "Duration"}}
	for _, row := range sessionRows(r) {
		records = append(records, []string{row.Date, row.Start, row.End, row.Duration})
	}
	return writeCSV(records)
}

func timesheetCSV(r *track.Report) (string, error) {
	records := [][]string{{"Date", "Project", "Start", "End", "Duration"}}
	for _, day := range r.Days {
		for _, s := range day.Sessions {
			records = append(records, []string{
				day.Date, s.Project,
				track.FormatClock(s.Start), track.FormatClock(s.End),
				track.FormatDuration(s.Duration()),
			})
		}
		records = append(records, []string{
			day.Date, "Day Total", "", "", track.FormatDuration(day.WorkTotal()),
		})
	}
	records = append(records, []string{
		"", "Week Total", "", "", track.FormatDuration(r.WorkTotal()),
	})
	return writeCSV(records)
}

func summaryCSV(r *track.Report) (string, error) {
	records := [][]string{{"Project", "Total Duration"}}
	for _, pt := range r.ProjectTotals() {
		records = append(records, []string{pt.Project, track.FormatDuration(pt.Total)})
	}
	records = append(records, []string{"Total Work Time", track.FormatDuration(r.WorkTotal())})
	if bt := r.BreakTotal(); bt > 0 {
		records = append(records, []string{"Total Break Time", track.FormatDuration(bt)})
	}
	return writeCSV(records)
}
