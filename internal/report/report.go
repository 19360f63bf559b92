// Package report renders duration reports for terminals and for export.
package report

import (
	"fmt"
	"strings"

	"github.com/existflow/ironclock/internal/track"
)

// Format selects the output encoding
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format flag value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want table, csv, json or markdown)", s)
	}
}

// row is one rendered session line, shared by all encodings
type row struct {
	Date     string
	Project  string
	Start    string
	End      string
	Duration string
	Seconds  int64
	Ongoing  bool
}

func sessionRows(r *track.Report) []row {
	var rows []row
	for _, day := range r.Days {
		for _, s := range day.Sessions {
			end := track.FormatClock(s.End)
			if s.Ongoing {
				end += "*"
			}
			rows = append(rows, row{
				Date:     day.Date,
				Project:  s.Project,
				Start:    track.FormatClock(s.Start),
				End:      end,
				Duration: track.FormatDuration(s.Duration()),
				Seconds:  int64(s.Duration().Seconds()),
				Ongoing:  s.Ongoing,
			})
		}
	}
	return rows
}

// Daily renders the sessions of a report with work and break totals. Meant
// for single-day ranges but renders whatever days the report holds.
func Daily(r *track.Report, f Format) (string, error) {
	switch f {
	case FormatTable:
		return dailyTable(r), nil
	case FormatCSV:
		return dailyCSV(r)
	case FormatJSON:
		return dailyJSON(r)
	case FormatMarkdown:
		return dailyMarkdown(r), nil
	}
	return "", fmt.Errorf("unknown report format %q", f)
}

// Project renders a single project's sessions grouped by date.
// The report is expected to be pre-filtered to that project.
func Project(r *track.Report, name string, f Format) (string, error) {
	switch f {
	case FormatTable:
		return projectTable(r, name), nil
	case FormatCSV:
		return projectCSV(r)
	case FormatJSON:
		return projectJSON(r, name)
	case FormatMarkdown:
		return projectMarkdown(r, name), nil
	}
	return "", fmt.Errorf("unknown report format %q", f)
}

// Timesheet renders a detailed multi-day timesheet with day totals.
func Timesheet(r *track.Report, f Format) (string, error) {
	switch f {
	case FormatTable:
		return timesheetTable(r), nil
	case FormatCSV:
		return timesheetCSV(r)
	case FormatJSON:
		return dailyJSON(r)
	case FormatMarkdown:
		return timesheetMarkdown(r), nil
	}
	return "", fmt.Errorf("unknown report format %q", f)
}

// Summary renders consolidated per-project totals over the whole range.
func Summary(r *track.Report, f Format) (string, error) {
	switch f {
	case FormatTable:
		return summaryTable(r), nil
	case FormatCSV:
		return summaryCSV(r)
	case FormatJSON:
		return summaryJSON(r)
	case FormatMarkdown:
		return summaryMarkdown(r), nil
	}
	return "", fmt.Errorf("unknown report format %q", f)
}
