package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/ironclock/internal/track"
)

func sampleReport() *track.Report {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return &track.Report{Days: []track.DaySummary{{
		Date:      "2025-03-10",
		StartedAt: day.Add(9 * time.Hour),
		EndedAt:   day.Add(11 * time.Hour),
		Closed:    true,
		Sessions: []track.Session{
			{ProjectID: "p1", Project: "Report", Start: day.Add(9*time.Hour + 5*time.Minute), End: day.Add(10 * time.Hour)},
			{ProjectID: "p1", Project: "Report", Start: day.Add(10*time.Hour + 15*time.Minute), End: day.Add(11 * time.Hour)},
		},
		Breaks: []track.BreakSpan{
			{Start: day.Add(10 * time.Hour), End: day.Add(10*time.Hour + 15*time.Minute)},
		},
	}}}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, f)

	f, err = ParseFormat("MD")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestDailyCSV(t *testing.T) {
	out, err := Daily(sampleReport(), FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{
		"Project,Start,End,Duration",
		"Report,09:05,10:00,55m",
		"Report,10:15,11:00,45m",
	}, lines)
}

func TestDailyTable(t *testing.T) {
	out, err := Daily(sampleReport(), FormatTable)
	require.NoError(t, err)
	require.Contains(t, out, "Daily Time Report")
	require.Contains(t, out, "Report")
	require.Contains(t, out, "09:05")
	require.Contains(t, out, "Total Work Time")
	require.Contains(t, out, "1h 40m")
	require.Contains(t, out, "Total Break Time")
	require.Contains(t, out, "15m")
}

func TestDailyMarkdown(t *testing.T) {
	out, err := Daily(sampleReport(), FormatMarkdown)
	require.NoError(t, err)
	require.Contains(t, out, "# Daily Time Report")
	require.Contains(t, out, "| Report | 09:05 | 10:00 | 55m |")
	require.Contains(t, out, "**Total Work Time:** 1h 40m")
	require.Contains(t, out, "**Total Break Time:** 15m")
}

func TestDailyJSON(t *testing.T) {
	out, err := Daily(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var decoded struct {
		Sessions []jsonSession `json:"sessions"`
		Summary  jsonSummary   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Sessions, 2)
	require.Equal(t, "Report", decoded.Sessions[0].Project)
	require.Equal(t, int64(55*60), decoded.Sessions[0].DurationSeconds)
	require.Equal(t, int64(100*60), decoded.Summary.TotalWorkSeconds)
	require.Equal(t, "1h 40m", decoded.Summary.TotalWorkFormatted)
	require.Equal(t, int64(15*60), decoded.Summary.TotalBreakSeconds)
}

func TestProjectViews(t *testing.T) {
	r := sampleReport()

	out, err := Project(r, "Report", FormatMarkdown)
	require.NoError(t, err)
	require.Contains(t, out, "# Project Report: Report")
	require.Contains(t, out, "| 2025-03-10 | 09:05 | 10:00 | 55m |")
	require.Contains(t, out, "**Total:** 1h 40m")

	out, err = Project(r, "Report", FormatCSV)
	require.NoError(t, err)
	require.Contains(t, out, "Date,Start,End,Duration")
	require.Contains(t, out, "2025-03-10,09:05,10:00,55m")

	out, err = Project(r, "Report", FormatJSON)
	require.NoError(t, err)
	require.Contains(t, out, `"project": "Report"`)
}

func TestTimesheetViews(t *testing.T) {
	r := sampleReport()

	out, err := Timesheet(r, FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, "Date,Project,Start,End,Duration", lines[0])
	require.Equal(t, "2025-03-10,Day Total,,,1h 40m", lines[3])
	require.Equal(t, ",Week Total,,,1h 40m", lines[4])

	out, err = Timesheet(r, FormatTable)
	require.NoError(t, err)
	require.Contains(t, out, "Weekly Timesheet")
	require.Contains(t, out, "Week Total")
}

func TestSummaryViews(t *testing.T) {
	r := sampleReport()

	out, err := Summary(r, FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, []string{
		"Project,Total Duration",
		"Report,1h 40m",
		"Total Work Time,1h 40m",
		"Total Break Time,15m",
	}, lines)

	out, err = Summary(r, FormatMarkdown)
	require.NoError(t, err)
	require.Contains(t, out, "| Report | 1h 40m |")

	out, err = Summary(r, FormatJSON)
	require.NoError(t, err)
	require.Contains(t, out, `"duration_formatted": "1h 40m"`)
}

func TestOngoingSessionMarked(t *testing.T) {
	r := sampleReport()
	r.Days[0].Sessions[1].Ongoing = true

	out, err := Daily(r, FormatCSV)
	require.NoError(t, err)
	require.Contains(t, out, "Report,10:15,11:00*,45m")
}
