package report

import (
	"encoding/json"
	"time"

	"github.com/existflow/ironclock/internal/track"
)

type jsonSession struct {
	Date              string `json:"date"`
	Project           string `json:"project"`
	Start             string `json:"start"`
	End               string `json:"end"`
	DurationSeconds   int64  `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
	Ongoing           bool   `json:"ongoing,omitempty"`
}

type jsonSummary struct {
	TotalWorkSeconds    int64  `json:"total_work_seconds"`
	TotalWorkFormatted  string `json:"total_work_formatted"`
	TotalBreakSeconds   int64  `json:"total_break_seconds"`
	TotalBreakFormatted string `json:"total_break_formatted"`
}

func jsonSessions(r *track.Report) []jsonSession {
	sessions := []jsonSession{}
	for _, day := range r.Days {
		for _, s := range day.Sessions {
			sessions = append(sessions, jsonSession{
				Date:              day.Date,
				Project:           s.Project,
				Start:             s.Start.Format(time.RFC3339),
				End:               s.End.Format(time.RFC3339),
				DurationSeconds:   int64(s.Duration().Seconds()),
				DurationFormatted: track.FormatDuration(s.Duration()),
				Ongoing:           s.Ongoing,
			})
		}
	}
	return sessions
}

func newJSONSummary(r *track.Report) jsonSummary {
	return jsonSummary{
		TotalWorkSeconds:    int64(r.WorkTotal().Seconds()),
		TotalWorkFormatted:  track.FormatDuration(r.WorkTotal()),
		TotalBreakSeconds:   int64(r.BreakTotal().Seconds()),
		TotalBreakFormatted: track.FormatDuration(r.BreakTotal()),
	}
}

func dailyJSON(r *track.Report) (string, error) {
	out, err := json.MarshalIndent(struct {
		Sessions []jsonSession `json:"sessions"`
		Summary  jsonSummary   `json:"summary"`
	}{jsonSessions(r), newJSONSummary(r)}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func projectJSON(r *track.Report, name string) (string, error) {
	out, err := json.MarshalIndent(struct {
		Project  string        `json:"project"`
		Sessions []jsonSession `json:"sessions"`
		Summary  jsonSummary   `json:"summary"`
	}{name, jsonSessions(r), newJSONSummary(r)}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type jsonProjectTotal struct {
	Project           string `json:"project"`
	DurationSeconds   int64  `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
}

func summaryJSON(r *track.Report) (string, error) {
	totals := []jsonProjectTotal{}
	for _, pt := range r.ProjectTotals() {
		totals = append(totals, jsonProjectTotal{
			Project:           pt.Project,
			DurationSeconds:   int64(pt.Total.Seconds()),
			DurationFormatted: track.FormatDuration(pt.Total),
		})
	}
	out, err := json.MarshalIndent(struct {
		Projects []jsonProjectTotal `json:"projects"`
		Summary  jsonSummary        `json:"summary"`
	}{totals, newJSONSummary(r)}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
