package track

import (
	"fmt"
	"sort"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// Session is one uninterrupted stretch of work on a project. Breaks split a
// project phase into multiple sessions; the break itself is never inside one.
type Session struct {
	ProjectID string    `json:"project_id"`
	Project   string    `json:"project,omitempty"` // resolved name, filled by the Tracker
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Ongoing   bool      `json:"ongoing,omitempty"` // end is a report cutoff, not a logged event
}

// Duration returns end - start. Zero-length sessions are valid.
func (s Session) Duration() time.Duration { return s.End.Sub(s.Start) }

// BreakSpan is one completed (or still open) break.
type BreakSpan struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Note    string    `json:"note,omitempty"`
	Ongoing bool      `json:"ongoing,omitempty"`
}

// Duration returns end - start.
func (b BreakSpan) Duration() time.Duration { return b.End.Sub(b.Start) }

// ProjectTotal is the per-project aggregate within one workday or report.
type ProjectTotal struct {
	ProjectID string        `json:"project_id"`
	Project   string        `json:"project,omitempty"`
	Total     time.Duration `json:"total"`
}

// DaySummary collects everything attributed to one workday. The attribution
// key is the date the day was started with, so a session that runs past
// midnight still belongs to the day that opened it.
type DaySummary struct {
	Date          string      `json:"date"` // workday start date, YYYY-MM-DD
	StartedAt     time.Time   `json:"started_at"`
	EndedAt       time.Time   `json:"ended_at,omitzero"` // zero while the day is open
	Closed        bool        `json:"closed"`
	ReportedUntil time.Time   `json:"reported_until"` // day end, or the report cutoff for open days
	Sessions      []Session   `json:"sessions"`
	Breaks        []BreakSpan `json:"breaks,omitempty"`
	Faults        []Fault     `json:"faults,omitempty"`
}

// WorkTotal is the summed duration of all sessions, breaks excluded.
func (d *DaySummary) WorkTotal() time.Duration {
	var total time.Duration
	for _, s := range d.Sessions {
		total += s.Duration()
	}
	return total
}

// BreakTotal is the summed duration of all breaks.
func (d *DaySummary) BreakTotal() time.Duration {
	var total time.Duration
	for _, b := range d.Breaks {
		total += b.Duration()
	}
	return total
}

// UnassignedTotal is open-day time covered by neither work nor breaks.
func (d *DaySummary) UnassignedTotal() time.Duration {
	idle := d.ReportedUntil.Sub(d.StartedAt) - d.WorkTotal() - d.BreakTotal()
	if idle < 0 {
		return 0
	}
	return idle
}

// ProjectTotals aggregates session time per project, sorted by name then ID.
func (d *DaySummary) ProjectTotals() []ProjectTotal {
	byID := make(map[string]*ProjectTotal)
	var order []string
	for _, s := range d.Sessions {
		pt, ok := byID[s.ProjectID]
		if !ok {
			pt = &ProjectTotal{ProjectID: s.ProjectID, Project: s.Project}
			byID[s.ProjectID] = pt
			order = append(order, s.ProjectID)
		}
		pt.Total += s.Duration()
	}
	totals := make([]ProjectTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, *byID[id])
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Project != totals[j].Project {
			return totals[i].Project < totals[j].Project
		}
		return totals[i].ProjectID < totals[j].ProjectID
	})
	return totals
}

// Report is the duration report over a range of workdays.
type Report struct {
	Days   []DaySummary `json:"days"`
	Faults []Fault      `json:"faults,omitempty"` // events outside any workday
}

// WorkTotal sums work time across all days.
func (r *Report) WorkTotal() time.Duration {
	var total time.Duration
	for i := range r.Days {
		total += r.Days[i].WorkTotal()
	}
	return total
}

// BreakTotal sums break time across all days.
func (r *Report) BreakTotal() time.Duration {
	var total time.Duration
	for i := range r.Days {
		total += r.Days[i].BreakTotal()
	}
	return total
}

// ProjectTotals aggregates across all days.
func (r *Report) ProjectTotals() []ProjectTotal {
	day := DaySummary{}
	for i := range r.Days {
		day.Sessions = append(day.Sessions, r.Days[i].Sessions...)
	}
	return day.ProjectTotals()
}

// FilterProject returns a copy keeping only sessions of the given project.
// Days without a matching session are dropped, as are break spans (breaks
// are not attributable to a single project).
func (r *Report) FilterProject(projectID string) Report {
	out := Report{Faults: r.Faults}
	for _, d := range r.Days {
		var kept []Session
		for _, s := range d.Sessions {
			if s.ProjectID == projectID {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			continue
		}
		d.Sessions = kept
		d.Breaks = nil
		out.Days = append(out.Days, d)
	}
	return out
}

// reportBuilder carries the fold state for BuildReport.
type reportBuilder struct {
	report Report

	day       *DaySummary
	curProj   string
	curStart  time.Time
	brkOpen   bool
	brkStart  time.Time
	brkNote   string
	suspended string
}

// BuildReport folds an ordered event log into a duration report. The now
// argument is the cutoff used to bound still-open sessions, breaks and days;
// nothing after it is attributed. The fold mirrors Reduce but additionally
// slices time into [start, end) intervals, excluding breaks from work time.
func BuildReport(events []model.Event, now time.Time) Report {
	b := reportBuilder{}

	for _, ev := range events {
		if b.day == nil {
			if ev.Category == model.CategoryWorkday && ev.Edge == model.EdgeStart {
				b.openDay(ev)
			} else {
				b.report.Faults = append(b.report.Faults, Fault{
					EventID: ev.ID, At: ev.At,
					Reason: ev.Kind() + " outside any workday",
				})
			}
			continue
		}

		switch {
		case ev.Category == model.CategoryWorkday && ev.Edge == model.EdgeStart:
			// previous day never ended; truncate it at the new day start
			b.fault(ev, "workday start while a workday is already open")
			b.closeDay(ev.At, false, true)
			b.openDay(ev)

		case ev.Category == model.CategoryWorkday && ev.Edge == model.EdgeEnd:
			b.closeDay(ev.At, true, false)

		case ev.Category == model.CategoryProject && ev.Edge == model.EdgeStart:
			if b.brkOpen {
				b.fault(ev, "project start during an open break")
				b.closeBreak(ev.At, false)
				b.suspended = ""
			}
			if b.curProj != "" {
				b.fault(ev, "project start while project %s is still open", b.curProj)
				b.closeSession(ev.At, false)
			}
			b.curProj = ev.ProjectID
			b.curStart = ev.At

		case ev.Category == model.CategoryProject && ev.Edge == model.EdgeEnd:
			if b.brkOpen {
				b.fault(ev, "project end during an open break")
				b.closeBreak(ev.At, false)
				b.curProj = b.suspended
				b.curStart = ev.At
				b.suspended = ""
			}
			if b.curProj == "" {
				b.fault(ev, "project end without an open project phase")
				continue
			}
			if ev.ProjectID != "" && ev.ProjectID != b.curProj {
				b.fault(ev, "project end for %s but %s is open", ev.ProjectID, b.curProj)
			}
			b.closeSession(ev.At, false)

		case ev.Category == model.CategoryBreak && ev.Edge == model.EdgeStart:
			if b.brkOpen {
				b.fault(ev, "break start while a break is already open")
				continue
			}
			if b.curProj == "" {
				b.fault(ev, "break start without an active project")
				continue
			}
			// freeze the running interval; it resumes when the break ends
			b.suspended = b.curProj
			b.closeSession(ev.At, false)
			b.brkOpen = true
			b.brkStart = ev.At
			b.brkNote = ev.Note

		case ev.Category == model.CategoryBreak && ev.Edge == model.EdgeEnd:
			if !b.brkOpen {
				b.fault(ev, "break end without an open break")
				continue
			}
			b.closeBreak(ev.At, false)
			b.curProj = b.suspended
			b.curStart = ev.At
			b.suspended = ""
		}
	}

	if b.day != nil {
		b.closeDayOpenEnded(now)
	}

	return b.report
}

func (b *reportBuilder) openDay(ev model.Event) {
	b.day = &DaySummary{
		Date:      ev.At.Format("2006-01-02"),
		StartedAt: ev.At,
	}
	b.curProj = ""
	b.brkOpen = false
	b.suspended = ""
}

func (b *reportBuilder) fault(ev model.Event, format string, args ...any) {
	b.day.fault(ev, format, args...)
}

func (d *DaySummary) fault(ev model.Event, format string, args ...any) {
	d.Faults = append(d.Faults, Fault{EventID: ev.ID, At: ev.At, Reason: fmt.Sprintf(format, args...)})
}

func (b *reportBuilder) closeSession(end time.Time, ongoing bool) {
	if b.curProj == "" {
		return
	}
	b.day.Sessions = append(b.day.Sessions, Session{
		ProjectID: b.curProj,
		Start:     b.curStart,
		End:       end,
		Ongoing:   ongoing,
	})
	b.curProj = ""
}

func (b *reportBuilder) closeBreak(end time.Time, ongoing bool) {
	if !b.brkOpen {
		return
	}
	b.day.Breaks = append(b.day.Breaks, BreakSpan{
		Start:   b.brkStart,
		End:     end,
		Note:    b.brkNote,
		Ongoing: ongoing,
	})
	b.brkOpen = false
	b.brkNote = ""
}

// closeDay synthesizes closing boundaries for anything still open, so a day
// end never leaves a dangling interval or double-counts on a later fold.
func (b *reportBuilder) closeDay(at time.Time, closed, truncated bool) {
	b.closeBreak(at, truncated)
	if b.suspended != "" && b.curProj == "" {
		// break was open at day end; the suspended project gets no extra time
		b.suspended = ""
	}
	b.closeSession(at, truncated)
	b.day.Closed = closed
	if closed {
		b.day.EndedAt = at
	}
	b.day.ReportedUntil = at
	b.report.Days = append(b.report.Days, *b.day)
	b.day = nil
}

// closeDayOpenEnded bounds a still-open day at the report cutoff.
func (b *reportBuilder) closeDayOpenEnded(now time.Time) {
	b.closeBreak(now, true)
	b.suspended = ""
	b.closeSession(now, true)
	b.day.Closed = false
	b.day.ReportedUntil = now
	b.report.Days = append(b.report.Days, *b.day)
	b.day = nil
}
