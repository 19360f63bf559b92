package track

import (
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// Fault marks a log-consistency problem found while folding a persisted log:
// an end event with no matching open start, or two opens without a close.
// The reducer never guesses; it records the fault and keeps folding so the
// caller can flag the data for manual repair.
type Fault struct {
	EventID int64     `json:"event_id"`
	At      time.Time `json:"at"`
	Reason  string    `json:"reason"`
}

// Projection is the current state derived by folding a user's event log.
// It is never stored; the log is the only source of truth.
type Projection struct {
	DayOpen      bool
	DayStartedAt time.Time

	ActiveProjectID  string
	ProjectStartedAt time.Time // start of the running interval, reset on continue

	BreakOpen          bool
	BreakStartedAt     time.Time
	BreakNote          string
	SuspendedProjectID string // project that was active when the break began

	Faults []Fault
}

// Working reports whether a project phase is running right now
// (active and not suspended by a break).
func (p *Projection) Working() bool {
	return p.ActiveProjectID != "" && !p.BreakOpen
}

func (p *Projection) fault(ev model.Event, format string, args ...any) {
	p.Faults = append(p.Faults, Fault{
		EventID: ev.ID,
		At:      ev.At,
		Reason:  fmt.Sprintf(format, args...),
	})
}

// Reduce folds an ordered event log into the current Projection. It enforces
// the single-open invariants (one day, one project phase, one break) and
// records a Fault for every violation instead of failing.
func Reduce(events []model.Event) Projection {
	var p Projection

	for _, ev := range events {
		switch {
		case ev.Category == model.CategoryWorkday && ev.Edge == model.EdgeStart:
			if p.DayOpen {
				p.fault(ev, "workday start while a workday is already open")
			}
			p.DayOpen = true
			p.DayStartedAt = ev.At
			p.ActiveProjectID = ""
			p.BreakOpen = false
			p.SuspendedProjectID = ""
			p.BreakNote = ""

		case ev.Category == model.CategoryWorkday && ev.Edge == model.EdgeEnd:
			if !p.DayOpen {
				p.fault(ev, "workday end without an open workday")
			}
			p.DayOpen = false
			p.ActiveProjectID = ""
			p.BreakOpen = false
			p.SuspendedProjectID = ""
			p.BreakNote = ""

		case ev.Category == model.CategoryProject && ev.Edge == model.EdgeStart:
			if !p.DayOpen {
				p.fault(ev, "project start outside an open workday")
			}
			if p.BreakOpen {
				p.fault(ev, "project start during an open break")
				p.BreakOpen = false
				p.SuspendedProjectID = ""
			}
			if p.ActiveProjectID != "" {
				p.fault(ev, "project start while project %s is still open", p.ActiveProjectID)
			}
			p.ActiveProjectID = ev.ProjectID
			p.ProjectStartedAt = ev.At

		case ev.Category == model.CategoryProject && ev.Edge == model.EdgeEnd:
			if p.ActiveProjectID == "" {
				p.fault(ev, "project end without an open project phase")
				continue
			}
			if ev.ProjectID != "" && ev.ProjectID != p.ActiveProjectID {
				p.fault(ev, "project end for %s but %s is open", ev.ProjectID, p.ActiveProjectID)
			}
			if p.BreakOpen {
				p.fault(ev, "project end during an open break")
				p.BreakOpen = false
				p.SuspendedProjectID = ""
			}
			p.ActiveProjectID = ""

		case ev.Category == model.CategoryBreak && ev.Edge == model.EdgeStart:
			if p.BreakOpen {
				p.fault(ev, "break start while a break is already open")
				continue
			}
			if p.ActiveProjectID == "" {
				p.fault(ev, "break start without an active project")
				continue
			}
			p.BreakOpen = true
			p.BreakStartedAt = ev.At
			p.BreakNote = ev.Note
			p.SuspendedProjectID = p.ActiveProjectID

		case ev.Category == model.CategoryBreak && ev.Edge == model.EdgeEnd:
			if !p.BreakOpen {
				p.fault(ev, "break end without an open break")
				continue
			}
			p.BreakOpen = false
			p.BreakNote = ""
			p.SuspendedProjectID = ""
			if p.ActiveProjectID != "" {
				// the suspended project resumes a fresh running interval
				p.ProjectStartedAt = ev.At
			}

		default:
			p.fault(ev, "unknown event %s/%s", ev.Category, ev.Edge)
		}
	}

	return p
}
