package track

import (
	"context"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// EventStore is the append-only ledger the tracker writes to. Appends are the
// only side effect of any operation and happen only after validation.
type EventStore interface {
	// Append persists a single event and returns its assigned id. The store
	// must reject events whose timestamp precedes the user's latest event.
	Append(ctx context.Context, ev model.Event) (int64, error)
	// AppendAll persists a cascade atomically: either every event is
	// appended, in order, or none is.
	AppendAll(ctx context.Context, evs []model.Event) ([]int64, error)
	// EventsFor returns the user's events ordered by timestamp, ties broken
	// by id. A zero until means no cutoff.
	EventsFor(ctx context.Context, userID string, until time.Time) ([]model.Event, error)
}

// ProjectDirectory resolves and creates projects. Lookups return (nil, nil)
// when the project does not exist.
type ProjectDirectory interface {
	ProjectByName(ctx context.Context, userID, name string) (*model.Project, error)
	ProjectByID(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, userID, name string) (*model.Project, error)
}

// UserDirectory resolves users by their opaque key (the email). Lookups
// return (nil, nil) when the user does not exist.
type UserDirectory interface {
	UserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Tracker is the time-tracking state machine. Every operation validates the
// user's intent against the projection derived from the log, appends the
// corresponding event(s), and reports status lines. The Tracker holds no
// per-user state of its own; the log is the single source of truth.
type Tracker struct {
	store    EventStore
	projects ProjectDirectory
	users    UserDirectory
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a Tracker over the given capabilities.
func New(store EventStore, projects ProjectDirectory, users UserDirectory, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		projects: projects,
		users:    users,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Outcome is the status result of a successful operation.
type Outcome struct {
	Lines []string  `json:"lines"`
	At    time.Time `json:"at"`
}

// Confirmation signals that Activate would switch away from a running
// project and the caller must confirm (re-invoke with Force). It is a result
// variant, not an error; no events were appended.
type Confirmation struct {
	Project string        `json:"project"`
	Since   time.Time     `json:"since"`
	Elapsed time.Duration `json:"elapsed"`
}

// ActivateResult is either an Outcome or a Confirmation request.
type ActivateResult struct {
	Outcome *Outcome      `json:"outcome,omitempty"`
	Confirm *Confirmation `json:"confirm,omitempty"`
}

// ActivateOptions tune project activation.
type ActivateOptions struct {
	AutoCreate bool      // create the project when it does not exist
	Force      bool      // hand over from a running project without confirmation
	At         time.Time // explicit instant; zero means the tracker's clock
}

// DayClose is the result of EndDay: status lines plus the day's summary.
type DayClose struct {
	Outcome Outcome    `json:"outcome"`
	Summary DaySummary `json:"summary"`
}

// Status is the current projection with resolved names and today's summary.
type Status struct {
	User             model.User  `json:"user"`
	Projection       Projection  `json:"projection"`
	ActiveProject    string      `json:"active_project,omitempty"`
	SuspendedProject string      `json:"suspended_project,omitempty"`
	Today            *DaySummary `json:"today,omitempty"`
}

// load resolves the user and folds their full log into a projection.
func (t *Tracker) load(ctx context.Context, userKey string) (*model.User, []model.Event, Projection, error) {
	user, err := t.users.UserByEmail(ctx, userKey)
	if err != nil {
		return nil, nil, Projection{}, fmt.Errorf("resolving user: %w", err)
	}
	if user == nil {
		return nil, nil, Projection{}, fmt.Errorf("%q: %w", userKey, ErrUserNotFound)
	}
	events, err := t.store.EventsFor(ctx, user.ID, time.Time{})
	if err != nil {
		return nil, nil, Projection{}, fmt.Errorf("reading event log: %w", err)
	}
	return user, events, Reduce(events), nil
}

// projectName resolves a project id for status lines, falling back to the id.
func (t *Tracker) projectName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	p, err := t.projects.ProjectByID(ctx, id)
	if err != nil || p == nil {
		return id
	}
	return p.Name
}

// StartDay opens a new workday. Legal only when no day is open.
func (t *Tracker) StartDay(ctx context.Context, userKey string) (*Outcome, error) {
	user, _, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if proj.DayOpen {
		return nil, stateErrSince(ErrDayAlreadyOpen, proj.DayStartedAt)
	}

	at := t.now()
	ev := model.NewDayStart(user.ID, at)
	if _, err := t.store.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("appending workday start: %w", err)
	}
	return &Outcome{
		At:    at,
		Lines: []string{fmt.Sprintf("Workday started at %s", FormatClock(at))},
	}, nil
}

// Activate starts working on the named project. When another project is
// running and Force is not set, it returns a Confirmation instead of
// switching; with Force it appends the handover cascade (end old, start new)
// at a single instant. Activation during a break is refused: the caller must
// Continue or end the break first.
func (t *Tracker) Activate(ctx context.Context, userKey, name string, opts ActivateOptions) (*ActivateResult, error) {
	user, events, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !proj.DayOpen {
		return nil, stateErr(ErrDayNotOpen)
	}
	if proj.BreakOpen {
		return nil, stateErrProject(ErrBreakInProgress,
			t.projectName(ctx, proj.SuspendedProjectID), proj.BreakStartedAt)
	}

	at := opts.At
	if at.IsZero() {
		at = t.now()
	}

	project, err := t.projects.ProjectByName(ctx, user.ID, name)
	if err != nil {
		return nil, fmt.Errorf("resolving project: %w", err)
	}
	created := false
	if project == nil {
		if !opts.AutoCreate {
			return nil, fmt.Errorf("%q: %w", name, ErrProjectNotFound)
		}
		project, err = t.projects.CreateProject(ctx, user.ID, name)
		if err != nil {
			return nil, fmt.Errorf("creating project: %w", err)
		}
		created = true
	}
	if project.IsArchived() {
		return nil, fmt.Errorf("%q: %w", name, ErrProjectArchived)
	}

	if proj.ActiveProjectID == project.ID {
		return nil, stateErrProject(ErrProjectAlreadyActive, project.Name, proj.ProjectStartedAt)
	}

	if proj.ActiveProjectID != "" && !opts.Force {
		activeName := t.projectName(ctx, proj.ActiveProjectID)
		return &ActivateResult{Confirm: &Confirmation{
			Project: activeName,
			Since:   proj.ProjectStartedAt,
			Elapsed: t.trackedToday(events, proj.ActiveProjectID, at),
		}}, nil
	}

	var lines []string
	if created {
		lines = append(lines, fmt.Sprintf("Created project %q", project.Name))
	}

	if proj.ActiveProjectID != "" {
		// handover: end the running project and start the new one at the
		// same instant, atomically
		cascade := []model.Event{
			model.NewProjectEnd(user.ID, proj.ActiveProjectID, at),
			model.NewProjectStart(user.ID, project.ID, at),
		}
		if _, err := t.store.AppendAll(ctx, cascade); err != nil {
			return nil, fmt.Errorf("appending handover: %w", err)
		}
		lines = append(lines,
			t.suspendedLine(ctx, events, proj.ActiveProjectID, at),
			fmt.Sprintf("Started %q at %s", project.Name, FormatClock(at)))
	} else {
		ev := model.NewProjectStart(user.ID, project.ID, at)
		if _, err := t.store.Append(ctx, ev); err != nil {
			return nil, fmt.Errorf("appending project start: %w", err)
		}
		lines = append(lines, fmt.Sprintf("Started %q at %s", project.Name, FormatClock(at)))
	}

	return &ActivateResult{Outcome: &Outcome{At: at, Lines: lines}}, nil
}

// Break suspends the active project. Legal only while working on a project.
func (t *Tracker) Break(ctx context.Context, userKey, note string) (*Outcome, error) {
	user, _, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !proj.DayOpen {
		return nil, stateErr(ErrDayNotOpen)
	}
	if proj.BreakOpen {
		return nil, stateErrSince(ErrBreakAlreadyOpen, proj.BreakStartedAt)
	}
	if proj.ActiveProjectID == "" {
		return nil, stateErr(ErrNoActiveProject)
	}

	at := t.now()
	ev := model.NewBreakStart(user.ID, at, note)
	if _, err := t.store.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("appending break start: %w", err)
	}

	name := t.projectName(ctx, proj.ActiveProjectID)
	line := fmt.Sprintf("Break started at %s, suspended %q", FormatClock(at), name)
	if note != "" {
		line += fmt.Sprintf(" (%s)", note)
	}
	return &Outcome{At: at, Lines: []string{line}}, nil
}

// Continue ends the open break and resumes the suspended project.
func (t *Tracker) Continue(ctx context.Context, userKey string) (*Outcome, error) {
	user, _, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !proj.BreakOpen {
		return nil, stateErr(ErrNoBreakOpen)
	}

	at := t.now()
	ev := model.NewBreakEnd(user.ID, at)
	if _, err := t.store.Append(ctx, ev); err != nil {
		return nil, fmt.Errorf("appending break end: %w", err)
	}

	name := t.projectName(ctx, proj.SuspendedProjectID)
	return &Outcome{
		At: at,
		Lines: []string{fmt.Sprintf("Resumed %q at %s after %s break",
			name, FormatClock(at), FormatDuration(at.Sub(proj.BreakStartedAt)))},
	}, nil
}

// EndProject closes the active project phase. When a break is open it is
// ended first, in the same cascade. When name is given it must match the
// active project. When startNext is given, the handover to it happens in the
// same cascade at the same instant.
func (t *Tracker) EndProject(ctx context.Context, userKey, name, startNext string) (*Outcome, error) {
	user, events, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if proj.ActiveProjectID == "" {
		return nil, stateErr(ErrNoActiveProject)
	}

	activeName := t.projectName(ctx, proj.ActiveProjectID)
	if name != "" {
		named, err := t.projects.ProjectByName(ctx, user.ID, name)
		if err != nil {
			return nil, fmt.Errorf("resolving project: %w", err)
		}
		if named == nil {
			return nil, fmt.Errorf("%q: %w", name, ErrProjectNotFound)
		}
		if named.ID != proj.ActiveProjectID {
			return nil, stateErrProject(ErrProjectMismatch, activeName, proj.ProjectStartedAt)
		}
	}

	at := t.now()

	// validate the whole cascade before appending anything
	var next *model.Project
	if startNext != "" {
		next, err = t.projects.ProjectByName(ctx, user.ID, startNext)
		if err != nil {
			return nil, fmt.Errorf("resolving project: %w", err)
		}
		if next == nil {
			return nil, fmt.Errorf("%q: %w", startNext, ErrProjectNotFound)
		}
		if next.IsArchived() {
			return nil, fmt.Errorf("%q: %w", startNext, ErrProjectArchived)
		}
	}

	var cascade []model.Event
	if proj.BreakOpen {
		cascade = append(cascade, model.NewBreakEnd(user.ID, at))
	}
	cascade = append(cascade, model.NewProjectEnd(user.ID, proj.ActiveProjectID, at))
	if next != nil {
		cascade = append(cascade, model.NewProjectStart(user.ID, next.ID, at))
	}

	if len(cascade) == 1 {
		if _, err := t.store.Append(ctx, cascade[0]); err != nil {
			return nil, fmt.Errorf("appending project end: %w", err)
		}
	} else {
		if _, err := t.store.AppendAll(ctx, cascade); err != nil {
			return nil, fmt.Errorf("appending project end cascade: %w", err)
		}
	}

	lines := []string{t.suspendedLine(ctx, events, proj.ActiveProjectID, at)}
	if next != nil {
		lines = append(lines, fmt.Sprintf("Started %q at %s", next.Name, FormatClock(at)))
	}
	return &Outcome{At: at, Lines: lines}, nil
}

// EndDay closes, in order, any open break, any open project phase, and the
// workday itself, all at the same instant in one atomic cascade, then
// reports the day's duration summary.
func (t *Tracker) EndDay(ctx context.Context, userKey string) (*DayClose, error) {
	user, events, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	if !proj.DayOpen {
		return nil, stateErr(ErrDayNotOpen)
	}

	at := t.now()
	var cascade []model.Event
	if proj.BreakOpen {
		cascade = append(cascade, model.NewBreakEnd(user.ID, at))
	}
	if proj.ActiveProjectID != "" {
		cascade = append(cascade, model.NewProjectEnd(user.ID, proj.ActiveProjectID, at))
	}
	cascade = append(cascade, model.NewDayEnd(user.ID, at))

	if _, err := t.store.AppendAll(ctx, cascade); err != nil {
		return nil, fmt.Errorf("appending workday end cascade: %w", err)
	}

	report := BuildReport(append(events, cascade...), at)
	t.resolveNames(ctx, &report)
	summary := report.Days[len(report.Days)-1]

	lines := []string{fmt.Sprintf("Workday ended at %s", FormatClock(at))}
	for _, pt := range summary.ProjectTotals() {
		lines = append(lines, fmt.Sprintf("  %s: %s", pt.Project, FormatDuration(pt.Total)))
	}
	if bt := summary.BreakTotal(); bt > 0 {
		lines = append(lines, fmt.Sprintf("  Breaks: %s", FormatDuration(bt)))
	}
	lines = append(lines, fmt.Sprintf("  Total: %s worked", FormatDuration(summary.WorkTotal())))

	return &DayClose{
		Outcome: Outcome{At: at, Lines: lines},
		Summary: summary,
	}, nil
}

// Report builds the duration report for the date range [from, to], both
// inclusive and matched against each workday's start date. Zero bounds mean
// unbounded. A non-empty projectFilter keeps only that project's sessions.
// Report is a pure read; it appends nothing.
func (t *Tracker) Report(ctx context.Context, userKey string, from, to time.Time, projectFilter string) (*Report, error) {
	user, err := t.users.UserByEmail(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%q: %w", userKey, ErrUserNotFound)
	}

	var until time.Time
	if !to.IsZero() {
		until = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), to.Location())
	}
	events, err := t.store.EventsFor(ctx, user.ID, until)
	if err != nil {
		return nil, fmt.Errorf("reading event log: %w", err)
	}

	report := BuildReport(events, t.now())

	if !from.IsZero() || !to.IsZero() {
		fromKey, toKey := "", "9999-12-31"
		if !from.IsZero() {
			fromKey = from.Format("2006-01-02")
		}
		if !to.IsZero() {
			toKey = to.Format("2006-01-02")
		}
		var days []DaySummary
		for _, d := range report.Days {
			if d.Date >= fromKey && d.Date <= toKey {
				days = append(days, d)
			}
		}
		report.Days = days
	}

	if projectFilter != "" {
		p, err := t.projects.ProjectByName(ctx, user.ID, projectFilter)
		if err != nil {
			return nil, fmt.Errorf("resolving project: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("%q: %w", projectFilter, ErrProjectNotFound)
		}
		report = report.FilterProject(p.ID)
	}

	t.resolveNames(ctx, &report)
	return &report, nil
}

// Status returns the current projection with resolved names and, while a day
// is open, its running summary.
func (t *Tracker) Status(ctx context.Context, userKey string) (*Status, error) {
	user, events, proj, err := t.load(ctx, userKey)
	if err != nil {
		return nil, err
	}

	st := &Status{
		User:             *user,
		Projection:       proj,
		ActiveProject:    t.projectName(ctx, proj.ActiveProjectID),
		SuspendedProject: t.projectName(ctx, proj.SuspendedProjectID),
	}

	if proj.DayOpen {
		report := BuildReport(events, t.now())
		t.resolveNames(ctx, &report)
		if len(report.Days) > 0 {
			last := report.Days[len(report.Days)-1]
			if !last.Closed {
				st.Today = &last
			}
		}
	}
	return st, nil
}

// trackedToday computes the project's reduced work total for the day still
// open at the cutoff.
func (t *Tracker) trackedToday(events []model.Event, projectID string, at time.Time) time.Duration {
	report := BuildReport(events, at)
	if len(report.Days) == 0 {
		return 0
	}
	day := report.Days[len(report.Days)-1]
	var total time.Duration
	for _, s := range day.Sessions {
		if s.ProjectID == projectID {
			total += s.Duration()
		}
	}
	return total
}

// suspendedLine renders the "Suspended ..." status line for a project that
// was just ended at the given instant, with its day totals from the reducer.
func (t *Tracker) suspendedLine(ctx context.Context, events []model.Event, projectID string, at time.Time) string {
	report := BuildReport(events, at)
	start := at
	if len(report.Days) > 0 {
		for _, s := range report.Days[len(report.Days)-1].Sessions {
			if s.ProjectID == projectID {
				start = s.Start
				break
			}
		}
	}
	tracked := t.trackedToday(events, projectID, at)
	return fmt.Sprintf("Suspended %q: Start %s, End %s, Time Tracked %s",
		t.projectName(ctx, projectID), FormatClock(start), FormatClock(at), FormatHHMM(tracked))
}

// resolveNames fills session and total project names across a report.
func (t *Tracker) resolveNames(ctx context.Context, r *Report) {
	cache := map[string]string{}
	name := func(id string) string {
		if n, ok := cache[id]; ok {
			return n
		}
		n := t.projectName(ctx, id)
		cache[id] = n
		return n
	}
	for i := range r.Days {
		for j := range r.Days[i].Sessions {
			r.Days[i].Sessions[j].Project = name(r.Days[i].Sessions[j].ProjectID)
		}
	}
}
