package track_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/track"
)

// memStore is an in-memory EventStore honoring the append-only and
// monotonicity contracts.
type memStore struct {
	events []model.Event
	nextID int64
}

func (m *memStore) lastAt(userID string) (time.Time, bool) {
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].UserID == userID {
			return m.events[i].At, true
		}
	}
	return time.Time{}, false
}

func (m *memStore) Append(ctx context.Context, ev model.Event) (int64, error) {
	if last, ok := m.lastAt(ev.UserID); ok && ev.At.Before(last) {
		return 0, fmt.Errorf("event at %s precedes latest event at %s", ev.At, last)
	}
	m.nextID++
	ev.ID = m.nextID
	m.events = append(m.events, ev)
	return ev.ID, nil
}

func (m *memStore) AppendAll(ctx context.Context, evs []model.Event) ([]int64, error) {
	saved := m.events
	savedID := m.nextID
	ids := make([]int64, 0, len(evs))
	for _, ev := range evs {
		id, err := m.Append(ctx, ev)
		if err != nil {
			m.events = saved
			m.nextID = savedID
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) EventsFor(ctx context.Context, userID string, until time.Time) ([]model.Event, error) {
	var out []model.Event
	for _, ev := range m.events {
		if ev.UserID != userID {
			continue
		}
		if !until.IsZero() && ev.At.After(until) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// memDirectory implements ProjectDirectory and UserDirectory in memory.
type memDirectory struct {
	users    []model.User
	projects []model.Project
	seq      int
}

func (d *memDirectory) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	for i := range d.users {
		if d.users[i].Email == email {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (d *memDirectory) ProjectByName(ctx context.Context, userID, name string) (*model.Project, error) {
	for i := range d.projects {
		if d.projects[i].UserID == userID && d.projects[i].Name == name {
			p := d.projects[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (d *memDirectory) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	for i := range d.projects {
		if d.projects[i].ID == id {
			p := d.projects[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (d *memDirectory) CreateProject(ctx context.Context, userID, name string) (*model.Project, error) {
	d.seq++
	p := model.NewProject(fmt.Sprintf("proj-%d", d.seq), userID, name, time.Now())
	d.projects = append(d.projects, p)
	return &p, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *fakeClock) Set(h, m int) {
	c.t = time.Date(c.t.Year(), c.t.Month(), c.t.Day(), h, m, 0, 0, c.t.Location())
}

func newFixture(t *testing.T) (*track.Tracker, *memStore, *memDirectory, *fakeClock) {
	t.Helper()
	store := &memStore{}
	dir := &memDirectory{users: []model.User{{
		ID: "user-1", FirstName: "Tim", LastName: "Walter", Email: "tim@example.com",
	}}}
	clk := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	tracker := track.New(store, dir, dir, track.WithClock(clk.Now))
	return tracker, store, dir, clk
}

const user = "tim@example.com"

func TestStartDay(t *testing.T) {
	tracker, store, _, _ := newFixture(t)
	ctx := context.Background()

	out, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	require.Equal(t, []string{"Workday started at 09:00"}, out.Lines)
	require.Len(t, store.events, 1)
	require.Equal(t, model.CategoryWorkday, store.events[0].Category)
	require.Equal(t, model.EdgeStart, store.events[0].Edge)

	_, err = tracker.StartDay(ctx, user)
	require.ErrorIs(t, err, track.ErrDayAlreadyOpen)
	require.Len(t, store.events, 1)
}

func TestStartDayUnknownUser(t *testing.T) {
	tracker, _, _, _ := newFixture(t)
	_, err := tracker.StartDay(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, track.ErrUserNotFound)
}

func TestActivateRequiresOpenDay(t *testing.T) {
	tracker, store, _, _ := newFixture(t)
	_, err := tracker.Activate(context.Background(), user, "Report", track.ActivateOptions{AutoCreate: true})
	require.ErrorIs(t, err, track.ErrDayNotOpen)
	require.Empty(t, store.events)
}

func TestActivateAutoCreate(t *testing.T) {
	tracker, store, dir, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)

	clk.Set(9, 5)
	res, err := tracker.Activate(ctx, user, "Report", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	require.Nil(t, res.Confirm)
	require.Equal(t, []string{`Created project "Report"`, `Started "Report" at 09:05`}, res.Outcome.Lines)
	require.Len(t, dir.projects, 1)
	require.Len(t, store.events, 2)
}

func TestActivateUnknownWithoutAutoCreate(t *testing.T) {
	tracker, store, _, _ := newFixture(t)
	ctx := context.Background()
	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)

	_, err = tracker.Activate(ctx, user, "Ghost", track.ActivateOptions{})
	require.ErrorIs(t, err, track.ErrProjectNotFound)
	require.Len(t, store.events, 1)
}

func TestActivateArchivedProject(t *testing.T) {
	tracker, _, dir, _ := newFixture(t)
	ctx := context.Background()
	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)

	dir.projects = append(dir.projects, model.Project{
		ID: "proj-old", UserID: "user-1", Name: "Legacy", State: model.ProjectArchived,
	})
	_, err = tracker.Activate(ctx, user, "Legacy", track.ActivateOptions{})
	require.ErrorIs(t, err, track.ErrProjectArchived)
}

func TestActivateSameProjectAgain(t *testing.T) {
	tracker, store, _, _ := newFixture(t)
	ctx := context.Background()
	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "Report", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)

	_, err = tracker.Activate(ctx, user, "Report", track.ActivateOptions{AutoCreate: true, Force: true})
	require.ErrorIs(t, err, track.ErrProjectAlreadyActive)
	require.Len(t, store.events, 2)
}

func TestActivateConfirmationRequired(t *testing.T) {
	tracker, store, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)

	before := len(store.events)
	clk.Advance(45 * time.Minute)
	res, err := tracker.Activate(ctx, user, "Y", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	require.Nil(t, res.Outcome)
	require.NotNil(t, res.Confirm)
	require.Equal(t, "X", res.Confirm.Project)
	require.Equal(t, 45*time.Minute, res.Confirm.Elapsed)
	require.Len(t, store.events, before, "confirmation must append zero events")
}

func TestHandoverAtomicity(t *testing.T) {
	tracker, store, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "A", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)

	clk.Advance(30 * time.Minute)
	res, err := tracker.Activate(ctx, user, "B", track.ActivateOptions{AutoCreate: true, Force: true})
	require.NoError(t, err)
	require.Len(t, res.Outcome.Lines, 3) // created + suspended + started

	// exactly one end for A immediately followed by one start for B,
	// both at the same instant
	n := len(store.events)
	end, start := store.events[n-2], store.events[n-1]
	require.Equal(t, model.CategoryProject, end.Category)
	require.Equal(t, model.EdgeEnd, end.Edge)
	require.Equal(t, model.CategoryProject, start.Category)
	require.Equal(t, model.EdgeStart, start.Edge)
	require.NotEqual(t, end.ProjectID, start.ProjectID)
	require.True(t, end.At.Equal(start.At))
}

func TestActivateDuringBreakRefused(t *testing.T) {
	tracker, store, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	_, err = tracker.Break(ctx, user, "")
	require.NoError(t, err)

	before := len(store.events)
	_, err = tracker.Activate(ctx, user, "Y", track.ActivateOptions{AutoCreate: true, Force: true})
	require.ErrorIs(t, err, track.ErrBreakInProgress)
	require.Len(t, store.events, before)

	var stateErr *track.StateError
	require.True(t, errors.As(err, &stateErr))
	require.Equal(t, "X", stateErr.ActiveProject)
}

func TestBreakValidation(t *testing.T) {
	tracker, _, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := tracker.Break(ctx, user, "")
	require.ErrorIs(t, err, track.ErrDayNotOpen)

	_, err = tracker.StartDay(ctx, user)
	require.NoError(t, err)

	_, err = tracker.Break(ctx, user, "")
	require.ErrorIs(t, err, track.ErrNoActiveProject)

	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	_, err = tracker.Break(ctx, user, "coffee")
	require.NoError(t, err)

	_, err = tracker.Break(ctx, user, "")
	require.ErrorIs(t, err, track.ErrBreakAlreadyOpen)
}

func TestContinueWithoutBreak(t *testing.T) {
	tracker, _, _, _ := newFixture(t)
	_, err := tracker.Continue(context.Background(), user)
	require.ErrorIs(t, err, track.ErrNoBreakOpen)
}

func TestBreakRoundTrip(t *testing.T) {
	tracker, _, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)

	clk.Set(10, 0)
	_, err = tracker.Break(ctx, user, "lunch")
	require.NoError(t, err)

	clk.Set(10, 15)
	out, err := tracker.Continue(ctx, user)
	require.NoError(t, err)
	require.Equal(t, []string{`Resumed "X" at 10:15 after 15m break`}, out.Lines)

	st, err := tracker.Status(ctx, user)
	require.NoError(t, err)
	require.Equal(t, "X", st.ActiveProject)
	require.False(t, st.Projection.BreakOpen)
	require.Len(t, st.Today.Breaks, 1)
	require.Equal(t, 15*time.Minute, st.Today.BreakTotal())
	require.Equal(t, "lunch", st.Today.Breaks[0].Note)

	// work time excludes the break interval
	clk.Set(11, 0)
	st, err = tracker.Status(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 105*time.Minute, st.Today.WorkTotal())
}

func TestEndProjectMismatch(t *testing.T) {
	tracker, store, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "Z", track.ActivateOptions{AutoCreate: true, Force: true})
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{Force: true})
	require.NoError(t, err)

	before := len(store.events)
	_, err = tracker.EndProject(ctx, user, "Z", "")
	require.ErrorIs(t, err, track.ErrProjectMismatch)
	require.Len(t, store.events, before)
}

func TestEndProjectWhileIdle(t *testing.T) {
	tracker, _, _, _ := newFixture(t)
	ctx := context.Background()
	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)

	_, err = tracker.EndProject(ctx, user, "", "")
	require.ErrorIs(t, err, track.ErrNoActiveProject)
}

func TestEndProjectFromBreakClosesBreakFirst(t *testing.T) {
	tracker, store, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = tracker.Break(ctx, user, "")
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	_, err = tracker.EndProject(ctx, user, "", "")
	require.NoError(t, err)

	n := len(store.events)
	require.Equal(t, model.CategoryBreak, store.events[n-2].Category)
	require.Equal(t, model.EdgeEnd, store.events[n-2].Edge)
	require.Equal(t, model.CategoryProject, store.events[n-1].Category)
	require.Equal(t, model.EdgeEnd, store.events[n-1].Edge)
}

func TestEndProjectStartNext(t *testing.T) {
	tracker, store, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "Y", track.ActivateOptions{AutoCreate: true, Force: true})
	require.NoError(t, err)
	_, err = tracker.EndProject(ctx, user, "", "")
	require.NoError(t, err)

	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{})
	require.NoError(t, err)
	clk.Advance(20 * time.Minute)
	out, err := tracker.EndProject(ctx, user, "", "Y")
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)

	n := len(store.events)
	require.Equal(t, model.EdgeEnd, store.events[n-2].Edge)
	require.Equal(t, model.EdgeStart, store.events[n-1].Edge)
	require.True(t, store.events[n-2].At.Equal(store.events[n-1].At))

	st, err := tracker.Status(ctx, user)
	require.NoError(t, err)
	require.Equal(t, "Y", st.ActiveProject)
}

func TestEndProjectStartNextUnknownAppendsNothing(t *testing.T) {
	tracker, store, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)

	before := len(store.events)
	_, err = tracker.EndProject(ctx, user, "", "Ghost")
	require.ErrorIs(t, err, track.ErrProjectNotFound)
	require.Len(t, store.events, before)
}

func TestEndDayClosesEverything(t *testing.T) {
	tracker, _, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = tracker.Break(ctx, user, "")
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	close, err := tracker.EndDay(ctx, user)
	require.NoError(t, err)
	require.True(t, close.Summary.Closed)

	st, err := tracker.Status(ctx, user)
	require.NoError(t, err)
	require.False(t, st.Projection.DayOpen)
	require.Empty(t, st.Projection.ActiveProjectID)
	require.False(t, st.Projection.BreakOpen)
	require.Nil(t, st.Today)
}

func TestEndDayWithoutOpenDay(t *testing.T) {
	tracker, _, _, _ := newFixture(t)
	_, err := tracker.EndDay(context.Background(), user)
	require.ErrorIs(t, err, track.ErrDayNotOpen)
}

// A full day: start at 09:00, work on "Report" 09:05 to 10:00 and 10:15 to
// 11:00 with a 15m break in between, end at 11:00. Work time is 1h40m and is
// attributed to the workday's start date.
func TestScenarioFullDay(t *testing.T) {
	tracker, _, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)

	clk.Set(9, 5)
	_, err = tracker.Activate(ctx, user, "Report", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)

	clk.Set(10, 0)
	_, err = tracker.Break(ctx, user, "")
	require.NoError(t, err)

	clk.Set(10, 15)
	_, err = tracker.Continue(ctx, user)
	require.NoError(t, err)

	clk.Set(11, 0)
	out, err := tracker.EndProject(ctx, user, "", "")
	require.NoError(t, err)
	require.Equal(t,
		[]string{`Suspended "Report": Start 09:05, End 11:00, Time Tracked 01:40`},
		out.Lines)

	close, err := tracker.EndDay(ctx, user)
	require.NoError(t, err)

	summary := close.Summary
	require.Equal(t, "2025-03-10", summary.Date)
	require.Equal(t, 100*time.Minute, summary.WorkTotal())
	require.Equal(t, 15*time.Minute, summary.BreakTotal())
	require.Len(t, summary.Sessions, 2)
	totals := summary.ProjectTotals()
	require.Len(t, totals, 1)
	require.Equal(t, "Report", totals[0].Project)
	require.Equal(t, 100*time.Minute, totals[0].Total)
}

func TestReportIdempotent(t *testing.T) {
	tracker, _, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "X", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	clk.Advance(2 * time.Hour)
	_, err = tracker.EndDay(ctx, user)
	require.NoError(t, err)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	first, err := tracker.Report(ctx, user, from, from, "")
	require.NoError(t, err)
	second, err := tracker.Report(ctx, user, from, from, "")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 2*time.Hour, first.WorkTotal())
}

func TestReportProjectFilter(t *testing.T) {
	tracker, _, _, clk := newFixture(t)
	ctx := context.Background()

	_, err := tracker.StartDay(ctx, user)
	require.NoError(t, err)
	_, err = tracker.Activate(ctx, user, "A", track.ActivateOptions{AutoCreate: true})
	require.NoError(t, err)
	clk.Advance(time.Hour)
	_, err = tracker.Activate(ctx, user, "B", track.ActivateOptions{AutoCreate: true, Force: true})
	require.NoError(t, err)
	clk.Advance(30 * time.Minute)
	_, err = tracker.EndDay(ctx, user)
	require.NoError(t, err)

	rep, err := tracker.Report(ctx, user, time.Time{}, time.Time{}, "A")
	require.NoError(t, err)
	require.Len(t, rep.Days, 1)
	require.Len(t, rep.Days[0].Sessions, 1)
	require.Equal(t, "A", rep.Days[0].Sessions[0].Project)
	require.Equal(t, time.Hour, rep.WorkTotal())

	_, err = tracker.Report(ctx, user, time.Time{}, time.Time{}, "Nope")
	require.ErrorIs(t, err, track.ErrProjectNotFound)
}

// Property: at every prefix of a log produced by random valid intents, at
// most one day, one project phase and one break are open, and the fold
// records no faults.
func TestNoDoubleOpenProperty(t *testing.T) {
	tracker, store, _, clk := newFixture(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	names := []string{"A", "B", "C"}

	for i := 0; i < 400; i++ {
		clk.Advance(time.Duration(rng.Intn(10)+1) * time.Minute)
		switch rng.Intn(6) {
		case 0:
			_, _ = tracker.StartDay(ctx, user)
		case 1:
			_, _ = tracker.Activate(ctx, user, names[rng.Intn(len(names))],
				track.ActivateOptions{AutoCreate: true, Force: true})
		case 2:
			_, _ = tracker.Break(ctx, user, "")
		case 3:
			_, _ = tracker.Continue(ctx, user)
		case 4:
			_, _ = tracker.EndProject(ctx, user, "", "")
		case 5:
			_, _ = tracker.EndDay(ctx, user)
		}
	}
	require.NotEmpty(t, store.events)

	for prefix := 1; prefix <= len(store.events); prefix++ {
		p := track.Reduce(store.events[:prefix])
		require.Empty(t, p.Faults, "prefix %d", prefix)
		if p.BreakOpen {
			require.NotEmpty(t, p.SuspendedProjectID)
			require.True(t, p.DayOpen)
		}
		if p.ActiveProjectID != "" {
			require.True(t, p.DayOpen)
		}
	}
}
