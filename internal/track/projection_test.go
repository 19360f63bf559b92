package track_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/track"
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func withID(ev model.Event, id int64) model.Event {
	ev.ID = id
	return ev
}

func TestReduceEmptyLog(t *testing.T) {
	p := track.Reduce(nil)
	require.False(t, p.DayOpen)
	require.Empty(t, p.ActiveProjectID)
	require.False(t, p.BreakOpen)
	require.Empty(t, p.Faults)
}

func TestReduceWorkingState(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
	})
	require.True(t, p.DayOpen)
	require.Equal(t, at(9, 0), p.DayStartedAt)
	require.Equal(t, "p1", p.ActiveProjectID)
	require.Equal(t, at(9, 5), p.ProjectStartedAt)
	require.True(t, p.Working())
	require.Empty(t, p.Faults)
}

func TestReduceBreakKeepsProjectSuspended(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		model.NewBreakStart("u", at(10, 0), "lunch"),
	})
	require.True(t, p.BreakOpen)
	require.Equal(t, "lunch", p.BreakNote)
	require.Equal(t, "p1", p.ActiveProjectID)
	require.Equal(t, "p1", p.SuspendedProjectID)
	require.False(t, p.Working())
}

func TestReduceBreakEndResetsRunningInterval(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		model.NewBreakStart("u", at(10, 0), ""),
		model.NewBreakEnd("u", at(10, 15)),
	})
	require.False(t, p.BreakOpen)
	require.Empty(t, p.SuspendedProjectID)
	require.Equal(t, "p1", p.ActiveProjectID)
	require.Equal(t, at(10, 15), p.ProjectStartedAt)
}

func TestReduceDayEndClearsEverything(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		model.NewBreakStart("u", at(10, 0), ""),
		model.NewBreakEnd("u", at(10, 15)),
		model.NewProjectEnd("u", "p1", at(11, 0)),
		model.NewDayEnd("u", at(11, 0)),
	})
	require.False(t, p.DayOpen)
	require.Empty(t, p.ActiveProjectID)
	require.False(t, p.BreakOpen)
	require.Empty(t, p.Faults)
}

func TestReduceFaultDoubleDayStart(t *testing.T) {
	p := track.Reduce([]model.Event{
		withID(model.NewDayStart("u", at(9, 0)), 1),
		withID(model.NewDayStart("u", at(10, 0)), 2),
	})
	require.True(t, p.DayOpen)
	require.Equal(t, at(10, 0), p.DayStartedAt)
	require.Len(t, p.Faults, 1)
	require.Equal(t, int64(2), p.Faults[0].EventID)
}

func TestReduceFaultEndsWithoutStarts(t *testing.T) {
	p := track.Reduce([]model.Event{
		withID(model.NewDayEnd("u", at(9, 0)), 1),
		withID(model.NewDayStart("u", at(9, 5)), 2),
		withID(model.NewProjectEnd("u", "p1", at(9, 10)), 3),
		withID(model.NewBreakEnd("u", at(9, 15)), 4),
	})
	require.Len(t, p.Faults, 3)
	require.True(t, p.DayOpen)
	require.Empty(t, p.ActiveProjectID)
}

func TestReduceFaultDoubleProjectStart(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		withID(model.NewProjectStart("u", "p2", at(9, 30)), 7),
	})
	require.Len(t, p.Faults, 1)
	require.Equal(t, "p2", p.ActiveProjectID)
}

func TestReduceFaultProjectEndMismatch(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		model.NewProjectEnd("u", "p2", at(9, 30)),
	})
	require.Len(t, p.Faults, 1)
	require.Empty(t, p.ActiveProjectID)
}

func TestReduceFaultBreakWithoutProject(t *testing.T) {
	p := track.Reduce([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewBreakStart("u", at(9, 5), ""),
	})
	require.Len(t, p.Faults, 1)
	require.False(t, p.BreakOpen)
}

func TestReduceFaultUnknownEvent(t *testing.T) {
	p := track.Reduce([]model.Event{
		{UserID: "u", Category: "nap", Edge: "start", At: at(9, 0)},
	})
	require.Len(t, p.Faults, 1)
}
