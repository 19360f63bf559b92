package track_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/track"
)

func TestBuildReportClosedDay(t *testing.T) {
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		model.NewBreakStart("u", at(10, 0), "coffee"),
		model.NewBreakEnd("u", at(10, 15)),
		model.NewProjectEnd("u", "p1", at(11, 0)),
		model.NewDayEnd("u", at(11, 0)),
	}, at(12, 0))

	require.Len(t, rep.Days, 1)
	day := rep.Days[0]
	require.Equal(t, "2025-03-10", day.Date)
	require.True(t, day.Closed)
	require.Equal(t, at(11, 0), day.EndedAt)
	require.Len(t, day.Sessions, 2)
	require.Equal(t, 55*time.Minute, day.Sessions[0].Duration())
	require.Equal(t, 45*time.Minute, day.Sessions[1].Duration())
	require.Equal(t, 100*time.Minute, day.WorkTotal())
	require.Equal(t, 15*time.Minute, day.BreakTotal())
	require.Equal(t, 5*time.Minute, day.UnassignedTotal())
	require.Empty(t, day.Faults)
	require.Empty(t, rep.Faults)
}

func TestBuildReportOpenDayBoundedAtCutoff(t *testing.T) {
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 30)),
	}, at(10, 0))

	require.Len(t, rep.Days, 1)
	day := rep.Days[0]
	require.False(t, day.Closed)
	require.True(t, day.EndedAt.IsZero())
	require.Equal(t, at(10, 0), day.ReportedUntil)
	require.Len(t, day.Sessions, 1)
	require.True(t, day.Sessions[0].Ongoing)
	require.Equal(t, 30*time.Minute, day.Sessions[0].Duration())
}

func TestBuildReportOpenBreakBoundedAtCutoff(t *testing.T) {
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 0)),
		model.NewBreakStart("u", at(9, 30), ""),
	}, at(9, 45))

	day := rep.Days[0]
	require.Len(t, day.Sessions, 1)
	require.False(t, day.Sessions[0].Ongoing)
	require.Len(t, day.Breaks, 1)
	require.True(t, day.Breaks[0].Ongoing)
	require.Equal(t, 15*time.Minute, day.Breaks[0].Duration())
}

// A session that runs past midnight belongs to the day that opened it.
func TestBuildReportCrossMidnightAttribution(t *testing.T) {
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", start),
		model.NewProjectStart("u", "p1", start),
		model.NewProjectEnd("u", "p1", end),
		model.NewDayEnd("u", end),
	}, end.Add(time.Hour))

	require.Len(t, rep.Days, 1)
	require.Equal(t, "2025-03-10", rep.Days[0].Date)
	require.Equal(t, 4*time.Hour, rep.Days[0].WorkTotal())
}

func TestBuildReportZeroDurationSession(t *testing.T) {
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 5)),
		model.NewProjectEnd("u", "p1", at(9, 5)),
		model.NewDayEnd("u", at(9, 5)),
	}, at(10, 0))

	day := rep.Days[0]
	require.Len(t, day.Sessions, 1)
	require.Equal(t, time.Duration(0), day.Sessions[0].Duration())
	require.Empty(t, day.Faults)
}

// A day whose end event is missing is truncated at the next day start and
// flagged, so its time is still reported but never double-counted.
func TestBuildReportMissingDayEndTruncates(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", day1),
		model.NewProjectStart("u", "p1", day1.Add(time.Hour)),
		withID(model.NewDayStart("u", day2), 9),
		model.NewProjectStart("u", "p1", day2.Add(time.Hour)),
		model.NewProjectEnd("u", "p1", day2.Add(2*time.Hour)),
		model.NewDayEnd("u", day2.Add(2*time.Hour)),
	}, day2.Add(3*time.Hour))

	require.Len(t, rep.Days, 2)

	first := rep.Days[0]
	require.Equal(t, "2025-03-10", first.Date)
	require.False(t, first.Closed)
	require.Equal(t, day2, first.ReportedUntil)
	require.Len(t, first.Sessions, 1)
	require.True(t, first.Sessions[0].Ongoing)
	require.Len(t, first.Faults, 1)
	require.Equal(t, int64(9), first.Faults[0].EventID)

	second := rep.Days[1]
	require.Equal(t, "2025-03-11", second.Date)
	require.True(t, second.Closed)
	require.Equal(t, time.Hour, second.WorkTotal())
	require.Empty(t, second.Faults)
}

func TestBuildReportOrphanEvents(t *testing.T) {
	rep := track.BuildReport([]model.Event{
		withID(model.NewProjectStart("u", "p1", at(8, 0)), 3),
		model.NewDayStart("u", at(9, 0)),
		model.NewDayEnd("u", at(10, 0)),
	}, at(11, 0))

	require.Len(t, rep.Faults, 1)
	require.Equal(t, int64(3), rep.Faults[0].EventID)
	require.Len(t, rep.Days, 1)
}

func TestBuildReportBreakOpenAtDayEnd(t *testing.T) {
	rep := track.BuildReport([]model.Event{
		model.NewDayStart("u", at(9, 0)),
		model.NewProjectStart("u", "p1", at(9, 0)),
		model.NewBreakStart("u", at(10, 0), ""),
		model.NewBreakEnd("u", at(10, 30)),
		model.NewProjectEnd("u", "p1", at(10, 30)),
		model.NewDayEnd("u", at(10, 30)),
	}, at(11, 0))

	day := rep.Days[0]
	require.Equal(t, time.Hour, day.WorkTotal())
	require.Equal(t, 30*time.Minute, day.BreakTotal())
	require.Empty(t, day.Faults)
}

func TestReportProjectTotalsSorted(t *testing.T) {
	rep := track.Report{Days: []track.DaySummary{{
		Sessions: []track.Session{
			{ProjectID: "p2", Project: "Beta", Start: at(9, 0), End: at(10, 0)},
			{ProjectID: "p1", Project: "Alpha", Start: at(10, 0), End: at(10, 30)},
			{ProjectID: "p2", Project: "Beta", Start: at(10, 30), End: at(11, 0)},
		},
	}}}
	totals := rep.ProjectTotals()
	require.Len(t, totals, 2)
	require.Equal(t, "Alpha", totals[0].Project)
	require.Equal(t, 30*time.Minute, totals[0].Total)
	require.Equal(t, "Beta", totals[1].Project)
	require.Equal(t, 90*time.Minute, totals[1].Total)
}

func TestFilterProjectDropsEmptyDays(t *testing.T) {
	rep := track.Report{Days: []track.DaySummary{
		{Date: "2025-03-10", Sessions: []track.Session{{ProjectID: "p1", Start: at(9, 0), End: at(10, 0)}}},
		{Date: "2025-03-11", Sessions: []track.Session{{ProjectID: "p2", Start: at(9, 0), End: at(10, 0)}}},
	}}
	out := rep.FilterProject("p2")
	require.Len(t, out.Days, 1)
	require.Equal(t, "2025-03-11", out.Days[0].Date)
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{100 * time.Minute, "1h 40m"},
		{45 * time.Minute, "45m"},
		{30 * time.Second, "30s"},
		{0, "0s"},
		{2 * time.Hour, "2h 0m"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, track.FormatDuration(c.d))
	}
}

func TestFormatHHMM(t *testing.T) {
	require.Equal(t, "01:40", track.FormatHHMM(100*time.Minute))
	require.Equal(t, "00:05", track.FormatHHMM(5*time.Minute))
	require.Equal(t, "10:00", track.FormatHHMM(10*time.Hour))
}
