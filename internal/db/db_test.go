package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/existflow/ironclock/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func createTestUser(t *testing.T, database *DB) *model.User {
	t.Helper()
	u, err := database.CreateUser(context.Background(), "Tim", "Walter", "tim@example.com")
	require.NoError(t, err)
	return u
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// reopening runs the migrations again without error
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestUserLifecycle(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, database)
	require.NotEmpty(t, u.ID)

	found, err := database.UserByEmail(ctx, "tim@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, u.ID, found.ID)
	require.Nil(t, found.LastActive)

	missing, err := database.UserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = database.CreateUser(ctx, "Other", "Person", "tim@example.com")
	require.ErrorIs(t, err, ErrUserExists)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, database.TouchUser(ctx, u.ID, at))
	found, err = database.UserByEmail(ctx, "tim@example.com")
	require.NoError(t, err)
	require.NotNil(t, found.LastActive)
	require.True(t, found.LastActive.Equal(at))

	users, err := database.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestDeleteUserRemovesEverything(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)

	_, err := database.CreateProject(ctx, u.ID, "Report")
	require.NoError(t, err)
	_, err = database.Append(ctx, model.NewDayStart(u.ID, time.Now()))
	require.NoError(t, err)

	require.NoError(t, database.DeleteUser(ctx, u.Email))

	found, err := database.UserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Nil(t, found)
	events, err := database.EventsFor(ctx, u.ID, time.Time{})
	require.NoError(t, err)
	require.Empty(t, events)
	projects, err := database.ListProjects(ctx, u.ID, true)
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestProjectLifecycle(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)

	p, err := database.CreateProject(ctx, u.ID, "Report")
	require.NoError(t, err)
	require.Equal(t, model.ProjectActive, p.State)

	_, err = database.CreateProject(ctx, u.ID, "Report")
	require.ErrorIs(t, err, ErrProjectExists)

	byName, err := database.ProjectByName(ctx, u.ID, "Report")
	require.NoError(t, err)
	require.NotNil(t, byName)
	require.Equal(t, p.ID, byName.ID)

	byID, err := database.ProjectByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := database.ProjectByName(ctx, u.ID, "Ghost")
	require.NoError(t, err)
	require.Nil(t, missing)

	archived, err := database.SetProjectState(ctx, u.ID, "Report", model.ProjectArchived)
	require.NoError(t, err)
	require.True(t, archived.IsArchived())
	require.NotNil(t, archived.ArchivedAt)

	active, err := database.ListProjects(ctx, u.ID, false)
	require.NoError(t, err)
	require.Empty(t, active)
	all, err := database.ListProjects(ctx, u.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)

	restored, err := database.SetProjectState(ctx, u.ID, "Report", model.ProjectActive)
	require.NoError(t, err)
	require.False(t, restored.IsArchived())
	require.Nil(t, restored.ArchivedAt)
}

func TestAppendAndEventsFor(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	id1, err := database.Append(ctx, model.NewDayStart(u.ID, base))
	require.NoError(t, err)
	id2, err := database.Append(ctx, model.NewProjectStart(u.ID, "p1", base.Add(5*time.Minute)))
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	events, err := database.EventsFor(ctx, u.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, model.CategoryWorkday, events[0].Category)
	require.Equal(t, "p1", events[1].ProjectID)
	require.True(t, events[1].At.Equal(base.Add(5*time.Minute)))

	// cutoff excludes later events
	events, err = database.EventsFor(ctx, u.ID, base)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestAppendPreservesOffset(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)

	berlin := time.FixedZone("CET", 1*60*60)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, berlin)
	_, err := database.Append(ctx, model.NewDayStart(u.ID, at))
	require.NoError(t, err)

	events, err := database.EventsFor(ctx, u.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.True(t, events[0].At.Equal(at))
	_, offset := events[0].At.Zone()
	require.Equal(t, 3600, offset)
}

func TestAppendRejectsNonMonotonic(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := database.Append(ctx, model.NewDayStart(u.ID, base))
	require.NoError(t, err)

	_, err = database.Append(ctx, model.NewProjectStart(u.ID, "p1", base.Add(-time.Minute)))
	require.ErrorIs(t, err, ErrNonMonotonic)

	// equal timestamps are fine; cascades share one instant
	_, err = database.Append(ctx, model.NewProjectStart(u.ID, "p1", base))
	require.NoError(t, err)
}

func TestMonotonicityIsPerUser(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)
	other, err := database.CreateUser(ctx, "Ann", "Smith", "ann@example.com")
	require.NoError(t, err)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err = database.Append(ctx, model.NewDayStart(u.ID, base))
	require.NoError(t, err)

	// another user's log is independent
	_, err = database.Append(ctx, model.NewDayStart(other.ID, base.Add(-time.Hour)))
	require.NoError(t, err)
}

func TestAppendAllIsAtomic(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, database)

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ids, err := database.AppendAll(ctx, []model.Event{
		model.NewDayStart(u.ID, base),
		model.NewProjectStart(u.ID, "p1", base),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	// second event violates monotonicity; the whole cascade must roll back
	_, err = database.AppendAll(ctx, []model.Event{
		model.NewProjectEnd(u.ID, "p1", base.Add(time.Hour)),
		model.NewDayEnd(u.ID, base.Add(-time.Hour)),
	})
	require.ErrorIs(t, err, ErrNonMonotonic)

	events, err := database.EventsFor(ctx, u.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)
}
