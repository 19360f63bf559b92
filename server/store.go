package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// Store gives the tracking core access to the server's Postgres database.
// It implements track.EventStore, track.ProjectDirectory and
// track.UserDirectory for the authenticated user's data.
type Store struct {
	db *sql.DB
}

// ErrNonMonotonic is returned when an append carries a timestamp earlier than
// the user's latest logged event.
var ErrNonMonotonic = errors.New("event timestamp precedes the latest logged event")

// Append persists a single event after the monotonicity check.
func (st *Store) Append(ctx context.Context, ev model.Event) (int64, error) {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := appendTx(ctx, tx, ev)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// AppendAll persists a cascade atomically.
func (st *Store) AppendAll(ctx context.Context, evs []model.Event) ([]int64, error) {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(evs))
	for _, ev := range evs {
		id, err := appendTx(ctx, tx, ev)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, tx.Commit()
}

func appendTx(ctx context.Context, tx *sql.Tx, ev model.Event) (int64, error) {
	var lastNs sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT at_unix_ns FROM events WHERE user_id = $1 ORDER BY at_unix_ns DESC, id DESC LIMIT 1`,
		ev.UserID,
	).Scan(&lastNs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if lastNs.Valid && ev.At.UnixNano() < lastNs.Int64 {
		return 0, fmt.Errorf("%s at %s: %w", ev.Kind(), ev.At.Format(time.RFC3339), ErrNonMonotonic)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO events (user_id, project_id, category, edge, at, at_unix_ns, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		ev.UserID, ev.ProjectID, string(ev.Category), string(ev.Edge),
		ev.At.Format(time.RFC3339Nano), ev.At.UnixNano(), ev.Note,
	).Scan(&id)
	return id, err
}

// EventsFor returns the user's events ordered by timestamp then id.
func (st *Store) EventsFor(ctx context.Context, userID string, until time.Time) ([]model.Event, error) {
	query := `SELECT id, user_id, project_id, category, edge, at, note
	          FROM events WHERE user_id = $1`
	args := []any{userID}
	if !until.IsZero() {
		query += ` AND at_unix_ns <= $2`
		args = append(args, until.UnixNano())
	}
	query += ` ORDER BY at_unix_ns, id`

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var atStr string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ProjectID, &ev.Category, &ev.Edge, &atStr, &ev.Note); err != nil {
			return nil, err
		}
		if ev.At, err = time.Parse(time.RFC3339Nano, atStr); err != nil {
			return nil, fmt.Errorf("bad event timestamp %q: %w", atStr, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// UserByEmail resolves a user, (nil, nil) when absent.
func (st *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	var lastActive sql.NullTime
	err := st.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, last_active, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &lastActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastActive.Valid {
		u.LastActive = &lastActive.Time
	}
	return &u, nil
}

// credentialsByEmail returns the user id and password hash for login.
func (st *Store) credentialsByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := st.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = $1`, email,
	).Scan(&id, &hash)
	return id, hash, err
}

// ProjectByName resolves a project by per-user name, (nil, nil) when absent.
func (st *Store) ProjectByName(ctx context.Context, userID, name string) (*model.Project, error) {
	return st.scanProject(st.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, state, archived_at, created_at
		 FROM projects WHERE user_id = $1 AND name = $2`, userID, name))
}

// ProjectByID resolves a project by id, (nil, nil) when absent.
func (st *Store) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return st.scanProject(st.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, state, archived_at, created_at
		 FROM projects WHERE id = $1`, id))
}

// CreateProject creates a project in the active state.
func (st *Store) CreateProject(ctx context.Context, userID, name string) (*model.Project, error) {
	var p model.Project
	err := st.db.QueryRowContext(ctx,
		`INSERT INTO projects (user_id, name) VALUES ($1, $2)
		 RETURNING id, user_id, name, state, created_at`,
		userID, name,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.State, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns the user's projects ordered by name.
func (st *Store) ListProjects(ctx context.Context, userID string, includeArchived bool) ([]model.Project, error) {
	query := `SELECT id, user_id, name, state, archived_at, created_at
	          FROM projects WHERE user_id = $1`
	if !includeArchived {
		query += ` AND state != 'archived'`
	}
	query += ` ORDER BY name`

	rows, err := st.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var archivedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.State, &archivedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		if archivedAt.Valid {
			p.ArchivedAt = &archivedAt.Time
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SetProjectState archives or reactivates a project, (nil, nil) when absent.
func (st *Store) SetProjectState(ctx context.Context, userID, name, state string) (*model.Project, error) {
	var archivedAt any
	if state == model.ProjectArchived {
		archivedAt = time.Now().UTC()
	}
	p, err := st.scanProject(st.db.QueryRowContext(ctx,
		`UPDATE projects SET state = $3, archived_at = $4
		 WHERE user_id = $1 AND name = $2
		 RETURNING id, user_id, name, state, archived_at, created_at`,
		userID, name, state, archivedAt))
	return p, err
}

func (st *Store) scanProject(row *sql.Row) (*model.Project, error) {
	var p model.Project
	var archivedAt sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.State, &archivedAt, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		p.ArchivedAt = &archivedAt.Time
	}
	return &p, nil
}
