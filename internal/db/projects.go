package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/existflow/ironclock/internal/model"
)

// ErrProjectExists is returned when creating a project whose name is taken.
var ErrProjectExists = errors.New("project already exists")

// ProjectByName looks a project up by its per-user unique name.
// Returns (nil, nil) when it does not exist.
func (db *DB) ProjectByName(ctx context.Context, userID, name string) (*model.Project, error) {
	return db.scanProject(db.QueryRowContext(ctx,
		`SELECT id, user_id, name, state, archived_at, created_at
		 FROM projects WHERE user_id = ? AND name = ?`, userID, name))
}

// ProjectByID looks a project up by id. Returns (nil, nil) when it does not exist.
func (db *DB) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return db.scanProject(db.QueryRowContext(ctx,
		`SELECT id, user_id, name, state, archived_at, created_at
		 FROM projects WHERE id = ?`, id))
}

// CreateProject creates a project in the active state.
func (db *DB) CreateProject(ctx context.Context, userID, name string) (*model.Project, error) {
	existing, err := db.ProjectByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrProjectExists)
	}

	p := model.NewProject(uuid.New().String(), userID, name, time.Now().UTC())
	_, err = db.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, name, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Name, p.State, p.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return &p, nil
}

// ListProjects returns the user's projects ordered by name. Archived projects
// are included only when requested.
func (db *DB) ListProjects(ctx context.Context, userID string, includeArchived bool) ([]model.Project, error) {
	query := `SELECT id, user_id, name, state, archived_at, created_at
	          FROM projects WHERE user_id = ?`
	if !includeArchived {
		query += ` AND state != 'archived'`
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// SetProjectState archives or reactivates a project by name.
func (db *DB) SetProjectState(ctx context.Context, userID, name, state string) (*model.Project, error) {
	p, err := db.ProjectByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	var archivedAt any
	p.State = state
	p.ArchivedAt = nil
	if state == model.ProjectArchived {
		now := time.Now().UTC()
		p.ArchivedAt = &now
		archivedAt = now.Format(time.RFC3339Nano)
	}
	_, err = db.ExecContext(ctx,
		`UPDATE projects SET state = ?, archived_at = ? WHERE id = ?`,
		state, archivedAt, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update project state: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanProject(row *sql.Row) (*model.Project, error) {
	p, err := scanProjectRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanProjectRow(row rowScanner) (*model.Project, error) {
	var p model.Project
	var archivedAt sql.NullString
	var createdAt string
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.State, &archivedAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	var err error
	p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse project created_at: %w", err)
	}
	if archivedAt.Valid {
		at, err := time.Parse(time.RFC3339Nano, archivedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse project archived_at: %w", err)
		}
		p.ArchivedAt = &at
	}
	return &p, nil
}
