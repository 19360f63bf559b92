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

// ErrUserExists is returned when creating a user whose email is taken.
var ErrUserExists = errors.New("user already exists")

// UserByEmail looks a user up by email. Returns (nil, nil) when it does not exist.
func (db *DB) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.scanUser(db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, last_active, created_at
		 FROM users WHERE email = ?`, email))
}

// UserByID looks a user up by id. Returns (nil, nil) when it does not exist.
func (db *DB) UserByID(ctx context.Context, id string) (*model.User, error) {
	return db.scanUser(db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, last_active, created_at
		 FROM users WHERE id = ?`, id))
}

// CreateUser registers a new user.
func (db *DB) CreateUser(ctx context.Context, firstName, lastName, email string) (*model.User, error) {
	existing, err := db.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%q: %w", email, ErrUserExists)
	}

	u := model.User{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by email.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, last_active, created_at
		 FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// TouchUser records when the user was last selected.
func (db *DB) TouchUser(ctx context.Context, id string, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET last_active = ? WHERE id = ?`,
		at.Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to update last_active: %w", err)
	}
	return nil
}

// DeleteUser removes a user together with their projects and event log.
func (db *DB) DeleteUser(ctx context.Context, email string) error {
	u, err := db.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM events WHERE user_id = ?`,
		`DELETE FROM projects WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, u.ID); err != nil {
			return fmt.Errorf("failed to delete user data: %w", err)
		}
	}
	return tx.Commit()
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func scanUserRow(row rowScanner) (*model.User, error) {
	var u model.User
	var lastActive sql.NullString
	var createdAt string
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &lastActive, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	var err error
	u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user created_at: %w", err)
	}
	if lastActive.Valid {
		at, err := time.Parse(time.RFC3339Nano, lastActive.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user last_active: %w", err)
		}
		u.LastActive = &at
	}
	return &u, nil
}
