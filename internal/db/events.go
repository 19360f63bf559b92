package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
)

// ErrNonMonotonic is returned when an append carries a timestamp earlier than
// the user's latest logged event.
var ErrNonMonotonic = errors.New("event timestamp precedes the latest logged event")

// Append persists a single event after the monotonicity check. The check and
// the insert run in one transaction so concurrent appends cannot interleave.
func (db *DB) Append(ctx context.Context, ev model.Event) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := appendTx(ctx, tx, ev)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit event: %w", err)
	}
	return id, nil
}

// AppendAll persists a cascade atomically: either every event is appended, in
// order, or none is.
func (db *DB) AppendAll(ctx context.Context, evs []model.Event) ([]int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
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
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event cascade: %w", err)
	}
	return ids, nil
}

func appendTx(ctx context.Context, tx *sql.Tx, ev model.Event) (int64, error) {
	var lastNs sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT at_unix_ns FROM events WHERE user_id = ? ORDER BY at_unix_ns DESC, id DESC LIMIT 1`,
		ev.UserID,
	).Scan(&lastNs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read latest event: %w", err)
	}
	if lastNs.Valid && ev.At.UnixNano() < lastNs.Int64 {
		return 0, fmt.Errorf("%s at %s: %w", ev.Kind(), ev.At.Format(time.RFC3339), ErrNonMonotonic)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (user_id, project_id, category, edge, at, at_unix_ns, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.UserID, ev.ProjectID, string(ev.Category), string(ev.Edge),
		ev.At.Format(time.RFC3339Nano), ev.At.UnixNano(), ev.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}
	return id, nil
}

// EventsFor returns the user's events ordered by timestamp, ties broken by
// insertion id. A zero until means no cutoff.
func (db *DB) EventsFor(ctx context.Context, userID string, until time.Time) ([]model.Event, error) {
	query := `SELECT id, user_id, project_id, category, edge, at, note
	          FROM events WHERE user_id = ?`
	args := []any{userID}
	if !until.IsZero() {
		query += ` AND at_unix_ns <= ?`
		args = append(args, until.UnixNano())
	}
	query += ` ORDER BY at_unix_ns, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var ev model.Event
		var atStr string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ProjectID, &ev.Category, &ev.Edge, &atStr, &ev.Note); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.At, err = time.Parse(time.RFC3339Nano, atStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp %q: %w", atStr, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
