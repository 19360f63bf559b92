package db

import "fmt"

// migrate runs all database migrations
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateUsers,
		migrationCreateProjects,
		migrationCreateEvents,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    last_active TEXT,
    created_at TEXT NOT NULL
);
`

const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'active',
    archived_at TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id),
    UNIQUE (user_id, name)
);

CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);
`

// at holds the RFC 3339 timestamp with its original offset; at_unix_ns is the
// same instant as nanoseconds since epoch, used for ordering and cutoffs so
// mixed offsets still sort chronologically.
const migrationCreateEvents = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    project_id TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    edge TEXT NOT NULL,
    at TEXT NOT NULL,
    at_unix_ns INTEGER NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_events_user_at ON events(user_id, at_unix_ns, id);
`
