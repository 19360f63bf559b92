package model

import "time"

// Project states
const (
	ProjectActive   = "active"
	ProjectArchived = "archived"
)

// Project is a named bucket that tracked time is attributed to
type Project struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	State      string     `json:"state"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewProject creates a project in the active state
func NewProject(id, userID, name string, now time.Time) Project {
	return Project{
		ID:        id,
		UserID:    userID,
		Name:      name,
		State:     ProjectActive,
		CreatedAt: now,
	}
}

// IsArchived reports whether the project refuses new tracking
func (p *Project) IsArchived() bool {
	return p.State == ProjectArchived
}
