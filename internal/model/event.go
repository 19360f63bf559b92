package model

import "time"

// Category classifies what a tracking event bounds
type Category string

const (
	CategoryWorkday Category = "workday"
	CategoryProject Category = "project"
	CategoryBreak   Category = "break"
)

// Edge marks whether an event opens or closes a phase
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Event is one entry in a user's append-only tracking log.
// Events are never updated or deleted; corrections are appended.
type Event struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id,omitempty"` // empty for workday and break events
	Category  Category  `json:"category"`
	Edge      Edge      `json:"edge"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"` // only meaningful on break start
}

// Kind returns a readable action name like "project start"
func (e Event) Kind() string {
	return string(e.Category) + " " + string(e.Edge)
}

// NewDayStart creates a workday start event
func NewDayStart(userID string, at time.Time) Event {
	return Event{UserID: userID, Category: CategoryWorkday, Edge: EdgeStart, At: at}
}

// NewDayEnd creates a workday end event
func NewDayEnd(userID string, at time.Time) Event {
	return Event{UserID: userID, Category: CategoryWorkday, Edge: EdgeEnd, At: at}
}

// NewProjectStart creates a project phase start event
func NewProjectStart(userID, projectID string, at time.Time) Event {
	return Event{UserID: userID, ProjectID: projectID, Category: CategoryProject, Edge: EdgeStart, At: at}
}

// NewProjectEnd creates a project phase end event
func NewProjectEnd(userID, projectID string, at time.Time) Event {
	return Event{UserID: userID, ProjectID: projectID, Category: CategoryProject, Edge: EdgeEnd, At: at}
}

// NewBreakStart creates a break start event with an optional note
func NewBreakStart(userID string, at time.Time, note string) Event {
	return Event{UserID: userID, Category: CategoryBreak, Edge: EdgeStart, At: at, Note: note}
}

// NewBreakEnd creates a break end event
func NewBreakEnd(userID string, at time.Time) Event {
	return Event{UserID: userID, Category: CategoryBreak, Edge: EdgeEnd, At: at}
}
