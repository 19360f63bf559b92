package track

import (
	"errors"
	"fmt"
	"time"
)

// State-violation sentinels. Each one means the intent is illegal in the
// current projection; the caller picks a different intent, nothing is retried.
var (
	ErrDayAlreadyOpen       = errors.New("workday already started")
	ErrDayNotOpen           = errors.New("no open workday")
	ErrNoActiveProject      = errors.New("no active project")
	ErrProjectAlreadyActive = errors.New("project already active")
	ErrBreakAlreadyOpen     = errors.New("break already open")
	ErrNoBreakOpen          = errors.New("no open break")
	ErrBreakInProgress      = errors.New("break in progress")
	ErrProjectMismatch      = errors.New("project is not the active one")
)

// Lookup sentinels, surfaced when a referenced entity cannot be resolved.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectArchived = errors.New("project is archived")
)

// StateError wraps a state-violation sentinel together with enough of the
// current projection for the caller to render an actionable message.
type StateError struct {
	Kind          error
	ActiveProject string    // name of the active project, if any
	Since         time.Time // when the conflicting phase started
}

func (e *StateError) Error() string {
	if e.ActiveProject != "" {
		return fmt.Sprintf("%s (%q since %s)", e.Kind.Error(), e.ActiveProject, e.Since.Format("15:04"))
	}
	if !e.Since.IsZero() {
		return fmt.Sprintf("%s (since %s)", e.Kind.Error(), e.Since.Format("15:04"))
	}
	return e.Kind.Error()
}

func (e *StateError) Unwrap() error { return e.Kind }

func stateErr(kind error) error {
	return &StateError{Kind: kind}
}

func stateErrSince(kind error, since time.Time) error {
	return &StateError{Kind: kind, Since: since}
}

func stateErrProject(kind error, project string, since time.Time) error {
	return &StateError{Kind: kind, ActiveProject: project, Since: since}
}
