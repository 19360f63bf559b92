package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/client"
	"github.com/existflow/ironclock/internal/config"
	"github.com/existflow/ironclock/internal/db"
	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/track"
)

// session is the tracking backend a command talks to, either the local
// database or a remote server. Which one is decided by the config:
// a server_url switches the CLI to remote mode.
type session interface {
	UserLabel() string

	StartDay() (*track.Outcome, error)
	EndDay() (*track.DayClose, error)
	Activate(name string, autoCreate, force bool) (*track.ActivateResult, error)
	EndProject(name, startNext string) (*track.Outcome, error)
	Break(note string) (*track.Outcome, error)
	Continue() (*track.Outcome, error)
	Status() (*track.Status, error)
	Report(from, to time.Time, project string) (*track.Report, error)

	ListProjects(includeArchived bool) ([]model.Project, error)
	CreateProject(name string) (*model.Project, error)
	ArchiveProject(name string) error
	RestoreProject(name string) error

	Close() error
}

// openSession builds the backend for the loaded config
func openSession(cfg *config.Config) (session, error) {
	if cfg.ServerURL != "" {
		return openRemoteSession(cfg)
	}
	return openLocalSession(cfg)
}

// localSession runs the tracker against the local SQLite database
type localSession struct {
	db      *db.DB
	tracker *track.Tracker
	user    string
}

func openLocalSession(cfg *config.Config) (session, error) {
	if cfg.User == "" {
		return nil, errors.New("no user selected, run 'clock user select <email>' first")
	}

	path := cfg.DBPath
	if path == "" {
		var err error
		if path, err = db.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &localSession{
		db:      database,
		tracker: track.New(database, database, database),
		user:    cfg.User,
	}, nil
}

func (s *localSession) UserLabel() string { return s.user }
func (s *localSession) Close() error      { return s.db.Close() }

func (s *localSession) StartDay() (*track.Outcome, error) {
	return s.tracker.StartDay(context.Background(), s.user)
}

func (s *localSession) EndDay() (*track.DayClose, error) {
	return s.tracker.EndDay(context.Background(), s.user)
}

func (s *localSession) Activate(name string, autoCreate, force bool) (*track.ActivateResult, error) {
	return s.tracker.Activate(context.Background(), s.user, name, track.ActivateOptions{
		AutoCreate: autoCreate,
		Force:      force,
	})
}

func (s *localSession) EndProject(name, startNext string) (*track.Outcome, error) {
	return s.tracker.EndProject(context.Background(), s.user, name, startNext)
}

func (s *localSession) Break(note string) (*track.Outcome, error) {
	return s.tracker.Break(context.Background(), s.user, note)
}

func (s *localSession) Continue() (*track.Outcome, error) {
	return s.tracker.Continue(context.Background(), s.user)
}

func (s *localSession) Status() (*track.Status, error) {
	return s.tracker.Status(context.Background(), s.user)
}

func (s *localSession) Report(from, to time.Time, project string) (*track.Report, error) {
	return s.tracker.Report(context.Background(), s.user, from, to, project)
}

func (s *localSession) ListProjects(includeArchived bool) ([]model.Project, error) {
	ctx := context.Background()
	u, err := s.db.UserByEmail(ctx, s.user)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%q: %w", s.user, track.ErrUserNotFound)
	}
	return s.db.ListProjects(ctx, u.ID, includeArchived)
}

func (s *localSession) CreateProject(name string) (*model.Project, error) {
	ctx := context.Background()
	u, err := s.db.UserByEmail(ctx, s.user)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%q: %w", s.user, track.ErrUserNotFound)
	}
	return s.db.CreateProject(ctx, u.ID, name)
}

func (s *localSession) setProjectState(name, state string) error {
	ctx := context.Background()
	st, err := s.Status()
	if err != nil {
		return err
	}
	if state == model.ProjectArchived && st.ActiveProject == name {
		return errors.New("project is currently being tracked")
	}

	p, err := s.db.SetProjectState(ctx, st.User.ID, name, state)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%q: %w", name, track.ErrProjectNotFound)
	}
	return nil
}

func (s *localSession) ArchiveProject(name string) error {
	return s.setProjectState(name, model.ProjectArchived)
}

func (s *localSession) RestoreProject(name string) error {
	return s.setProjectState(name, model.ProjectActive)
}

// remoteSession forwards every verb to an ironclock server
type remoteSession struct {
	client *client.Client
}

func openRemoteSession(cfg *config.Config) (session, error) {
	c, err := client.NewClient()
	if err != nil {
		return nil, err
	}
	if c.Server() != cfg.ServerURL {
		if err := c.SetServer(cfg.ServerURL); err != nil {
			return nil, err
		}
	}
	if !c.IsLoggedIn() {
		return nil, errors.New("not logged in, run 'clock auth login' first")
	}
	return &remoteSession{client: c}, nil
}

func (s *remoteSession) UserLabel() string { return s.client.Email() }
func (s *remoteSession) Close() error      { return nil }

func (s *remoteSession) StartDay() (*track.Outcome, error) { return s.client.StartDay() }
func (s *remoteSession) EndDay() (*track.DayClose, error)  { return s.client.EndDay() }

func (s *remoteSession) Activate(name string, autoCreate, force bool) (*track.ActivateResult, error) {
	return s.client.Activate(name, autoCreate, force)
}

func (s *remoteSession) EndProject(name, startNext string) (*track.Outcome, error) {
	return s.client.EndProject(name, startNext)
}

func (s *remoteSession) Break(note string) (*track.Outcome, error) { return s.client.Break(note) }
func (s *remoteSession) Continue() (*track.Outcome, error)         { return s.client.Continue() }
func (s *remoteSession) Status() (*track.Status, error)            { return s.client.Status() }

func (s *remoteSession) Report(from, to time.Time, project string) (*track.Report, error) {
	fromStr, toStr := "", ""
	if !from.IsZero() {
		fromStr = from.Format("2006-01-02")
	}
	if !to.IsZero() {
		toStr = to.Format("2006-01-02")
	}
	return s.client.Report(fromStr, toStr, project)
}

func (s *remoteSession) ListProjects(includeArchived bool) ([]model.Project, error) {
	return s.client.ListProjects(includeArchived)
}

func (s *remoteSession) CreateProject(name string) (*model.Project, error) {
	return s.client.CreateProject(name)
}

func (s *remoteSession) ArchiveProject(name string) error { return s.client.ArchiveProject(name) }
func (s *remoteSession) RestoreProject(name string) error { return s.client.RestoreProject(name) }
