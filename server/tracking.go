package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/track"
)

type activateRequest struct {
	Name       string `json:"name"`
	AutoCreate bool   `json:"auto_create"`
	Force      bool   `json:"force"`
}

type endProjectRequest struct {
	Name      string `json:"name"`
	StartNext string `json:"start_next"`
}

type breakRequest struct {
	Note string `json:"note"`
}

type projectStateRequest struct {
	Name string `json:"name"`
}

// trackingError maps core errors onto HTTP status codes. State machine
// refusals are conflicts; unknown names are not found.
func trackingError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, track.ErrUserNotFound), errors.Is(err, track.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, track.ErrDayAlreadyOpen),
		errors.Is(err, track.ErrDayNotOpen),
		errors.Is(err, track.ErrNoActiveProject),
		errors.Is(err, track.ErrProjectAlreadyActive),
		errors.Is(err, track.ErrBreakAlreadyOpen),
		errors.Is(err, track.ErrNoBreakOpen),
		errors.Is(err, track.ErrBreakInProgress),
		errors.Is(err, track.ErrProjectMismatch),
		errors.Is(err, track.ErrProjectArchived),
		errors.Is(err, ErrNonMonotonic):
		status = http.StatusConflict
	}

	body := map[string]any{"error": err.Error()}
	var stateErr *track.StateError
	if errors.As(err, &stateErr) && stateErr.ActiveProject != "" {
		body["active_project"] = stateErr.ActiveProject
		body["since"] = stateErr.Since.Format(time.RFC3339)
	}
	return c.JSON(status, body)
}

func (s *Server) handleStartDay(c echo.Context) error {
	out, err := s.tracker.StartDay(c.Request().Context(), c.Get("email").(string))
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleEndDay(c echo.Context) error {
	dc, err := s.tracker.EndDay(c.Request().Context(), c.Get("email").(string))
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, dc)
}

// handleActivate starts work on a project. A confirmation-required result is
// a 200 with the confirm field set; the client re-posts with force.
func (s *Server) handleActivate(c echo.Context) error {
	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "project name required"})
	}

	res, err := s.tracker.Activate(c.Request().Context(), c.Get("email").(string), req.Name, track.ActivateOptions{
		AutoCreate: req.AutoCreate,
		Force:      req.Force,
	})
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleEndProject(c echo.Context) error {
	var req endProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	out, err := s.tracker.EndProject(c.Request().Context(), c.Get("email").(string), req.Name, req.StartNext)
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleBreak(c echo.Context) error {
	var req breakRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	out, err := s.tracker.Break(c.Request().Context(), c.Get("email").(string), req.Note)
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleContinue(c echo.Context) error {
	out, err := s.tracker.Continue(c.Request().Context(), c.Get("email").(string))
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleStatus(c echo.Context) error {
	st, err := s.tracker.Status(c.Request().Context(), c.Get("email").(string))
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// handleReport returns the raw duration report; rendering happens client-side.
// Query params: from and to as YYYY-MM-DD, project to filter.
func (s *Server) handleReport(c echo.Context) error {
	var from, to time.Time
	var err error
	if v := c.QueryParam("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from date"})
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid to date"})
		}
	}

	rep, err := s.tracker.Report(c.Request().Context(), c.Get("email").(string), from, to, c.QueryParam("project"))
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (s *Server) handleListProjects(c echo.Context) error {
	includeArchived := c.QueryParam("all") == "true"
	projects, err := s.store.ListProjects(c.Request().Context(), c.Get("user_id").(string), includeArchived)
	if err != nil {
		return trackingError(c, err)
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

// handleCreateProject pre-creates a project without starting it
func (s *Server) handleCreateProject(c echo.Context) error {
	var req projectStateRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "project name required"})
	}

	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	existing, err := s.store.ProjectByName(ctx, userID, req.Name)
	if err != nil {
		return trackingError(c, err)
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "project already exists"})
	}

	p, err := s.store.CreateProject(ctx, userID, req.Name)
	if err != nil {
		return trackingError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) setProjectState(c echo.Context, state string) error {
	var req projectStateRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "project name required"})
	}

	ctx := c.Request().Context()
	userID := c.Get("user_id").(string)

	if state == model.ProjectArchived {
		// the active project cannot be archived
		st, err := s.tracker.Status(ctx, c.Get("email").(string))
		if err != nil {
			return trackingError(c, err)
		}
		if st.ActiveProject == req.Name {
			return c.JSON(http.StatusConflict, map[string]string{"error": "project is currently being tracked"})
		}
	}

	p, err := s.store.SetProjectState(ctx, userID, req.Name, state)
	if err != nil {
		return trackingError(c, err)
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleArchiveProject(c echo.Context) error {
	return s.setProjectState(c, model.ProjectArchived)
}

func (s *Server) handleRestoreProject(c echo.Context) error {
	return s.setProjectState(c, model.ProjectActive)
}
