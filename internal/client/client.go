// Package client talks to an ironclock server, giving the CLI a remote mode
// with the same verbs as local tracking.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/existflow/ironclock/internal/track"
)

// Config holds the remote session state
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
}

// Client is the remote tracking client
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
}

// RemoteError is a non-2xx response from the server
type RemoteError struct {
	Status        int
	Message       string
	ActiveProject string
	Since         time.Time
}

func (e *RemoteError) Error() string {
	return e.Message
}

// NewClient creates a client backed by ~/.ironclock/remote.json
func NewClient() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	c := &Client{
		configPath: filepath.Join(home, ".ironclock", "remote.json"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.loadConfig()
	return c, nil
}

func (c *Client) loadConfig() {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		c.config = &Config{ServerURL: "http://localhost:8080"}
		return
	}

	c.config = &Config{}
	json.Unmarshal(data, c.config)
	if c.config.ServerURL == "" {
		c.config.ServerURL = "http://localhost:8080"
	}
}

func (c *Client) saveConfig() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the server URL
func (c *Client) SetServer(url string) error {
	c.config.ServerURL = url
	return c.saveConfig()
}

// Server returns the configured server URL
func (c *Client) Server() string {
	return c.config.ServerURL
}

// Email returns the logged-in user's email
func (c *Client) Email() string {
	return c.config.Email
}

// IsLoggedIn reports whether a session token is stored
func (c *Client) IsLoggedIn() bool {
	return c.config.Token != ""
}

// do performs an authenticated JSON request and decodes the response into out
func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.config.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{Status: resp.StatusCode}
		var errBody struct {
			Error         string `json:"error"`
			ActiveProject string `json:"active_project"`
			Since         string `json:"since"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error != "" {
			remote.Message = errBody.Error
			remote.ActiveProject = errBody.ActiveProject
			if errBody.Since != "" {
				remote.Since, _ = time.Parse(time.RFC3339, errBody.Since)
			}
		} else {
			remote.Message = fmt.Sprintf("server returned %s", resp.Status)
		}
		return remote
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type authResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register creates an account and stores the returned session
func (c *Client) Register(firstName, lastName, email, password string) error {
	var result authResult
	err := c.do(http.MethodPost, "/api/v1/register", map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	}, &result)
	if err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.config.Email = email
	return c.saveConfig()
}

// Login authenticates and stores the returned session
func (c *Client) Login(email, password string) error {
	var result authResult
	err := c.do(http.MethodPost, "/api/v1/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.config.Email = email
	return c.saveConfig()
}

// Logout invalidates the server session and clears local state
func (c *Client) Logout() error {
	if c.config.Token != "" {
		// best effort; the local session is cleared either way
		c.do(http.MethodPost, "/api/v1/logout", nil, nil)
	}
	c.config.Token = ""
	c.config.UserID = ""
	c.config.Email = ""
	return c.saveConfig()
}

// Me fetches the logged-in user
func (c *Client) Me() (*model.User, error) {
	var u model.User
	if err := c.do(http.MethodGet, "/api/v1/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// StartDay opens a workday on the server
func (c *Client) StartDay() (*track.Outcome, error) {
	var out track.Outcome
	if err := c.do(http.MethodPost, "/api/v1/workday/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EndDay closes the workday and returns the day summary
func (c *Client) EndDay() (*track.DayClose, error) {
	var close track.DayClose
	if err := c.do(http.MethodPost, "/api/v1/workday/end", nil, &close); err != nil {
		return nil, err
	}
	return &close, nil
}

// Activate starts work on a project
func (c *Client) Activate(name string, autoCreate, force bool) (*track.ActivateResult, error) {
	var res track.ActivateResult
	err := c.do(http.MethodPost, "/api/v1/projects/start", map[string]any{
		"name":        name,
		"auto_create": autoCreate,
		"force":       force,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// EndProject closes the active project phase
func (c *Client) EndProject(name, startNext string) (*track.Outcome, error) {
	var out track.Outcome
	err := c.do(http.MethodPost, "/api/v1/projects/end", map[string]string{
		"name":       name,
		"start_next": startNext,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Break suspends the active project
func (c *Client) Break(note string) (*track.Outcome, error) {
	var out track.Outcome
	err := c.do(http.MethodPost, "/api/v1/breaks/start", map[string]string{"note": note}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Continue ends the open break
func (c *Client) Continue() (*track.Outcome, error) {
	var out track.Outcome
	if err := c.do(http.MethodPost, "/api/v1/breaks/end", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches the current tracking state
func (c *Client) Status() (*track.Status, error) {
	var st track.Status
	if err := c.do(http.MethodGet, "/api/v1/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Report fetches the duration report. Dates are YYYY-MM-DD; empty means unbounded.
func (c *Client) Report(from, to, project string) (*track.Report, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	if project != "" {
		q.Set("project", project)
	}
	path := "/api/v1/report"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var rep track.Report
	if err := c.do(http.MethodGet, path, nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListProjects fetches the user's projects
func (c *Client) ListProjects(includeArchived bool) ([]model.Project, error) {
	path := "/api/v1/projects"
	if includeArchived {
		path += "?all=true"
	}
	var projects []model.Project
	if err := c.do(http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject pre-creates a project without starting it
func (c *Client) CreateProject(name string) (*model.Project, error) {
	var p model.Project
	if err := c.do(http.MethodPost, "/api/v1/projects", map[string]string{"name": name}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ArchiveProject archives a project by name
func (c *Client) ArchiveProject(name string) error {
	return c.do(http.MethodPost, "/api/v1/projects/archive", map[string]string{"name": name}, nil)
}

// RestoreProject reactivates an archived project
func (c *Client) RestoreProject(name string) error {
	return c.do(http.MethodPost, "/api/v1/projects/restore", map[string]string{"name": name}, nil)
}
