package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"taskvault/internal/analytics"
	"taskvault/internal/feed"
	"taskvault/internal/models"
	"taskvault/internal/sequence"
)

// Health checks the server is up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

// CreateBoard creates a board owned by email.
func (c *Client) CreateBoard(ctx context.Context, title, email string) (models.Board, error) {
	var b models.Board
	err := c.do(ctx, http.MethodPost, "/boards", nil, models.Board{Title: title, UserEmail: email}, &b)
	return b, err
}

// ListBoards returns the boards owned by email.
func (c *Client) ListBoards(ctx context.Context, email string) ([]models.Board, error) {
	var out []models.Board
	err := c.do(ctx, http.MethodGet, "/boards"+pathID(email), nil, nil, &out)
	return out, err
}

// RenameBoard replaces a board title.
func (c *Client) RenameBoard(ctx context.Context, id, title string) (models.Board, error) {
	var b models.Board
	err := c.do(ctx, http.MethodPut, "/boards"+pathID(id), nil, map[string]string{"title": title}, &b)
	return b, err
}

// DeleteBoard removes a board and its todos.
func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/boards"+pathID(id), nil, nil, nil)
}

// BoardView is a board with lock-annotated todos.
type BoardView struct {
	Board models.Board        `json:"board"`
	Todos []sequence.TodoView `json:"todos"`
}

// ViewBoard fetches a board together with the lock state of its todos.
func (c *Client) ViewBoard(ctx context.Context, id string) (BoardView, error) {
	var v BoardView
	err := c.do(ctx, http.MethodGet, "/boards"+pathID(id)+"/view", nil, nil, &v)
	return v, err
}

// AddTask creates a task plus the sub-tasks its text implies.
func (c *Client) AddTask(ctx context.Context, boardID, task string) ([]models.Todo, error) {
	var out struct {
		Todos []models.Todo `json:"todos"`
	}
	err := c.do(ctx, http.MethodPost, "/boards"+pathID(boardID)+"/tasks", nil, map[string]string{"task": task}, &out)
	return out.Todos, err
}

// BoardSuggestions runs the server-side suggestion engine for a board.
func (c *Client) BoardSuggestions(ctx context.Context, boardID, input string) ([]string, error) {
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	err := c.do(ctx, http.MethodGet, "/boards"+pathID(boardID)+"/suggestions", url.Values{"input": {input}}, nil, &out)
	return out.Suggestions, err
}

// CreateTodo inserts one todo as given.
func (c *Client) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	var out models.Todo
	err := c.do(ctx, http.MethodPost, "/todos", nil, t, &out)
	return out, err
}

// ListTodos returns a board's todos in creation order.
func (c *Client) ListTodos(ctx context.Context, boardID string) ([]models.Todo, error) {
	var out []models.Todo
	err := c.do(ctx, http.MethodGet, "/todos"+pathID(boardID), nil, nil, &out)
	return out, err
}

// UpdateTodo merges changes into a todo.
func (c *Client) UpdateTodo(ctx context.Context, id string, changes models.TodoChanges) (models.Todo, error) {
	var out models.Todo
	err := c.do(ctx, http.MethodPut, "/todos"+pathID(id), nil, changes, &out)
	return out, err
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos"+pathID(id), nil, nil, nil)
}

// ListProjects returns the projects owned by email.
func (c *Client) ListProjects(ctx context.Context, email string) ([]models.Project, error) {
	var out []models.Project
	err := c.do(ctx, http.MethodGet, "/projects", emailQuery(email), nil, &out)
	return out, err
}

// CreateProject stores a new project.
func (c *Client) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, http.MethodPost, "/projects", nil, p, &out)
	return out, err
}

// UpdateProject merges changes into a project.
func (c *Client) UpdateProject(ctx context.Context, id string, changes models.ProjectChanges) (models.Project, error) {
	var out models.Project
	err := c.do(ctx, http.MethodPatch, "/projects"+pathID(id), nil, changes, &out)
	return out, err
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects"+pathID(id), nil, nil, nil)
}

// GetSettings returns the stored settings; found is false when the user has
// none yet.
func (c *Client) GetSettings(ctx context.Context, email string) (settings models.Settings, found bool, err error) {
	if err := c.do(ctx, http.MethodGet, "/settings", emailQuery(email), nil, &settings); err != nil {
		return models.Settings{}, false, err
	}
	return settings, settings.Email != "", nil
}

// UpdateSettings creates or merges a user's settings.
func (c *Client) UpdateSettings(ctx context.Context, u models.SettingsUpdate) (models.Settings, error) {
	var out models.Settings
	err := c.do(ctx, http.MethodPost, "/settings/update", nil, u, &out)
	return out, err
}

// CreateTicket files a support ticket.
func (c *Client) CreateTicket(ctx context.Context, name, email, issue string) (models.Ticket, error) {
	var out models.Ticket
	err := c.do(ctx, http.MethodPost, "/tickets", nil, models.Ticket{Name: name, Email: email, Issue: issue}, &out)
	return out, err
}

// AISuggest asks the remote models for completions of currentTask.
func (c *Client) AISuggest(ctx context.Context, boardTitle, currentTask string) ([]string, error) {
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	body := map[string]string{"boardTitle": boardTitle, "currentTask": currentTask}
	err := c.do(ctx, http.MethodPost, "/ai/suggest", nil, body, &out)
	return out.Suggestions, err
}

// Suggest makes the client usable as the remote half of a suggest.Engine.
func (c *Client) Suggest(ctx context.Context, boardTitle, input string) ([]string, error) {
	return c.AISuggest(ctx, boardTitle, input)
}

// Analytics returns the dashboard for email.
func (c *Client) Analytics(ctx context.Context, email string) (analytics.Dashboard, error) {
	var out analytics.Dashboard
	err := c.do(ctx, http.MethodGet, "/analytics", emailQuery(email), nil, &out)
	return out, err
}

// DownloadReport copies the export report to w and returns its file name.
func (c *Client) DownloadReport(ctx context.Context, email string, w io.Writer) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/analytics/report", emailQuery(email), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), nil
}

// Notifications returns the alert feed, optionally restricted to one type.
func (c *Client) Notifications(ctx context.Context, email, kind string) ([]feed.Notification, error) {
	q := emailQuery(email)
	if kind != "" {
		q.Set("type", kind)
	}
	var out []feed.Notification
	err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &out)
	return out, err
}

// History returns the activity log filtered by query.
func (c *Client) History(ctx context.Context, email, query string) ([]feed.Entry, error) {
	q := emailQuery(email)
	if query != "" {
		q.Set("q", query)
	}
	var out []feed.Entry
	err := c.do(ctx, http.MethodGet, "/history", q, nil, &out)
	return out, err
}

// Profile returns the derived profile card.
func (c *Client) Profile(ctx context.Context, email string) (analytics.Profile, error) {
	var out analytics.Profile
	err := c.do(ctx, http.MethodGet, "/profile", emailQuery(email), nil, &out)
	return out, err
}
