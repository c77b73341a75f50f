// Package storage defines the persistence contract shared by the sqlite and
// mongo backends, together with the validation both apply before writing.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskvault/internal/models"
)

var (
	// ErrNotFound is returned when an id does not resolve to a stored document.
	ErrNotFound = errors.New("not found")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Store is implemented by every backend.
type Store interface {
	CreateBoard(ctx context.Context, b models.Board) (models.Board, error)
	ListBoards(ctx context.Context, email string) ([]models.Board, error)
	GetBoard(ctx context.Context, id string) (models.Board, error)
	UpdateBoard(ctx context.Context, id, title string) (models.Board, error)
	// DeleteBoard removes the board and every todo that belongs to it.
	DeleteBoard(ctx context.Context, id string) error

	CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error)
	// ListTodos returns the board's todos in creation order.
	ListTodos(ctx context.Context, boardID string) ([]models.Todo, error)
	GetTodo(ctx context.Context, id string) (models.Todo, error)
	UpdateTodo(ctx context.Context, id string, changes models.TodoChanges) (models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error

	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	ListProjects(ctx context.Context, email string) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
	UpdateProject(ctx context.Context, id string, changes models.ProjectChanges) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// GetSettings returns ErrNotFound when the email has no record yet.
	GetSettings(ctx context.Context, email string) (models.Settings, error)
	// UpsertSettings creates the record on first use and merges afterwards.
	UpsertSettings(ctx context.Context, u models.SettingsUpdate) (models.Settings, error)

	CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error)

	Close() error
}

// PrepareBoard validates a board before insertion and fills server-side fields.
func PrepareBoard(b models.Board, now time.Time) (models.Board, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.UserEmail = strings.TrimSpace(b.UserEmail)
	if b.Title == "" {
		return models.Board{}, invalidf("board title must not be empty")
	}
	if b.UserEmail == "" {
		return models.Board{}, invalidf("board owner email is required")
	}
	b.CreatedAt = now.UTC()
	return b, nil
}

// ValidateBoardTitle checks a replacement title.
func ValidateBoardTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalidf("board title must not be empty")
	}
	return title, nil
}

// PrepareTodo validates a todo before insertion and applies defaults.
func PrepareTodo(t models.Todo, now time.Time) (models.Todo, error) {
	t.Task = strings.TrimSpace(t.Task)
	if t.Task == "" {
		return models.Todo{}, invalidf("task text must not be empty")
	}
	if strings.TrimSpace(t.BoardID) == "" {
		return models.Todo{}, invalidf("board id is required")
	}
	if t.Status == "" {
		t.Status = models.StatusPending
	}
	if _, ok := models.ValidTodoStatuses[t.Status]; !ok {
		return models.Todo{}, invalidf("unknown status %q", t.Status)
	}
	t.CreatedAt = now.UTC()
	return t, nil
}

// ApplyTodoChanges merges changes into current and validates the result.
func ApplyTodoChanges(current models.Todo, changes models.TodoChanges) (models.Todo, error) {
	if changes.Task != nil {
		task := strings.TrimSpace(*changes.Task)
		if task == "" {
			return models.Todo{}, invalidf("task text must not be empty")
		}
		current.Task = task
	}
	if changes.Status != nil {
		if _, ok := models.ValidTodoStatuses[*changes.Status]; !ok {
			return models.Todo{}, invalidf("unknown status %q", *changes.Status)
		}
		current.Status = *changes.Status
	}
	return current, nil
}

// PrepareProject validates a project before insertion and applies defaults.
func PrepareProject(p models.Project, now time.Time) (models.Project, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return models.Project{}, invalidf("project title must not be empty")
	}
	if strings.TrimSpace(p.UserEmail) == "" {
		return models.Project{}, invalidf("project owner email is required")
	}
	if p.Category == "" {
		p.Category = models.CategoryDev
	}
	if p.Status == "" {
		p.Status = models.ProjectInProgress
	}
	if err := checkProjectCounts(p); err != nil {
		return models.Project{}, err
	}
	p.CreatedAt = now.UTC()
	return p, nil
}

// ApplyProjectChanges merges changes into current and validates the result.
// Progress is stored as given and never recomputed here.
func ApplyProjectChanges(current models.Project, changes models.ProjectChanges) (models.Project, error) {
	changes.Apply(&current)
	current.Title = strings.TrimSpace(current.Title)
	if current.Title == "" {
		return models.Project{}, invalidf("project title must not be empty")
	}
	if err := checkProjectCounts(current); err != nil {
		return models.Project{}, err
	}
	return current, nil
}

func checkProjectCounts(p models.Project) error {
	if p.Tasks < 0 {
		return invalidf("task count must not be negative")
	}
	if p.Completed < 0 || p.Completed > p.Tasks {
		return invalidf("completed count %d outside 0..%d", p.Completed, p.Tasks)
	}
	return nil
}

// PrepareSettings validates the upsert key.
func PrepareSettings(u models.SettingsUpdate) (models.SettingsUpdate, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return models.SettingsUpdate{}, invalidf("settings email is required")
	}
	return u, nil
}

// PrepareTicket validates a ticket before insertion and applies defaults.
func PrepareTicket(t models.Ticket, now time.Time) (models.Ticket, error) {
	t.Name = strings.TrimSpace(t.Name)
	t.Email = strings.TrimSpace(t.Email)
	t.Issue = strings.TrimSpace(t.Issue)
	if t.Name == "" || t.Email == "" || t.Issue == "" {
		return models.Ticket{}, invalidf("name, email and issue are required")
	}
	if t.Status == "" {
		t.Status = models.TicketOpen
	}
	t.CreatedAt = now.UTC()
	return t, nil
}
