// Package portal holds the interactive state of the task portal: a board's
// todos with their lock state, live suggestions, and the project list.
// Every mutation is followed by a full reload from the API.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taskvault/internal/client"
	"taskvault/internal/models"
	"taskvault/internal/sequence"
	"taskvault/internal/storage"
	"taskvault/internal/suggest"
)

// ErrLocked is returned when toggling or deleting a todo whose predecessor
// is still pending.
var ErrLocked = errors.New("todo is locked until the previous one is completed")

// BoardOptions tunes a BoardSession.
type BoardOptions struct {
	// Remote answers suggestion requests; nil keeps suggestions local.
	Remote suggest.Suggester
	// Debounce is the quiet period before suggestions are computed.
	Debounce time.Duration
	// Timeout bounds one remote suggestion request.
	Timeout time.Duration
	// OnSuggestions is called after each suggestion update.
	OnSuggestions func([]string)
	Logger        *slog.Logger
}

// BoardSession is one open board.
type BoardSession struct {
	api      *client.Client
	remote   suggest.Suggester
	timeout  time.Duration
	notify   func([]string)
	logger   *slog.Logger
	debounce *suggest.Debouncer

	mu          sync.Mutex
	board       models.Board
	todos       []sequence.TodoView
	suggestions []string
}

// OpenBoard loads a board and returns a session for it.
func OpenBoard(ctx context.Context, api *client.Client, boardID string, opts BoardOptions) (*BoardSession, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = suggest.DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &BoardSession{
		api:      api,
		remote:   opts.Remote,
		timeout:  opts.Timeout,
		notify:   opts.OnSuggestions,
		logger:   opts.Logger,
		debounce: suggest.NewDebouncer(opts.Debounce),
		board:    models.Board{ID: boardID},
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close cancels any pending suggestion round.
func (s *BoardSession) Close() {
	s.debounce.Stop()
}

// Load replaces the local state with the server's view of the board.
func (s *BoardSession) Load(ctx context.Context) error {
	s.mu.Lock()
	id := s.board.ID
	s.mu.Unlock()

	view, err := s.api.ViewBoard(ctx, id)
	if err != nil {
		return fmt.Errorf("load board %s: %w", id, err)
	}

	s.mu.Lock()
	s.board = view.Board
	s.todos = view.Todos
	s.mu.Unlock()
	return nil
}

// Board returns the board as last loaded.
func (s *BoardSession) Board() models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Todos returns the todos as last loaded, annotated with their lock state.
func (s *BoardSession) Todos() []sequence.TodoView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sequence.TodoView(nil), s.todos...)
}

// Add creates a task with its implied sub-tasks and reloads. Blank input is
// ignored. Pending suggestions are dropped.
func (s *BoardSession) Add(ctx context.Context, task string) ([]models.Todo, error) {
	if strings.TrimSpace(task) == "" {
		return nil, nil
	}
	created, err := s.api.AddTask(ctx, s.Board().ID, task)
	if err != nil {
		return created, fmt.Errorf("add task: %w", err)
	}

	s.debounce.Stop()
	s.mu.Lock()
	s.suggestions = nil
	s.mu.Unlock()

	return created, s.Load(ctx)
}

// Toggle flips a todo between pending and completed. Locked todos are
// refused.
func (s *BoardSession) Toggle(ctx context.Context, todoID string) (models.Todo, error) {
	current, ok := s.find(todoID)
	if !ok {
		return models.Todo{}, fmt.Errorf("todo %s: %w", todoID, storage.ErrNotFound)
	}
	if current.Locked {
		return models.Todo{}, ErrLocked
	}

	next := current.Status.Toggle()
	updated, err := s.api.UpdateTodo(ctx, todoID, models.TodoChanges{Status: &next})
	if err != nil {
		return models.Todo{}, fmt.Errorf("toggle todo: %w", err)
	}
	return updated, s.Load(ctx)
}

// Delete removes a todo and reloads. Locked todos are refused.
func (s *BoardSession) Delete(ctx context.Context, todoID string) error {
	current, ok := s.find(todoID)
	if !ok {
		return fmt.Errorf("todo %s: %w", todoID, storage.ErrNotFound)
	}
	if current.Locked {
		return ErrLocked
	}
	if err := s.api.DeleteTodo(ctx, todoID); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return s.Load(ctx)
}

// Rename changes the board title and reloads.
func (s *BoardSession) Rename(ctx context.Context, title string) error {
	if _, err := s.api.RenameBoard(ctx, s.Board().ID, title); err != nil {
		return fmt.Errorf("rename board: %w", err)
	}
	return s.Load(ctx)
}

func (s *BoardSession) find(todoID string) (sequence.TodoView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.todos {
		if t.ID == todoID {
			return t, true
		}
	}
	return sequence.TodoView{}, false
}

// Suggestions returns the current suggestion list.
func (s *BoardSession) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.suggestions...)
}

// Type records new input. After the quiet period the local suggestions are
// published, then remote ones are merged in when they arrive. A remote
// answer that lands after newer input is still merged.
func (s *BoardSession) Type(input string) {
	s.debounce.Trigger(func() { s.refreshSuggestions(input) })
}

func (s *BoardSession) refreshSuggestions(input string) {
	title := s.Board().Title
	s.publish(func([]string) []string { return suggest.Local(title, input) })

	if s.remote == nil || len(input) < 1 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	remote, err := s.remote.Suggest(ctx, title, input)
	if err != nil {
		s.logger.Warn("remote suggestions unavailable", slog.String("error", err.Error()))
		return
	}
	s.publish(func(current []string) []string { return suggest.Merge(current, remote) })
}

func (s *BoardSession) publish(update func([]string) []string) {
	s.mu.Lock()
	s.suggestions = update(s.suggestions)
	out := append([]string(nil), s.suggestions...)
	s.mu.Unlock()
	if s.notify != nil {
		s.notify(out)
	}
}
