package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskvault/internal/models"
	"taskvault/internal/storage"
)

const todoColumns = `id, board_id, task, status, is_sub_task, created_at`

func scanTodo(row interface{ Scan(...any) error }) (models.Todo, error) {
	var t models.Todo
	var status string
	if err := row.Scan(&t.ID, &t.BoardID, &t.Task, &status, &t.IsSubTask, &t.CreatedAt); err != nil {
		return models.Todo{}, err
	}
	t.Status = models.TodoStatus(status)
	return t, nil
}

// CreateTodo appends a todo to an existing board.
func (s *Store) CreateTodo(ctx context.Context, t models.Todo) (models.Todo, error) {
	t, err := storage.PrepareTodo(t, s.now())
	if err != nil {
		return models.Todo{}, err
	}
	if _, err := s.GetBoard(ctx, t.BoardID); err != nil {
		return models.Todo{}, err
	}
	t.ID = newID()

	_, err = s.db.ExecContext(ctx, `INSERT INTO todos(`+todoColumns+`) VALUES(?, ?, ?, ?, ?, ?)`,
		t.ID, t.BoardID, t.Task, string(t.Status), t.IsSubTask, t.CreatedAt)
	if err != nil {
		return models.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	return s.GetTodo(ctx, t.ID)
}

// ListTodos returns the todos of a board in insertion order.
func (s *Store) ListTodos(ctx context.Context, boardID string) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE board_id = ? ORDER BY rowid`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// GetTodo retrieves a todo by id.
func (s *Store) GetTodo(ctx context.Context, id string) (models.Todo, error) {
	t, err := scanTodo(s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, fmt.Errorf("todo %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return t, nil
}

// UpdateTodo merges text and status changes into a stored todo.
func (s *Store) UpdateTodo(ctx context.Context, id string, changes models.TodoChanges) (models.Todo, error) {
	current, err := s.GetTodo(ctx, id)
	if err != nil {
		return models.Todo{}, err
	}
	next, err := storage.ApplyTodoChanges(current, changes)
	if err != nil {
		return models.Todo{}, err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE todos SET task = ?, status = ? WHERE id = ?`, next.Task, string(next.Status), id)
	if err != nil {
		return models.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return s.GetTodo(ctx, id)
}

// DeleteTodo removes a todo by id.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return expectAffected(res, "todo", id)
}
