package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskvault/internal/models"
	"taskvault/internal/storage"
)

const projectColumns = `id, title, category, tasks, completed, progress, status, user_email, deadline, created_at`

func scanProject(row interface{ Scan(...any) error }) (models.Project, error) {
	var p models.Project
	var deadline sql.NullTime
	err := row.Scan(&p.ID, &p.Title, &p.Category, &p.Tasks, &p.Completed, &p.Progress, &p.Status, &p.UserEmail, &deadline, &p.CreatedAt)
	if err != nil {
		return models.Project{}, err
	}
	if deadline.Valid {
		d := deadline.Time
		p.Deadline = &d
	}
	return p, nil
}

func deadlineArg(p models.Project) any {
	if p.Deadline == nil {
		return nil
	}
	return p.Deadline.UTC()
}

// ListProjects retrieves the owner's projects ordered by creation.
func (s *Store) ListProjects(ctx context.Context, email string) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE user_email = ? ORDER BY rowid`, email)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateProject persists a new project.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	p, err := storage.PrepareProject(p, s.now())
	if err != nil {
		return models.Project{}, err
	}
	p.ID = newID()

	_, err = s.db.ExecContext(ctx, `INSERT INTO projects(`+projectColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Category, p.Tasks, p.Completed, p.Progress, p.Status, p.UserEmail, deadlineArg(p), p.CreatedAt)
	if err != nil {
		return models.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, p.ID)
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("project %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// UpdateProject merges the given fields into a stored project.
func (s *Store) UpdateProject(ctx context.Context, id string, changes models.ProjectChanges) (models.Project, error) {
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	next, err := storage.ApplyProjectChanges(current, changes)
	if err != nil {
		return models.Project{}, err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE projects SET title = ?, category = ?, tasks = ?, completed = ?, progress = ?,
        status = ?, deadline = ? WHERE id = ?`,
		next.Title, next.Category, next.Tasks, next.Completed, next.Progress, next.Status, deadlineArg(next), id)
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project by id.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return expectAffected(res, "project", id)
}
