package portal

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"taskvault/internal/client"
	"taskvault/internal/models"
	"taskvault/internal/storage"
)

// FilterAll disables the status filter.
const FilterAll = "All"

// ProjectsSession is the project list of one user.
type ProjectsSession struct {
	api   *client.Client
	email string

	mu       sync.Mutex
	projects []models.Project
}

// OpenProjects loads the projects owned by email.
func OpenProjects(ctx context.Context, api *client.Client, email string) (*ProjectsSession, error) {
	s := &ProjectsSession{api: api, email: email}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the local list with the server's.
func (s *ProjectsSession) Load(ctx context.Context) error {
	projects, err := s.api.ListProjects(ctx, s.email)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return nil
}

// Projects returns the list as last loaded.
func (s *ProjectsSession) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.projects...)
}

// Create adds a fresh project with nothing completed yet.
func (s *ProjectsSession) Create(ctx context.Context, title, category string, tasks int) (models.Project, error) {
	if strings.TrimSpace(title) == "" || tasks <= 0 {
		return models.Project{}, fmt.Errorf("%w: title and a positive task count are required", storage.ErrInvalid)
	}
	p, err := s.api.CreateProject(ctx, models.Project{
		Title:     title,
		Category:  category,
		Tasks:     tasks,
		Status:    models.ProjectInProgress,
		UserEmail: s.email,
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, s.Load(ctx)
}

// QuickProgress completes one more task of a project. A project whose tasks
// are all completed is returned unchanged.
func (s *ProjectsSession) QuickProgress(ctx context.Context, id string) (models.Project, error) {
	current, ok := s.find(id)
	if !ok {
		return models.Project{}, fmt.Errorf("project %s: %w", id, storage.ErrNotFound)
	}
	if current.Completed >= current.Tasks {
		return current, nil
	}

	completed := current.Completed + 1
	progress := int(math.Round(float64(completed) / float64(current.Tasks) * 100))
	status := models.ProjectInProgress
	if progress == 100 {
		status = models.ProjectActive
	}
	updated, err := s.api.UpdateProject(ctx, id, models.ProjectChanges{
		Completed: &completed,
		Progress:  &progress,
		Status:    &status,
	})
	if err != nil {
		return models.Project{}, fmt.Errorf("update progress: %w", err)
	}
	return updated, s.Load(ctx)
}

// Delete removes a project and reloads.
func (s *ProjectsSession) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return s.Load(ctx)
}

// Filter returns the projects whose title contains search (ignoring case)
// and whose status equals status; FilterAll or "" matches any status.
func (s *ProjectsSession) Filter(search, status string) []models.Project {
	needle := strings.ToLower(search)
	out := []models.Project{}
	for _, p := range s.Projects() {
		if !strings.Contains(strings.ToLower(p.Title), needle) {
			continue
		}
		if status != "" && status != FilterAll && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Pending counts projects that are not yet Active.
func (s *ProjectsSession) Pending() int {
	n := 0
	for _, p := range s.Projects() {
		if p.Status != models.ProjectActive {
			n++
		}
	}
	return n
}

func (s *ProjectsSession) find(id string) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}
