package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskvault/internal/models"
)

type projectRequest struct {
	Title     string     `json:"title" binding:"required"`
	Category  string     `json:"category"`
	Tasks     *int       `json:"tasks" binding:"required"`
	Completed int        `json:"completed"`
	Progress  int        `json:"progress"`
	Status    string     `json:"status"`
	UserEmail string     `json:"userEmail" binding:"required"`
	Deadline  *time.Time `json:"deadline"`
}

// handleListProjects returns the projects owned by ?email=.
func (s *Server) handleListProjects(c *gin.Context) {
	email, ok := s.requireQuery(c, "email")
	if !ok || !s.authorizeOwner(c, email) {
		return
	}
	projects, err := s.store.ListProjects(c.Request.Context(), email)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, projects)
}

// handleCreateProject creates a new project entity.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !s.authorizeOwner(c, req.UserEmail) {
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), models.Project{
		Title:     req.Title,
		Category:  req.Category,
		Tasks:     *req.Tasks,
		Completed: req.Completed,
		Progress:  req.Progress,
		Status:    req.Status,
		UserEmail: req.UserEmail,
		Deadline:  req.Deadline,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, project)
}

// handleUpdateProject merges progress, status or other fields into a project.
func (s *Server) handleUpdateProject(c *gin.Context) {
	var changes models.ProjectChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	id := c.Param("id")
	if s.authEnabled() && !s.ownsProject(c, id) {
		return
	}

	project, err := s.store.UpdateProject(c.Request.Context(), id, changes)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, project)
}

// handleDeleteProject removes a project.
func (s *Server) handleDeleteProject(c *gin.Context) {
	id := c.Param("id")
	if s.authEnabled() && !s.ownsProject(c, id) {
		return
	}
	if err := s.store.DeleteProject(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Project Deleted"})
}

func (s *Server) ownsProject(c *gin.Context, id string) bool {
	project, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return false
	}
	return s.authorizeOwner(c, project.UserEmail)
}
