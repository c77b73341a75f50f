package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskvault/internal/analytics"
	"taskvault/internal/feed"
	"taskvault/internal/models"
)

// ownedProjects loads the projects of ?email= for the derived views.
func (s *Server) ownedProjects(c *gin.Context) (string, []models.Project, bool) {
	email, ok := s.requireQuery(c, "email")
	if !ok || !s.authorizeOwner(c, email) {
		return "", nil, false
	}
	projects, err := s.store.ListProjects(c.Request.Context(), email)
	if err != nil {
		s.respondStoreError(c, err)
		return "", nil, false
	}
	return email, projects, true
}

// handleAnalytics returns summary statistics and the weekly series.
func (s *Server) handleAnalytics(c *gin.Context) {
	_, projects, ok := s.ownedProjects(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, analytics.Build(projects))
}

// handleReport serves the export report as a downloadable JSON document.
func (s *Server) handleReport(c *gin.Context) {
	email, projects, ok := s.ownedProjects(c)
	if !ok {
		return
	}
	now := s.now()
	var buf bytes.Buffer
	if err := analytics.BuildReport(email, projects, now).Encode(&buf); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+analytics.ReportFilename(now)+`"`)
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// handleNotifications returns the feed derived from project deadlines and
// progress, optionally filtered by ?type=.
func (s *Server) handleNotifications(c *gin.Context) {
	_, projects, ok := s.ownedProjects(c)
	if !ok {
		return
	}
	items := feed.FilterType(feed.Notifications(projects, s.now()), c.Query("type"))
	respondSuccess(c, http.StatusOK, items)
}

// handleHistory returns the activity log filtered by ?q=.
func (s *Server) handleHistory(c *gin.Context) {
	_, projects, ok := s.ownedProjects(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, feed.Search(feed.History(projects), c.Query("q")))
}

// handleProfile returns the derived profile statistics.
func (s *Server) handleProfile(c *gin.Context) {
	_, projects, ok := s.ownedProjects(c)
	if !ok {
		return
	}
	respondSuccess(c, http.StatusOK, analytics.BuildProfile(projects))
}
