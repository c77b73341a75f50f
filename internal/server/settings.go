package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskvault/internal/models"
	"taskvault/internal/storage"
	"taskvault/internal/suggest"
)

// handleGetSettings returns the caller's settings, or an empty object when
// none were saved yet.
func (s *Server) handleGetSettings(c *gin.Context) {
	email, ok := s.requireQuery(c, "email")
	if !ok || !s.authorizeOwner(c, email) {
		return
	}
	settings, err := s.store.GetSettings(c.Request.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		respondSuccess(c, http.StatusOK, gin.H{})
		return
	}
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, settings)
}

// handleUpdateSettings creates or merges the settings for an email.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req models.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !s.authorizeOwner(c, req.Email) {
		return
	}
	settings, err := s.store.UpsertSettings(c.Request.Context(), req)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, settings)
}

// handleCreateTicket files a support ticket.
func (s *Server) handleCreateTicket(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
		Issue string `json:"issue" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	ticket, err := s.store.CreateTicket(c.Request.Context(), models.Ticket{Name: req.Name, Email: req.Email, Issue: req.Issue})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, ticket)
}

// handleAISuggest asks the remote models for completions. It always answers
// 200; upstream failures degrade to the canned suggestions.
func (s *Server) handleAISuggest(c *gin.Context) {
	var req struct {
		BoardTitle  string `json:"boardTitle"`
		CurrentTask string `json:"currentTask"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"suggestions": s.remoteSuggestions(c.Request.Context(), req.BoardTitle, req.CurrentTask)})
}

func (s *Server) remoteSuggestions(ctx context.Context, boardTitle, input string) []string {
	fallback := append([]string(nil), suggest.FallbackSuggestions...)
	if s.remote == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	suggestions, err := s.remote.Suggest(ctx, boardTitle, input)
	if err != nil || len(suggestions) == 0 {
		return fallback
	}
	return suggestions
}
