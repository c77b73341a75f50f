package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskvault/internal/models"
	"taskvault/internal/sequence"
)

type boardRequest struct {
	Title     string `json:"title" binding:"required"`
	UserEmail string `json:"userEmail"`
}

// handleCreateBoard creates a board for the given owner.
func (s *Server) handleCreateBoard(c *gin.Context) {
	var req boardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !s.authorizeOwner(c, req.UserEmail) {
		return
	}

	board, err := s.store.CreateBoard(c.Request.Context(), models.Board{Title: req.Title, UserEmail: req.UserEmail})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, board)
}

// handleListBoards returns every board owned by the email in the path.
func (s *Server) handleListBoards(c *gin.Context) {
	email := c.Param("id")
	if !s.authorizeOwner(c, email) {
		return
	}
	boards, err := s.store.ListBoards(c.Request.Context(), email)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, boards)
}

// handleUpdateBoard renames a board.
func (s *Server) handleUpdateBoard(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	id := c.Param("id")
	if s.authEnabled() {
		if _, ok := s.ownedBoard(c, id); !ok {
			return
		}
	}

	board, err := s.store.UpdateBoard(c.Request.Context(), id, req.Title)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// handleDeleteBoard removes a board and all of its todos.
func (s *Server) handleDeleteBoard(c *gin.Context) {
	id := c.Param("id")
	if s.authEnabled() {
		if _, ok := s.ownedBoard(c, id); !ok {
			return
		}
	}
	if err := s.store.DeleteBoard(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Board deleted"})
}

type boardView struct {
	Board models.Board        `json:"board"`
	Todos []sequence.TodoView `json:"todos"`
}

// handleBoardView returns the board with its todos annotated with the lock
// state derived from their order.
func (s *Server) handleBoardView(c *gin.Context) {
	board, ok := s.ownedBoard(c, c.Param("id"))
	if !ok {
		return
	}
	todos, err := s.store.ListTodos(c.Request.Context(), board.ID)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, boardView{Board: board, Todos: sequence.Annotate(todos)})
}

// handleSmartAdd creates a task together with the sub-tasks its text implies.
func (s *Server) handleSmartAdd(c *gin.Context) {
	var req struct {
		Task string `json:"task" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	board, ok := s.ownedBoard(c, c.Param("id"))
	if !ok {
		return
	}

	created, err := sequence.Create(c.Request.Context(), s.store, board.ID, req.Task)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"todos": created})
}

// handleBoardSuggestions runs the full suggestion engine for a board.
func (s *Server) handleBoardSuggestions(c *gin.Context) {
	board, ok := s.ownedBoard(c, c.Param("id"))
	if !ok {
		return
	}
	suggestions := s.suggester.Suggest(c.Request.Context(), board.Title, c.Query("input"))
	respondSuccess(c, http.StatusOK, gin.H{"suggestions": suggestions})
}

// ownedBoard loads a board and checks it belongs to the caller.
func (s *Server) ownedBoard(c *gin.Context, id string) (models.Board, bool) {
	board, err := s.store.GetBoard(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return models.Board{}, false
	}
	if !s.authorizeOwner(c, board.UserEmail) {
		return models.Board{}, false
	}
	return board, true
}
