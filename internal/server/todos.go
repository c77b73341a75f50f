package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskvault/internal/models"
)

type todoRequest struct {
	Task      string            `json:"task" binding:"required"`
	Status    models.TodoStatus `json:"status"`
	BoardID   string            `json:"boardId" binding:"required"`
	IsSubTask bool              `json:"isSubTask"`
}

// handleCreateTodo inserts a single todo into a board.
func (s *Server) handleCreateTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if s.authEnabled() {
		if _, ok := s.ownedBoard(c, req.BoardID); !ok {
			return
		}
	}

	todo, err := s.store.CreateTodo(c.Request.Context(), models.Todo{
		Task:      req.Task,
		Status:    req.Status,
		BoardID:   req.BoardID,
		IsSubTask: req.IsSubTask,
	})
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, todo)
}

// handleListTodos returns a board's todos in creation order.
func (s *Server) handleListTodos(c *gin.Context) {
	boardID := c.Param("id")
	if s.authEnabled() {
		if _, ok := s.ownedBoard(c, boardID); !ok {
			return
		}
	}
	todos, err := s.store.ListTodos(c.Request.Context(), boardID)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, todos)
}

// handleUpdateTodo merges task text or status into a todo.
func (s *Server) handleUpdateTodo(c *gin.Context) {
	var changes models.TodoChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	id := c.Param("id")
	if s.authEnabled() && !s.ownsTodo(c, id) {
		return
	}

	todo, err := s.store.UpdateTodo(c.Request.Context(), id, changes)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, todo)
}

// handleDeleteTodo removes a todo.
func (s *Server) handleDeleteTodo(c *gin.Context) {
	id := c.Param("id")
	if s.authEnabled() && !s.ownsTodo(c, id) {
		return
	}
	if err := s.store.DeleteTodo(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Todo deleted"})
}

func (s *Server) ownsTodo(c *gin.Context, id string) bool {
	todo, err := s.store.GetTodo(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return false
	}
	_, ok := s.ownedBoard(c, todo.BoardID)
	return ok
}
