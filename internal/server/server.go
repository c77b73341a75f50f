// Package server exposes the TaskVault REST API over gin.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskvault/internal/storage"
	"taskvault/internal/suggest"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	// StaticDir holds the built frontend; empty means API only.
	StaticDir string
	// AllowedOrigins is the CORS allow-list.
	AllowedOrigins []string
	// AuthSecret enables bearer identity binding when non-empty.
	AuthSecret string
	// Remote answers /ai/suggest and augments board suggestions. Nil means
	// the canned fallback is always served.
	Remote suggest.Suggester
	// SuggestTimeout bounds one remote suggestion round.
	SuggestTimeout time.Duration
}

// Server provides HTTP handlers for the TaskVault backend.
type Server struct {
	engine    *gin.Engine
	store     storage.Store
	logger    *slog.Logger
	suggester *suggest.Engine
	remote    suggest.Suggester
	timeout   time.Duration
	secret    []byte
	staticDir string
	now       func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(store storage.Store, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SuggestTimeout <= 0 {
		opts.SuggestTimeout = suggest.DefaultTimeout
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))
	router.Use(corsMiddleware(opts.AllowedOrigins))
	router.Use(tracingMiddleware())

	srv := &Server{
		engine:    router,
		store:     store,
		logger:    logger,
		remote:    opts.Remote,
		timeout:   opts.SuggestTimeout,
		staticDir: opts.StaticDir,
		now:       time.Now,
		suggester: &suggest.Engine{
			Remote:  opts.Remote,
			Timeout: opts.SuggestTimeout,
			Logger:  logger,
		},
	}
	if opts.AuthSecret != "" {
		srv.secret = []byte(opts.AuthSecret)
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	api.Use(s.identityMiddleware())
	{
		boards := api.Group("/boards")
		{
			boards.POST("", s.handleCreateBoard)
			// Listing shares the :id wildcard with the board routes; there
			// it carries the owner email.
			boards.GET(":id", s.handleListBoards)
			boards.PUT(":id", s.handleUpdateBoard)
			boards.DELETE(":id", s.handleDeleteBoard)
			boards.GET(":id/view", s.handleBoardView)
			boards.POST(":id/tasks", s.handleSmartAdd)
			boards.GET(":id/suggestions", s.handleBoardSuggestions)
		}

		todos := api.Group("/todos")
		{
			todos.POST("", s.handleCreateTodo)
			todos.GET(":id", s.handleListTodos)
			todos.PUT(":id", s.handleUpdateTodo)
			todos.DELETE(":id", s.handleDeleteTodo)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.PATCH(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
		}

		api.GET("/settings", s.handleGetSettings)
		api.POST("/settings/update", s.handleUpdateSettings)
		api.POST("/tickets", s.handleCreateTicket)
		api.POST("/ai/suggest", s.handleAISuggest)

		api.GET("/analytics", s.handleAnalytics)
		api.GET("/analytics/report", s.handleReport)
		api.GET("/notifications", s.handleNotifications)
		api.GET("/history", s.handleHistory)
		api.GET("/profile", s.handleProfile)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps storage errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// respondStoreError responds with the status matching a storage error.
func (s *Server) respondStoreError(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// requireQuery reads a mandatory query parameter.
func (s *Server) requireQuery(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		s.respondError(c, http.StatusBadRequest, errors.New(name+" query parameter is required"))
		return "", false
	}
	return v, true
}
