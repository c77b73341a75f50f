package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const bannerText = "TaskVault API is Active"

// mountStatic serves the built frontend with a single-page fallback to
// index.html. Without a frontend the root answers with a plain banner.
func (s *Server) mountStatic() {
	indexPath, hasIndex := s.frontendIndex()
	if hasIndex {
		s.engine.StaticFile("/", indexPath)
		s.mountAssets()
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.String(http.StatusOK, bannerText)
		})
	}

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		if !hasIndex || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.String(http.StatusNotFound, "not found")
			return
		}
		c.File(indexPath)
	})
}

// mountAssets registers every top-level entry of the static directory:
// directories through StaticFS, plain files through StaticFile. Misses
// inside a directory fall through to NoRoute.
func (s *Server) mountAssets() {
	entries, err := os.ReadDir(s.staticDir)
	if err != nil {
		s.logger.Warn("read static directory", "path", s.staticDir, "error", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if name == "api" || name == "index.html" || strings.ContainsAny(name, ":*") {
			continue
		}
		full := filepath.Join(s.staticDir, name)
		if e.IsDir() {
			s.engine.StaticFS("/"+name, gin.Dir(full, false))
			continue
		}
		s.engine.StaticFile("/"+name, full)
	}
}

// frontendIndex reports the index.html of the configured frontend, if any.
func (s *Server) frontendIndex() (string, bool) {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return "", false
	}
	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", s.staticDir, "error", err)
		return "", false
	}
	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		return "", false
	}
	return indexPath, true
}
