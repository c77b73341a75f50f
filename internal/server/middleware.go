package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const identityKey = "taskvault.identity"

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// Same-origin only.
		cfg.AllowOriginFunc = func(string) bool { return false }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func tracingMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("taskvault/server")
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// Claims is the bearer token payload; Email names the caller.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// identityMiddleware binds the caller's email from an HS256 bearer token.
// It does nothing when no secret is configured.
func (s *Server) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.secret == nil {
			c.Next()
			return
		}
		email, err := s.parseBearer(c.GetHeader("Authorization"))
		if err != nil {
			s.respondError(c, http.StatusUnauthorized, err)
			return
		}
		c.Set(identityKey, email)
		c.Next()
	}
}

func (s *Server) parseBearer(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errors.New("missing bearer token")
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Email == "" {
		return "", errors.New("token carries no email claim")
	}
	return claims.Email, nil
}

// authorizeOwner rejects the request with 403 when an identity is bound and
// differs from owner.
func (s *Server) authorizeOwner(c *gin.Context, owner string) bool {
	identity, ok := c.Get(identityKey)
	if !ok {
		return true
	}
	if !strings.EqualFold(identity.(string), strings.TrimSpace(owner)) {
		s.respondError(c, http.StatusForbidden, errors.New("resource belongs to another user"))
		return false
	}
	return true
}

// authEnabled reports whether ownership checks need stored documents.
func (s *Server) authEnabled() bool {
	return s.secret != nil
}
