package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/handler"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
)

// DefaultCookieName names the session cookie when none is configured
const DefaultCookieName = "portal_session"

// SessionCookie describes the cookie carrying the session id
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("body_size", c.Writer.Size()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP Request", attrs...)
		} else {
			logger.Info("HTTP Request", attrs...)
		}

		for _, e := range c.Errors {
			logger.Error("Request error", slog.String("error", e.Error()))
		}
	}
}

// CORSMiddleware allows the configured browser origins. With no origins,
// or "*", every origin is allowed without credentials.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Requested-With"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// SessionMiddleware loads the session named by the cookie, or starts a new
// one, and refreshes the cookie
func SessionMiddleware(manager *session.Manager, cookie SessionCookie, logger *slog.Logger) gin.HandlerFunc {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}

	return func(c *gin.Context) {
		id, _ := c.Cookie(cookie.Name)
		sess, err := manager.Get(c.Request.Context(), id)
		if err != nil {
			logger.Error("Failed to load session", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Session unavailable. Please try again",
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, sess.ID, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
		handler.SetSession(c, sess)
		c.Next()
	}
}
