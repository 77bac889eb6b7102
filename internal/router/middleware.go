package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Daviipontes/Dev-Web/pkg/global"
)

const (
	SessionHeader = "X-Session-ID"
	sessionName   = "musicall-session"

	ctxSessionID = "session_id"
	ctxUserEmail = "user_email"
)

// LoggingMiddleware logs every request once it has been served.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		slog.Info("HTTP Request", attrs...)
	}
}

// SessionMiddleware resolves the cart session and the logged-in user. A
// client may name its cart session with the X-Session-ID header instead of
// the cookie.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := h.Sessions.Get(c.Request, sessionName)
		if err != nil {
			slog.Warn("Discarding unreadable session cookie", "error", err)
		}

		sid, _ := session.Values[ctxSessionID].(string)
		if sid == "" {
			sid = uuid.NewString()
			session.Values[ctxSessionID] = sid
			if err := session.Save(c.Request, c.Writer); err != nil {
				slog.Error("Failed to save session", "error", err)
			}
		}
		if header := c.GetHeader(SessionHeader); header != "" {
			sid = header
		}
		c.Header(SessionHeader, sid)

		c.Set(ctxSessionID, sid)
		if email, ok := session.Values[ctxUserEmail].(string); ok && email != "" {
			c.Set(ctxUserEmail, email)
		}
		c.Next()
	}
}

func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse("Login required", nil))
			return
		}
		c.Next()
	}
}

func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.Accounts.Get(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, global.ErrorResponse("Admin access required", nil))
			return
		}
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}
