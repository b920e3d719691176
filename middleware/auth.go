// Package middleware provides the session authorization gate.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/cookie"
	"github.com/ncobase/ncore/net/resp"
	"github.com/ncobase/todo-api/service"
)

// AuthRequired rejects requests without an active transport session before
// the protected handler runs. On success the caller's identity is placed in
// the gin context and the session's audit record is refreshed after the
// response, off the request path.
func AuthRequired(sessions *service.SessionService, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := cookie.GetSessionID(c.Request)
		if err != nil || sessionID == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
			c.Abort()
			return
		}

		session, ok := sessions.ValidateSession(c.Request.Context(), sessionID)
		if !ok {
			logger.Debug(c.Request.Context(), "rejected request with invalid session", "path", c.Request.URL.Path)
			resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
			c.Abort()
			return
		}

		c.Set("user_id", session.UserID)
		c.Set("user_email", session.Email)
		c.Set("session_id", session.SessionID)

		c.Next()

		sessions.TouchAsync(c.Request.Context(), session.SessionID)
	}
}

// GetCurrentUserID retrieves the authenticated user id from the context.
func GetCurrentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	return userID.(string), true
}

// GetCurrentUserEmail retrieves the authenticated user email from the context.
func GetCurrentUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get("user_email")
	if !exists {
		return "", false
	}
	return email.(string), true
}
