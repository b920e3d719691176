// Package handler exposes the HTTP endpoints for authentication, session
// visibility, and tasks.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/ecode"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/cookie"
	"github.com/ncobase/ncore/net/resp"
	"github.com/ncobase/todo-api/service"
)

// AuthHandler handles registration, login, logout, and session endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	tokens   *service.TokenService
	logger   *logger.Logger
	domain   string
}

// NewAuthHandler creates a new auth handler. The domain scopes the session
// cookie.
func NewAuthHandler(svc *service.Service, logger *logger.Logger, domain string) *AuthHandler {
	return &AuthHandler{
		auth:     svc.Auth,
		sessions: svc.Session,
		tokens:   svc.Token,
		logger:   logger,
		domain:   domain,
	}
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest("email and password are required"))
		return
	}

	userID, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			resp.Fail(c.Writer, &resp.Exception{
				Status:  http.StatusConflict,
				Code:    ecode.Conflict,
				Message: "user already exists",
			})
			return
		}
		h.logger.Error(c.Request.Context(), "failed to register user", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to register user"))
		return
	}

	resp.WithStatusCode(c.Writer, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user_id": userID,
	})
}

// Login authenticates a user, establishes a session, and optionally issues a
// remember-me token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"remember_me"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest("email and password are required"))
		return
	}

	userID, ok, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to authenticate user", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to authenticate user"))
		return
	}
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("invalid email or password"))
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), userID, req.Email)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to create session", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to create session"))
		return
	}

	if err := cookie.SetSessionID(c.Writer, session.SessionID, h.domain); err != nil {
		h.logger.Error(c.Request.Context(), "failed to set session cookie", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to create session"))
		return
	}

	result := map[string]any{
		"message": "login successful",
		"user_id": userID,
	}

	if req.RememberMe {
		token, err := h.tokens.IssueToken(c.Request.Context(), userID, req.Email, service.DefaultTokenDays)
		if err != nil {
			h.logger.Error(c.Request.Context(), "failed to issue auth token", "error", err)
			resp.Fail(c.Writer, resp.InternalServer("failed to issue auth token"))
			return
		}
		result["token"] = token
	}

	resp.Success(c.Writer, result)
}

// Logout ends the session and revokes the remember-me token when one is
// supplied in the body.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	// The body is optional; a missing or empty body is not an error.
	_ = c.ShouldBindJSON(&req)

	if req.Token != "" {
		if _, err := h.tokens.RevokeToken(c.Request.Context(), req.Token); err != nil {
			h.logger.Warn(c.Request.Context(), "failed to revoke token on logout", "error", err)
		}
	}

	sessionID, err := cookie.GetSessionID(c.Request)
	if err != nil || sessionID == "" {
		resp.Fail(c.Writer, resp.BadRequest("no active session"))
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, service.ErrNoSession) {
			resp.Fail(c.Writer, resp.BadRequest("no active session"))
			return
		}
		h.logger.Error(c.Request.Context(), "failed to close session", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to close session"))
		return
	}

	cookie.ClearSessionID(c.Writer)
	resp.Success(c.Writer, map[string]any{"message": "logout successful"})
}

// CheckSession reports whether the caller holds an active session. Used by
// the frontend to probe authentication state, so the 401 body keeps the
// literal logged_in flag instead of the standard failure envelope.
func (h *AuthHandler) CheckSession(c *gin.Context) {
	sessionID, err := cookie.GetSessionID(c.Request)
	if err == nil && sessionID != "" {
		if session, ok := h.sessions.ValidateSession(c.Request.Context(), sessionID); ok {
			h.sessions.TouchAsync(c.Request.Context(), session.SessionID)
			c.JSON(http.StatusOK, gin.H{
				"logged_in": true,
				"user": gin.H{
					"email": session.Email,
					"_id":   session.UserID,
				},
			})
			return
		}
	}

	c.JSON(http.StatusUnauthorized, gin.H{"logged_in": false})
}

// ListSessions returns all active session audit records. Operational
// visibility only; this is not an access control surface.
func (h *AuthHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessions.ListActiveSessions(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to list sessions", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to list sessions"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"total":    len(sessions),
		"sessions": sessions,
	})
}

// AutoLogin reconstitutes a session from a remember-me token without a
// password.
func (h *AuthHandler) AutoLogin(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest("token is required"))
		return
	}

	identity, ok := h.tokens.ValidateToken(c.Request.Context(), req.Token)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("invalid or expired token"))
		return
	}

	session, err := h.sessions.CreateSession(c.Request.Context(), identity.UserID, identity.Email)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to create session", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to create session"))
		return
	}

	if err := cookie.SetSessionID(c.Writer, session.SessionID, h.domain); err != nil {
		h.logger.Error(c.Request.Context(), "failed to set session cookie", "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to create session"))
		return
	}

	resp.Success(c.Writer, map[string]any{
		"message": "auto-login successful",
		"user_id": identity.UserID,
		"user": map[string]any{
			"email": identity.Email,
			"_id":   identity.UserID,
		},
	})
}
