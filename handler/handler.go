package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/middleware"
	"github.com/ncobase/todo-api/service"
)

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth *AuthHandler
	Task *TaskHandler

	svc    *service.Service
	logger *logger.Logger
}

// New creates a new handler instance with all sub-handlers initialized.
func New(svc *service.Service, logger *logger.Logger, domain string) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc, logger, domain),
		Task:   NewTaskHandler(svc.Task, logger),
		svc:    svc,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes. Paths and verbs are fixed for
// compatibility with the existing frontend.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/session", h.Auth.CheckSession)
	r.GET("/sessions", h.Auth.ListSessions)
	r.POST("/auto-login", h.Auth.AutoLogin)

	tasks := r.Group("/tasks", middleware.AuthRequired(h.svc.Session, h.logger))
	{
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.PUT("/:task_id", h.Task.Update)
		tasks.DELETE("/:task_id", h.Task.Delete)
	}
}
