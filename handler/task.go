package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/resp"
	"github.com/ncobase/todo-api/middleware"
	"github.com/ncobase/todo-api/service"
)

// TaskHandler handles task CRUD endpoints. All routes sit behind the
// authorization gate; the owner id always comes from the verified session.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks *service.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// List returns the caller's tasks.
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to list tasks", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to list tasks"))
		return
	}

	resp.Success(c.Writer, tasks)
}

// Create adds a task for the caller.
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest("text is required"))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), req.Text, userID)
	if err != nil {
		h.logger.Error(c.Request.Context(), "failed to create task", "user_id", userID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to create task"))
		return
	}

	resp.WithStatusCode(c.Writer, http.StatusCreated, task)
}

// Update applies a partial update to one of the caller's tasks. Omitted
// fields keep their stored values.
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
		return
	}

	taskID := c.Param("task_id")

	var req struct {
		Text *string `json:"text"`
		Done *bool   `json:"done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.BadRequest("invalid request body"))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), taskID, userID, req.Text, req.Done)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			resp.Fail(c.Writer, resp.NotFound("task not found"))
			return
		}
		h.logger.Error(c.Request.Context(), "failed to update task", "task_id", taskID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to update task"))
		return
	}

	resp.Success(c.Writer, task)
}

// Delete removes one of the caller's tasks.
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		resp.Fail(c.Writer, resp.UnAuthorized("authentication required"))
		return
	}

	taskID := c.Param("task_id")

	if err := h.tasks.Delete(c.Request.Context(), taskID, userID); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			resp.Fail(c.Writer, resp.NotFound("task not found"))
			return
		}
		h.logger.Error(c.Request.Context(), "failed to delete task", "task_id", taskID, "error", err)
		resp.Fail(c.Writer, resp.InternalServer("failed to delete task"))
		return
	}

	resp.Success(c.Writer, map[string]any{"message": "task deleted successfully"})
}
