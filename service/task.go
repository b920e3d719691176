package service

import (
	"context"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data/repository"
	"github.com/ncobase/todo-api/structs"
)

// ErrTaskNotFound covers absent tasks, mismatched owners, and malformed task
// ids alike, so callers cannot probe for the existence of other users' tasks.
var ErrTaskNotFound = repository.ErrTaskNotFound

// TaskService provides user-scoped task operations. The caller's user id
// comes from the verified session, never from the request payload, and is
// threaded into every storage filter.
type TaskService struct {
	taskRepo repository.TaskRepository
	logger   *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo repository.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// List returns all tasks owned by the user.
func (s *TaskService) List(ctx context.Context, userID string) ([]*structs.Task, error) {
	return s.taskRepo.ListByUser(ctx, userID)
}

// Create inserts a new task for the user, not yet done.
func (s *TaskService) Create(ctx context.Context, text, userID string) (*structs.Task, error) {
	task := &structs.Task{
		Text:   text,
		Done:   false,
		UserID: userID,
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "task created", "task_id", created.ID.Hex(), "user_id", userID)
	return created, nil
}

// Update applies the supplied fields to a task owned by the user. Fields
// left nil retain their stored value. The task is fetched by (id, owner)
// first; a miss for any reason reports ErrTaskNotFound.
func (s *TaskService) Update(ctx context.Context, taskID, userID string, text *string, done *bool) (*structs.Task, error) {
	task, err := s.taskRepo.FindByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if text != nil {
		task.Text = *text
	}
	if done != nil {
		task.Done = *done
	}

	return s.taskRepo.Update(ctx, task)
}

// Delete removes a task owned by the user.
func (s *TaskService) Delete(ctx context.Context, taskID, userID string) error {
	if err := s.taskRepo.Delete(ctx, taskID, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "task deleted", "task_id", taskID, "user_id", userID)
	return nil
}
