package service

import (
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data"
)

// Service aggregates all business logic services.
type Service struct {
	Auth    *AuthService
	Session *SessionService
	Token   *TokenService
	Task    *TaskService
}

// New creates a new service instance with all sub-services initialized.
func New(d *data.Data, logger *logger.Logger) *Service {
	return &Service{
		Auth:    NewAuthService(d.UserRepo, logger),
		Session: NewSessionService(d.SessionRepo, d.SessionInfoRepo, logger),
		Token:   NewTokenService(d.TokenRepo, logger),
		Task:    NewTaskService(d.TaskRepo, logger),
	}
}
