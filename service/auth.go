// Package service contains the business logic: credential verification,
// session lifecycle, remember-me tokens, and user-scoped task operations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data/repository"
	"github.com/ncobase/todo-api/structs"
	"golang.org/x/crypto/bcrypt"
)

// ErrDuplicateEmail is returned by Register when the email is already taken.
var ErrDuplicateEmail = repository.ErrDuplicateEmail

// AuthService handles registration and credential verification.
type AuthService struct {
	userRepo repository.UserRepository
	logger   *logger.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a new user with a bcrypt-hashed password. The unique email
// index backs the duplicate check, so two concurrent registrations of the
// same address cannot both succeed.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return "", ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &structs.User{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID.Hex(), "email", email)
	return user.ID.Hex(), nil
}

// Authenticate verifies credentials and returns the user id on success.
// Unknown email and wrong password both report ok=false with no further
// detail, so callers cannot probe which addresses are registered.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", false, nil
	}

	return user.ID.Hex(), true, nil
}
