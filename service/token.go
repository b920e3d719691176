package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data/repository"
	"github.com/ncobase/todo-api/structs"
)

// DefaultTokenDays is the default validity window for remember-me tokens.
const DefaultTokenDays = 30

// tokenBytes is the entropy of a generated token before encoding.
const tokenBytes = 32

// TokenService manages long-lived remember-me tokens. Tokens are opaque
// random strings; possession alone re-authenticates, independent of session
// state.
type TokenService struct {
	tokenRepo repository.TokenRepository
	logger    *logger.Logger
}

// NewTokenService creates a new token service.
func NewTokenService(tokenRepo repository.TokenRepository, logger *logger.Logger) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// generateToken returns a URL-safe random string with tokenBytes of entropy.
func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IssueToken generates and persists a token bound to the user identity.
func (s *TokenService) IssueToken(ctx context.Context, userID, email string, daysValid int) (string, error) {
	if daysValid <= 0 {
		daysValid = DefaultTokenDays
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	doc := &structs.AuthToken{
		Token:     token,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, daysValid),
		IsActive:  true,
	}

	if err := s.tokenRepo.Create(ctx, doc); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "auth token issued", "user_id", userID, "days_valid", daysValid)
	return token, nil
}

// ValidateToken returns the identity bound to a token. Expiry is checked at
// validation time regardless of the stored is_active flag: an expired token
// is deactivated as a side effect and reported as a miss. Unknown, revoked,
// and expired tokens are indistinguishable to the caller.
func (s *TokenService) ValidateToken(ctx context.Context, token string) (*structs.TokenIdentity, bool) {
	doc, err := s.tokenRepo.FindActive(ctx, token)
	if err != nil {
		return nil, false
	}

	now := time.Now()
	if now.After(doc.ExpiresAt) {
		if err := s.tokenRepo.Deactivate(ctx, doc.ID, now); err != nil {
			s.logger.Warn(ctx, "failed to deactivate expired token", "user_id", doc.UserID, "error", err)
		}
		return nil, false
	}

	if err := s.tokenRepo.MarkUsed(ctx, doc.ID, now); err != nil {
		s.logger.Warn(ctx, "failed to stamp token usage", "user_id", doc.UserID, "error", err)
	}

	return &structs.TokenIdentity{UserID: doc.UserID, Email: doc.Email}, true
}

// RevokeToken deactivates a token and records the revocation time. Returns
// whether a matching document was modified; an unknown token is a no-match,
// not an error.
func (s *TokenService) RevokeToken(ctx context.Context, token string) (bool, error) {
	revoked, err := s.tokenRepo.Revoke(ctx, token, time.Now())
	if err != nil {
		return false, err
	}
	if revoked {
		s.logger.Info(ctx, "auth token revoked")
	}
	return revoked, nil
}

// RevokeAllForUser bulk-deactivates every active token owned by the user.
// Policy hook for the surrounding application, e.g. on password change.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.tokenRepo.RevokeAllForUser(ctx, userID, time.Now())
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "auth tokens revoked for user", "user_id", userID, "count", count)
	return count, nil
}
