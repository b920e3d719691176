package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TokenRepository persists remember-me auth tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *structs.AuthToken) error
	FindActive(ctx context.Context, token string) (*structs.AuthToken, error)
	MarkUsed(ctx context.Context, id primitive.ObjectID, now time.Time) error
	Deactivate(ctx context.Context, id primitive.ObjectID, now time.Time) error
	Revoke(ctx context.Context, token string, now time.Time) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string, now time.Time) (int64, error)
}

type tokenRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewTokenRepository creates a new token repository backed by the
// "auth_tokens" collection.
func NewTokenRepository(db *mongo.Database, logger *logger.Logger) TokenRepository {
	return &tokenRepository{
		collection: db.Collection("auth_tokens"),
		logger:     logger,
	}
}

func (r *tokenRepository) Create(ctx context.Context, token *structs.AuthToken) error {
	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		r.logger.Error(ctx, "failed to create auth token", "user_id", token.UserID, "error", err)
		return fmt.Errorf("failed to create auth token: %w", err)
	}
	return nil
}

// FindActive looks up a token by exact match where is_active is still true.
// Revoked tokens and unknown tokens are indistinguishable to the caller.
func (r *tokenRepository) FindActive(ctx context.Context, token string) (*structs.AuthToken, error) {
	var doc structs.AuthToken
	err := r.collection.FindOne(ctx, bson.M{"token": token, "is_active": true}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTokenNotFound
		}
		r.logger.Error(ctx, "failed to find auth token", "error", err)
		return nil, fmt.Errorf("failed to find auth token: %w", err)
	}
	return &doc, nil
}

// MarkUsed stamps last_used_at on a validated token.
func (r *tokenRepository) MarkUsed(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_used_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark token used: %w", err)
	}
	return nil
}

// Deactivate flips is_active to false without recording a revocation time.
// Used for lazy expiry at validation time.
func (r *tokenRepository) Deactivate(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate token: %w", err)
	}
	return nil
}

// Revoke deactivates a token and stamps revoked_at. Returns whether a
// matching document was modified.
func (r *tokenRepository) Revoke(ctx context.Context, token string, now time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"is_active": false, "revoked_at": now}},
	)
	if err != nil {
		r.logger.Error(ctx, "failed to revoke token", "error", err)
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// RevokeAllForUser bulk-deactivates every active token owned by the user.
func (r *tokenRepository) RevokeAllForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "revoked_at": now}},
	)
	if err != nil {
		r.logger.Error(ctx, "failed to revoke user tokens", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return result.ModifiedCount, nil
}
