package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository persists authoritative transport sessions. These
// documents are consulted on every guarded request and removed on logout.
type SessionRepository interface {
	Create(ctx context.Context, session *structs.Session) error
	FindBySessionID(ctx context.Context, sessionID string) (*structs.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewSessionRepository creates a new transport session repository backed by
// the "sessions" collection.
func NewSessionRepository(db *mongo.Database, logger *logger.Logger) SessionRepository {
	return &sessionRepository{
		collection: db.Collection("sessions"),
		logger:     logger,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *structs.Session) error {
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		r.logger.Error(ctx, "failed to create session", "session_id", session.SessionID, "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*structs.Session, error) {
	var session structs.Session
	err := r.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		r.logger.Error(ctx, "failed to find session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		r.logger.Error(ctx, "failed to delete session", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SessionInfoRepository persists the human-readable audit mirror of
// sessions. All writes here are best-effort: callers swallow failures so the
// audit trail never breaks the authentication critical path.
type SessionInfoRepository interface {
	Create(ctx context.Context, info *structs.SessionInfo) error
	Touch(ctx context.Context, sessionID string, now time.Time) error
	Deactivate(ctx context.Context, sessionID string, now time.Time) error
	ListActive(ctx context.Context) ([]*structs.SessionInfo, error)
}

type sessionInfoRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewSessionInfoRepository creates a new session audit repository backed by
// the "session_info" collection.
func NewSessionInfoRepository(db *mongo.Database, logger *logger.Logger) SessionInfoRepository {
	return &sessionInfoRepository{
		collection: db.Collection("session_info"),
		logger:     logger,
	}
}

func (r *sessionInfoRepository) Create(ctx context.Context, info *structs.SessionInfo) error {
	if _, err := r.collection.InsertOne(ctx, info); err != nil {
		return fmt.Errorf("failed to create session info: %w", err)
	}
	return nil
}

// Touch refreshes updated_at on an active audit record.
func (r *sessionInfoRepository) Touch(ctx context.Context, sessionID string, now time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "is_active": true},
		bson.M{"$set": bson.M{"updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to touch session info: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Deactivate flips is_active to false. The record is kept as an audit trail.
func (r *sessionInfoRepository) Deactivate(ctx context.Context, sessionID string, now time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate session info: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListActive returns active audit records, newest created_at first.
func (r *sessionInfoRepository) ListActive(ctx context.Context) ([]*structs.SessionInfo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		r.logger.Error(ctx, "failed to list active sessions", "error", err)
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []*structs.SessionInfo
	if err := cursor.All(ctx, &infos); err != nil {
		r.logger.Error(ctx, "failed to decode session infos", "error", err)
		return nil, fmt.Errorf("failed to decode session infos: %w", err)
	}
	return infos, nil
}
