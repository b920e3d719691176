// Package repository provides MongoDB-backed persistence for users,
// sessions, remember-me tokens, and tasks.
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors shared by the repositories. Services translate these into
// response-level failures; they never carry store internals.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *structs.User) (*structs.User, error)
	FindByEmail(ctx context.Context, email string) (*structs.User, error)
}

type userRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewUserRepository creates a new user repository backed by the "users"
// collection, with a unique index on email so concurrent registrations of the
// same address cannot both succeed.
func NewUserRepository(db *mongo.Database, logger *logger.Logger) UserRepository {
	collection := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn(ctx, "failed to create unique index on email", "error", err)
	}

	return &userRepository{
		collection: collection,
		logger:     logger,
	}
}

// Create inserts a new user. Email collisions surface as ErrDuplicateEmail.
func (r *userRepository) Create(ctx context.Context, user *structs.User) (*structs.User, error) {
	user.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		r.logger.Error(ctx, "failed to create user", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	return user, nil
}

// FindByEmail retrieves a user by exact email match.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*structs.User, error) {
	var user structs.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error(ctx, "failed to find user by email", "error", err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
