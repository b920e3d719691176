// Package data manages the MongoDB connection and aggregates the
// repositories. The connection is constructed once at startup and injected
// into every component; its lifecycle is owned by the process entry point.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	client *mongo.Client
	db     *mongo.Database

	UserRepo        repository.UserRepository
	SessionRepo     repository.SessionRepository
	SessionInfoRepo repository.SessionInfoRepository
	TokenRepo       repository.TokenRepository
	TaskRepo        repository.TaskRepository
}

// New creates a new Data instance with a MongoDB connection.
func New(mongoURI string, dbName string, logger *logger.Logger) (*Data, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "Connected to MongoDB successfully", "uri", mongoURI, "database", dbName)

	db := client.Database(dbName)

	return &Data{
		client:          client,
		db:              db,
		UserRepo:        repository.NewUserRepository(db, logger),
		SessionRepo:     repository.NewSessionRepository(db, logger),
		SessionInfoRepo: repository.NewSessionInfoRepository(db, logger),
		TokenRepo:       repository.NewTokenRepository(db, logger),
		TaskRepo:        repository.NewTaskRepository(db, logger),
	}, nil
}

// Close closes the MongoDB connection.
func (d *Data) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// DB returns the MongoDB database instance.
func (d *Data) DB() *mongo.Database {
	return d.db
}
