package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository persists tasks. Every read and write filters by the owning
// user id in addition to the task id; a task id alone never matches.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*structs.Task, error)
	Create(ctx context.Context, task *structs.Task) (*structs.Task, error)
	FindByIDAndUser(ctx context.Context, id, userID string) (*structs.Task, error)
	Update(ctx context.Context, task *structs.Task) (*structs.Task, error)
	Delete(ctx context.Context, id, userID string) error
}

type taskRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewTaskRepository creates a new task repository backed by the "todos"
// collection.
func NewTaskRepository(db *mongo.Database, logger *logger.Logger) TaskRepository {
	return &taskRepository{
		collection: db.Collection("todos"),
		logger:     logger,
	}
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]*structs.Task, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Error(ctx, "failed to list tasks", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]*structs.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		r.logger.Error(ctx, "failed to decode tasks", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *structs.Task) (*structs.Task, error) {
	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		r.logger.Error(ctx, "failed to create task", "user_id", task.UserID, "error", err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return task, nil
}

// FindByIDAndUser retrieves a task by (id, owner). A malformed id is reported
// as not found, the same as an absent or differently owned task.
func (r *taskRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*structs.Task, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrTaskNotFound
	}

	var task structs.Task
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "user_id": userID}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error(ctx, "failed to find task", "id", id, "error", err)
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// Update persists text and done for a task, filtered by (id, owner), and
// returns the updated document.
func (r *taskRepository) Update(ctx context.Context, task *structs.Task) (*structs.Task, error) {
	update := bson.M{"$set": bson.M{"text": task.Text, "done": task.Done}}

	result := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": task.ID, "user_id": task.UserID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		if errors.Is(result.Err(), mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		r.logger.Error(ctx, "failed to update task", "id", task.ID.Hex(), "error", result.Err())
		return nil, fmt.Errorf("failed to update task: %w", result.Err())
	}

	var updated structs.Task
	if err := result.Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated task: %w", err)
	}
	return &updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrTaskNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "user_id": userID})
	if err != nil {
		r.logger.Error(ctx, "failed to delete task", "id", id, "error", err)
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}
