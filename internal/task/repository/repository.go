package repository

import (
	"context"

	"taskboard-backend/internal/task/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create assigns an ID and timestamps and stores the task
	Create(ctx context.Context, task *domain.Task) error

	// FindByID returns nil, nil when the task does not exist
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// Find returns the tasks matching filter, newest first
	Find(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	// Apply atomically sets the mutation's fields and appends its note, then
	// returns the stored result. Returns nil, nil when the task does not exist.
	Apply(ctx context.Context, id string, m *domain.Mutation) (*domain.Task, error)

	// Delete removes the task and its notes. Reports false when nothing matched.
	Delete(ctx context.Context, id string) (bool, error)
}
