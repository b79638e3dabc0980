package usecase

import (
	"context"

	authdomain "taskboard-backend/internal/auth/domain"
	"taskboard-backend/internal/task/domain"
	"taskboard-backend/internal/task/dto"
)

// TaskUsecase defines the interface for task business logic
type TaskUsecase interface {
	// ListTasks returns the tasks visible to identity, newest first
	ListTasks(ctx context.Context, identity authdomain.Identity) ([]*domain.Task, error)

	// GetTask returns one task if identity may see it
	GetTask(ctx context.Context, identity authdomain.Identity, taskID string) (*domain.Task, error)

	// CreateTask creates a task. With a non-empty idempotencyKey a retried
	// request returns the original task and replayed=true.
	CreateTask(ctx context.Context, identity authdomain.Identity, req dto.CreateTaskRequest, idempotencyKey string) (task *domain.Task, replayed bool, err error)

	// UpdateTask applies the fields of req that identity may change
	UpdateTask(ctx context.Context, identity authdomain.Identity, taskID string, req dto.UpdateTaskRequest) (*domain.Task, error)

	// DeleteTask removes a task (admins only)
	DeleteTask(ctx context.Context, identity authdomain.Identity, taskID string) error

	// SetIdempotencyStore enables idempotent creation
	SetIdempotencyStore(store IdempotencyStore)
}

// IdempotencyStore remembers the task created for an idempotency key.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string) (resourceID string, claimed bool, err error)
	Complete(ctx context.Context, scope, key, resourceID string) error
	Release(ctx context.Context, scope, key string) error
}
