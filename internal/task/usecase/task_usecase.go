package usecase

import (
	"context"
	"errors"
	"time"

	authdomain "taskboard-backend/internal/auth/domain"
	"taskboard-backend/internal/task/domain"
	"taskboard-backend/internal/task/dto"
	"taskboard-backend/internal/task/policy"
	"taskboard-backend/internal/task/repository"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskboard-backend/task"

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo    repository.TaskRepository
	idempotency IdempotencyStore
	logger      *log.Logger
	now         func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository, logger *log.Logger) TaskUsecase {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &taskUsecase{
		taskRepo: taskRepo,
		logger:   logger,
		now:      time.Now,
	}
}

func (u *taskUsecase) SetIdempotencyStore(store IdempotencyStore) {
	u.idempotency = store
}

func (u *taskUsecase) ListTasks(ctx context.Context, identity authdomain.Identity) (tasks []*domain.Task, err error) {
	ctx, span := startSpan(ctx, "task.list", identity)
	defer func() { endSpan(span, err) }()

	tasks, err = u.taskRepo.Find(ctx, policy.ListFilter(identity))
	if err != nil {
		return nil, &domain.StoreError{Op: "list tasks", Err: err}
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, identity authdomain.Identity, taskID string) (task *domain.Task, err error) {
	ctx, span := startSpan(ctx, "task.get", identity, attribute.String("task.id", taskID))
	defer func() { endSpan(span, err) }()

	task, err = u.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanView(identity, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) CreateTask(ctx context.Context, identity authdomain.Identity, req dto.CreateTaskRequest, idempotencyKey string) (task *domain.Task, replayed bool, err error) {
	ctx, span := startSpan(ctx, "task.create", identity)
	defer func() { endSpan(span, err) }()

	decision, err := policy.Create(identity, req)
	if err != nil {
		return nil, false, err
	}
	if decision.AssigneeOverridden {
		u.logger.WithFields(log.Fields{
			"user_id":   identity.ID,
			"requested": req.AssignedTo,
		}).Debug("[TaskUsecase] member create: assignedTo overridden with own email")
	}

	if idempotencyKey != "" && u.idempotency != nil {
		existingID, claimed, claimErr := u.idempotency.Claim(ctx, identity.ID, idempotencyKey)
		if claimErr != nil {
			return nil, false, &domain.StoreError{Op: "claim idempotency key", Err: claimErr}
		}
		if !claimed {
			if existingID == "" {
				return nil, false, domain.ErrIdempotencyConflict
			}
			task, err = u.findTask(ctx, existingID)
			if err != nil {
				return nil, false, err
			}
			span.SetAttributes(attribute.Bool("task.replayed", true))
			return task, true, nil
		}
		defer func() {
			if err != nil {
				if relErr := u.idempotency.Release(context.WithoutCancel(ctx), identity.ID, idempotencyKey); relErr != nil {
					u.logger.Warnf("[TaskUsecase] release idempotency key %s: %v", idempotencyKey, relErr)
				}
				return
			}
			if compErr := u.idempotency.Complete(context.WithoutCancel(ctx), identity.ID, idempotencyKey, task.ID); compErr != nil {
				u.logger.Warnf("[TaskUsecase] complete idempotency key %s: %v", idempotencyKey, compErr)
			}
		}()
	}

	task = decision.Task
	if err = u.taskRepo.Create(ctx, task); err != nil {
		return nil, false, &domain.StoreError{Op: "create task", Err: err}
	}
	span.SetAttributes(attribute.String("task.id", task.ID))
	u.logger.WithFields(log.Fields{
		"task_id":     task.ID,
		"assigned_to": task.AssignedTo,
		"self_task":   task.IsSelfTask,
	}).Info("[TaskUsecase] task created")
	return task, false, nil
}

func (u *taskUsecase) UpdateTask(ctx context.Context, identity authdomain.Identity, taskID string, req dto.UpdateTaskRequest) (task *domain.Task, err error) {
	ctx, span := startSpan(ctx, "task.update", identity, attribute.String("task.id", taskID))
	defer func() { endSpan(span, err) }()

	current, err := u.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	decision, err := policy.Update(identity, current, req, u.now())
	if err != nil {
		return nil, err
	}
	if len(decision.Ignored) > 0 {
		u.logger.WithFields(log.Fields{
			"task_id": taskID,
			"user_id": identity.ID,
			"fields":  decision.Ignored,
		}).Debug("[TaskUsecase] ignored fields outside role permissions")
	}
	if decision.Mutation.IsEmpty() {
		return current, nil
	}

	task, err = u.taskRepo.Apply(ctx, taskID, decision.Mutation)
	if err != nil {
		return nil, &domain.StoreError{Op: "update task", Err: err}
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	span.SetAttributes(attribute.Bool("task.note_appended", decision.Mutation.AppendNote != nil))
	return task, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, identity authdomain.Identity, taskID string) (err error) {
	ctx, span := startSpan(ctx, "task.delete", identity, attribute.String("task.id", taskID))
	defer func() { endSpan(span, err) }()

	if err := policy.Delete(identity); err != nil {
		return err
	}
	deleted, err := u.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return &domain.StoreError{Op: "delete task", Err: err}
	}
	if !deleted {
		return domain.ErrTaskNotFound
	}
	u.logger.WithField("task_id", taskID).Info("[TaskUsecase] task deleted")
	return nil
}

func (u *taskUsecase) findTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, &domain.StoreError{Op: "find task", Err: err}
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func startSpan(ctx context.Context, name string, identity authdomain.Identity, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("identity.role", string(identity.Role)))
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		var storeErr *domain.StoreError
		if errors.As(err, &storeErr) {
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Error, "rejected")
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
