package repository

import (
	"context"
	"errors"
	"time"

	"taskboard-backend/internal/task/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormTaskRepository implements TaskRepository using GORM. Progress notes live
// in their own table so an append is a plain INSERT.
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

// MigrateGorm creates the task tables.
func MigrateGorm(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Task{}, &domain.ProgressNote{})
}

func (r *gormTaskRepository) withNotes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("ProgressNotes", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.ProgressNotes == nil {
		task.ProgressNotes = []domain.ProgressNote{}
	}
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.withNotes(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	normalizeNotes(&task)
	return &task, nil
}

func (r *gormTaskRepository) Find(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	query := r.withNotes(ctx).Model(&domain.Task{})
	if !filter.MatchesAll() {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	for _, t := range tasks {
		normalizeNotes(t)
	}
	return tasks, nil
}

func (r *gormTaskRepository) Apply(ctx context.Context, id string, m *domain.Mutation) (*domain.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Task{}).Where("id = ?", id).Updates(columnUpdates(m))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if m.AppendNote != nil {
			note := domain.ProgressNote{TaskID: id, Text: m.AppendNote.Text, CreatedAt: m.AppendNote.CreatedAt}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *gormTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&domain.ProgressNote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// columnUpdates maps a mutation onto the task table's columns. updated_at is
// always present so the statement also tells us whether the row exists.
func columnUpdates(m *domain.Mutation) map[string]interface{} {
	updates := map[string]interface{}{
		"updated_at": m.UpdatedAt,
	}
	if m.Title != nil {
		updates["title"] = *m.Title
	}
	if m.Description != nil {
		updates["description"] = *m.Description
	}
	if m.Status != nil {
		updates["status"] = *m.Status
	}
	if m.Priority != nil {
		updates["priority"] = *m.Priority
	}
	if m.Assignment != nil {
		updates["assigned_to"] = m.Assignment.AssignedTo
		updates["is_self_task"] = m.Assignment.IsSelfTask
	}
	if m.DueDateSet {
		updates["due_date"] = m.DueDate
	}
	return updates
}

func normalizeNotes(t *domain.Task) {
	if t.ProgressNotes == nil {
		t.ProgressNotes = []domain.ProgressNote{}
	}
}
