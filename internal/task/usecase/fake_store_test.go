package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskboard-backend/internal/task/domain"
)

// fakeTaskRepository is an in-memory TaskRepository. Apply holds the lock for
// the whole mutation, mirroring the atomic single-document update of the real
// stores.
type fakeTaskRepository struct {
	mu     sync.Mutex
	tasks  map[string]*domain.Task
	seq    int
	clock  time.Time
	err    error
	finds  int
	writes int
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{
		tasks: make(map[string]*domain.Task),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeTaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.seq++
	r.writes++
	task.ID = fmt.Sprintf("task-%d", r.seq)
	r.clock = r.clock.Add(time.Minute)
	task.CreatedAt = r.clock
	task.UpdatedAt = r.clock
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *fakeTaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (r *fakeTaskRepository) Find(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	domain.SortNewestFirst(out)
	return out, nil
}

func (r *fakeTaskRepository) Apply(_ context.Context, id string, m *domain.Mutation) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	r.writes++
	next := m.ApplyTo(t)
	r.tasks[id] = next
	return next.Clone(), nil
}

func (r *fakeTaskRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	r.writes++
	delete(r.tasks, id)
	return true, nil
}

func (r *fakeTaskRepository) stats() (finds, writes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finds, r.writes
}
