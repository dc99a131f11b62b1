package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

// MemoryRepository keeps tasks in a map. Records do not survive a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]*domain.Task)}
}

func (r *MemoryRepository) Save(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, errors.NotFound(errors.CodeTaskNotFound, "store.find", fmt.Errorf("task %q", id))
	}
	return task.Clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepository) Stale(_ context.Context, before time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, task := range r.tasks {
		if task.UpdatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
