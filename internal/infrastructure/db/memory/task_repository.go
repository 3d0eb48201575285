package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// TaskRepository implements ports.TaskRepository in memory. Insertion order is
// kept so equal sort keys list deterministically.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	order []string
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *TaskRepository) owned(id, owner string) (*domain.Task, bool) {
	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return nil, false
	}
	return t, true
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneTask(task)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := r.tasks[stored.ID]; !exists {
		r.order = append(r.order, stored.ID)
	}
	r.tasks[stored.ID] = stored
	return cloneTask(stored), nil
}

func (r *TaskRepository) FindByID(_ context.Context, id, owner string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.owned(id, owner)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *TaskRepository) List(_ context.Context, f ports.ListTasksFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Task, 0)
	for _, id := range r.order {
		t, ok := r.tasks[id]
		if !ok || t.Owner != f.Owner {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		matched = append(matched, cloneTask(t))
	}

	sortTasks(matched, f.SortBy, f.Descending)

	if f.Skip > 0 {
		if f.Skip >= len(matched) {
			return []*domain.Task{}, nil
		}
		matched = matched[f.Skip:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func sortTasks(tasks []*domain.Task, field string, desc bool) {
	less := func(a, b *domain.Task) bool {
		switch field {
		case domain.TaskSortUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case domain.TaskSortDescription:
			return strings.Compare(a.Description, b.Description) < 0
		case domain.TaskSortCompleted:
			return !a.Completed && b.Completed
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if desc {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func (r *TaskRepository) Update(_ context.Context, id, owner string, update ports.TaskUpdate) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.owned(id, owner)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Completed != nil {
		t.Completed = *update.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *TaskRepository) Delete(_ context.Context, id, owner string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.owned(id, owner)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	r.remove(id)
	return t, nil
}

func (r *TaskRepository) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tasks {
		if t.Owner == owner {
			r.remove(id)
			n++
		}
	}
	return n, nil
}

func (r *TaskRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = make(map[string]*domain.Task)
	r.order = nil
	return nil
}

// remove must be called with the write lock held.
func (r *TaskRepository) remove(id string) {
	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
