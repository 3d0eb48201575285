package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// ListTasksFilter carries the query for listing one owner's tasks.
type ListTasksFilter struct {
	Owner      string // always set by the service layer
	Completed  *bool  // optional
	SortBy     string // one of the domain.TaskSort* fields
	Descending bool
	Skip       int
	Limit      int // 0 = no limit
}

// TaskUpdate carries the task fields to change; nil fields are left as-is.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskRepository persists tasks. Every lookup by id is scoped by owner and
// reports domain.ErrTaskNotFound for foreign tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id, owner string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	Update(ctx context.Context, id, owner string, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, id, owner string) (*domain.Task, error)
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
	DeleteAll(ctx context.Context) error
}
