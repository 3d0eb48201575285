package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// ListTasksInput carries the list endpoint's query parameters.
type ListTasksInput struct {
	Completed  *bool
	SortBy     string
	Descending bool
	Skip       int
	Limit      int
}

// UpdateTaskInput carries the optional task changes.
type UpdateTaskInput struct {
	Description *string
	Completed   *bool
}

// TaskService defines owner-scoped task use cases.
type TaskService interface {
	Create(ctx context.Context, owner string, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, owner string, input ListTasksInput) ([]*domain.Task, error)
	Get(ctx context.Context, owner, id string) (*domain.Task, error)
	Update(ctx context.Context, owner, id string, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, owner, id string) (*domain.Task, error)
}
