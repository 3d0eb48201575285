package domain

import (
	"errors"
	"time"
)

// ErrTaskNotFound is also returned for tasks owned by someone else.
var ErrTaskNotFound = errors.New("task not found")

// Task is a unit of work that belongs to exactly one user.
type Task struct {
	ID          string    `json:"_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Sortable task fields accepted by list queries.
const (
	TaskSortCreatedAt   = "createdAt"
	TaskSortUpdatedAt   = "updatedAt"
	TaskSortDescription = "description"
	TaskSortCompleted   = "completed"
)

// IsTaskSortField reports whether field can be used to order task listings.
func IsTaskSortField(field string) bool {
	switch field {
	case TaskSortCreatedAt, TaskSortUpdatedAt, TaskSortDescription, TaskSortCompleted:
		return true
	}
	return false
}
