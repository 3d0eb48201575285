package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// SessionEventRepository persists the session audit trail.
type SessionEventRepository interface {
	Insert(ctx context.Context, event *domain.SessionEvent) error
}

// SessionEventPublisher hands an event off for asynchronous persistence. It must not block.
type SessionEventPublisher interface {
	Publish(event domain.SessionEvent)
}
