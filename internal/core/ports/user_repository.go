package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserUpdate carries the profile fields to change; nil fields are left as-is.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UserRepository is the credential store. Token list changes must be atomic
// single-document operations so concurrent logins and logouts never lose updates.
type UserRepository interface {
	// Create persists user. An empty ID is assigned by the store.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)

	// AddToken appends token to the user's token list.
	AddToken(ctx context.Context, id, token string) error
	// RemoveToken pulls exactly token; domain.ErrTokenRevoked when it is not present.
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
