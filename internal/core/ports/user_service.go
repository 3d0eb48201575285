package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// SignupInput is the DTO passed from the transport layer to UserService.Signup.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfileInput carries the optional profile changes.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// UserService defines account and session use cases.
type UserService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	DeleteAccount(ctx context.Context, userID string) (*domain.User, error)
}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
