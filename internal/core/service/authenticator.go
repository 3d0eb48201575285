package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type authenticator struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
}

// NewAuthenticator returns an Authenticator that accepts a token only while it
// verifies and is still in its owner's token list.
func NewAuthenticator(users ports.UserRepository, tokens ports.TokenIssuer) ports.Authenticator {
	return &authenticator{users: users, tokens: tokens}
}

func (a *authenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrTokenMissing
	}

	userID, err := a.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if !user.HasToken(token) {
		return nil, domain.ErrTokenRevoked
	}
	return user, nil
}
