// Package fixtures seeds a store with a known set of users and tasks. It is
// used by the seed command and by end-to-end tests.
package fixtures

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Password is the plaintext password of every seeded user.
const Password = "test1234"

// Data is the seeded state. Each user holds exactly one pre-issued token.
type Data struct {
	UserOne      *domain.User
	UserOneToken string
	UserTwo      *domain.User
	UserTwoToken string

	TaskOne   *domain.Task // "First Task", open, owned by UserOne
	TaskTwo   *domain.Task // "Second Task", completed, owned by UserOne
	TaskThree *domain.Task // "Third Task", completed, owned by UserTwo
}

// Setup wipes both stores and inserts the fixture users and tasks.
func Setup(ctx context.Context, users ports.UserRepository, tasks ports.TaskRepository, tokens ports.TokenIssuer) (*Data, error) {
	if err := tasks.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("fixtures: clear tasks: %w", err)
	}
	if err := users.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("fixtures: clear users: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("fixtures: hash password: %w", err)
	}

	var d Data
	if d.UserOne, d.UserOneToken, err = seedUser(ctx, users, tokens, "Test User", "test@test.com", string(hash)); err != nil {
		return nil, err
	}
	if d.UserTwo, d.UserTwoToken, err = seedUser(ctx, users, tokens, "Another Test User", "test2@test2.com", string(hash)); err != nil {
		return nil, err
	}

	base := time.Now().UTC()
	seeds := []struct {
		dst         **domain.Task
		description string
		completed   bool
		owner       string
	}{
		{&d.TaskOne, "First Task", false, d.UserOne.ID},
		{&d.TaskTwo, "Second Task", true, d.UserOne.ID},
		{&d.TaskThree, "Third Task", true, d.UserTwo.ID},
	}
	for i, s := range seeds {
		at := base.Add(time.Duration(i) * time.Millisecond)
		task, err := tasks.Create(ctx, &domain.Task{
			ID:          primitive.NewObjectID().Hex(),
			Description: s.description,
			Completed:   s.completed,
			Owner:       s.owner,
			CreatedAt:   at,
			UpdatedAt:   at,
		})
		if err != nil {
			return nil, fmt.Errorf("fixtures: create task %q: %w", s.description, err)
		}
		*s.dst = task
	}

	return &d, nil
}

func seedUser(ctx context.Context, users ports.UserRepository, tokens ports.TokenIssuer, name, email, hash string) (*domain.User, string, error) {
	id := primitive.NewObjectID().Hex()
	token, err := tokens.Issue(id)
	if err != nil {
		return nil, "", fmt.Errorf("fixtures: issue token for %s: %w", email, err)
	}

	now := time.Now().UTC()
	user, err := users.Create(ctx, &domain.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Tokens:       []string{token},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, "", fmt.Errorf("fixtures: create user %s: %w", email, err)
	}
	return user, token, nil
}
