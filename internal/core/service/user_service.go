package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/pkg/metrics"
)

// LoginLimiter abstracts the failed-login counter (Redis).
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, error)  { return true, nil }
func (noopLimiter) RecordFailure(context.Context, string) error { return nil }
func (noopLimiter) Reset(context.Context, string) error         { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(domain.SessionEvent) {}

// UserService implements account and session use cases.
type UserService struct {
	users      ports.UserRepository
	tasks      ports.TaskRepository
	tokens     ports.TokenIssuer
	limiter    LoginLimiter
	events     ports.SessionEventPublisher
	bcryptCost int
	log        zerolog.Logger
}

var _ ports.UserService = (*UserService)(nil)

// UserOption customises a UserService.
type UserOption func(*UserService)

// WithLoginLimiter enables throttling of repeated failed logins.
func WithLoginLimiter(l LoginLimiter) UserOption {
	return func(s *UserService) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithSessionEvents sends session lifecycle events to p.
func WithSessionEvents(p ports.SessionEventPublisher) UserOption {
	return func(s *UserService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost. Out-of-range values are ignored.
func WithBcryptCost(cost int) UserOption {
	return func(s *UserService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func NewUserService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...UserOption,
) *UserService {
	s := &UserService{
		users:      users,
		tasks:      tasks,
		tokens:     tokens,
		limiter:    noopLimiter{},
		events:     noopPublisher{},
		bcryptCost: bcrypt.DefaultCost,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates the account and its first session token.
func (s *UserService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if email == "" {
		return nil, "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePassword(in.Password); err != nil {
		return nil, "", err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Tokens:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", user.ID).Msg("failed to roll back signup")
		}
		return nil, "", err
	}

	metrics.SignupsTotal.Inc()
	s.publish(user.ID, domain.SessionSignup)
	s.log.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, token, nil
}

// Login verifies credentials and opens an additional session.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter check failed, proceeding")
	} else if !allowed {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, "", domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.loginFailed(ctx, email)
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.loginFailed(ctx, email)
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login attempts")
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.publish(user.ID, domain.SessionLogin)
	return user, token, nil
}

// UpdateProfile applies the given profile changes; at least one is required.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	var upd ports.UserUpdate

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
		}
		upd.Name = &name
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
		}
		upd.Email = &email
	}
	if in.Password != nil {
		if err := domain.ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	if upd.Name == nil && upd.Email == nil && upd.PasswordHash == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	return s.users.Update(ctx, userID, upd)
}

// Logout revokes exactly token; the user's other sessions stay valid.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		return err
	}
	s.publish(userID, domain.SessionLogout)
	return nil
}

// LogoutAll revokes every session of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.users.ClearTokens(ctx, userID); err != nil {
		return err
	}
	s.publish(userID, domain.SessionLogoutAll)
	return nil
}

// DeleteAccount removes the user's tasks and then the user, returning the deleted user.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	removed, err := s.tasks.DeleteByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("delete account: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete account: %w", err)
	}

	s.publish(userID, domain.SessionAccountDeleted)
	s.log.Info().Str("user_id", userID).Int64("tasks_removed", removed).Msg("account deleted")
	return user, nil
}

// startSession issues a token and appends it to the stored token list.
func (s *UserService) startSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

func (s *UserService) loginFailed(ctx context.Context, email string) {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *UserService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *UserService) publish(userID string, kind domain.SessionEventKind) {
	s.events.Publish(domain.SessionEvent{UserID: userID, Kind: kind, At: time.Now().UTC()})
}
