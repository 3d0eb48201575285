package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
)

type userFixture struct {
	svc    *UserService
	users  *memory.UserRepository
	tasks  *memory.TaskRepository
	issuer *stubIssuer
	events *recordingPublisher
}

func newUserFixture(opts ...UserOption) *userFixture {
	f := &userFixture{
		users:  memory.NewUserRepository(),
		tasks:  memory.NewTaskRepository(),
		issuer: &stubIssuer{},
		events: &recordingPublisher{},
	}
	opts = append([]UserOption{WithBcryptCost(bcrypt.MinCost), WithSessionEvents(f.events)}, opts...)
	f.svc = NewUserService(f.users, f.tasks, f.issuer, zerolog.Nop(), opts...)
	return f
}

func (f *userFixture) signup(t *testing.T, email string) (*domain.User, string) {
	t.Helper()
	u, tok, err := f.svc.Signup(context.Background(), ports.SignupInput{
		Name:     "Test User",
		Email:    email,
		Password: "red12345!",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return u, tok
}

// ---------------------------------------------------------------------------
// Signup
// ---------------------------------------------------------------------------

func TestSignup_StoresHashAndSingleToken(t *testing.T) {
	f := newUserFixture()
	u, tok := f.signup(t, "  Bob@Example.com ")

	stored, err := f.users.FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Email != "bob@example.com" {
		t.Errorf("email not normalized: %q", stored.Email)
	}
	if stored.PasswordHash == "red12345!" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("red12345!")) != nil {
		t.Fatal("stored hash does not match password")
	}
	if len(stored.Tokens) != 1 || stored.Tokens[0] != tok {
		t.Fatalf("expected token list [%s], got %v", tok, stored.Tokens)
	}
	if len(f.events.events) != 1 || f.events.events[0].Kind != domain.SessionSignup {
		t.Fatalf("expected signup event, got %v", f.events.kinds())
	}
}

func TestSignup_RejectsInvalidInput(t *testing.T) {
	f := newUserFixture()
	cases := []ports.SignupInput{
		{Name: "", Email: "a@example.com", Password: "red12345!"},
		{Name: "A", Email: "  ", Password: "red12345!"},
		{Name: "A", Email: "a@example.com", Password: "short"},
		{Name: "A", Email: "a@example.com", Password: "MyPassword123"},
	}
	for _, in := range cases {
		_, _, err := f.svc.Signup(context.Background(), in)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Signup(%+v): expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newUserFixture()
	f.signup(t, "bob@example.com")

	_, _, err := f.svc.Signup(context.Background(), ports.SignupInput{
		Name: "Bob again", Email: "BOB@example.com", Password: "red12345!",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignup_RollsBackWhenTokenFails(t *testing.T) {
	f := newUserFixture()
	f.issuer.issueErr = errors.New("signing failed")

	_, _, err := f.svc.Signup(context.Background(), ports.SignupInput{
		Name: "Bob", Email: "bob@example.com", Password: "red12345!",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := f.users.FindByEmail(context.Background(), "bob@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user to be rolled back, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_AppendsDistinctToken(t *testing.T) {
	f := newUserFixture()
	u, first := f.signup(t, "bob@example.com")

	_, second, err := f.svc.Login(context.Background(), "BOB@example.com", "red12345!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if second == first {
		t.Fatal("login must issue a new token")
	}

	stored, _ := f.users.FindByID(context.Background(), u.ID)
	if len(stored.Tokens) != 2 || stored.Tokens[0] != first || stored.Tokens[1] != second {
		t.Fatalf("unexpected token list %v", stored.Tokens)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	f := newUserFixture(WithLoginLimiter(limiter))
	u, _ := f.signup(t, "bob@example.com")

	for _, tc := range []struct{ email, password string }{
		{"nobody@example.com", "red12345!"},
		{"bob@example.com", "wrong-pass"},
		{"", ""},
	} {
		_, _, err := f.svc.Login(context.Background(), tc.email, tc.password)
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("Login(%q): expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}

	stored, _ := f.users.FindByID(context.Background(), u.ID)
	if len(stored.Tokens) != 1 {
		t.Fatalf("failed logins must not add tokens, got %d", len(stored.Tokens))
	}
	if len(limiter.failures) != 2 {
		t.Fatalf("expected 2 recorded failures, got %v", limiter.failures)
	}
}

func TestLogin_Throttled(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	f := newUserFixture(WithLoginLimiter(limiter))
	f.signup(t, "bob@example.com")

	_, _, err := f.svc.Login(context.Background(), "bob@example.com", "red12345!")
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestLogin_LimiterErrorDoesNotBlock(t *testing.T) {
	limiter := &stubLimiter{allowErr: errors.New("redis down")}
	f := newUserFixture(WithLoginLimiter(limiter))
	f.signup(t, "bob@example.com")

	if _, _, err := f.svc.Login(context.Background(), "bob@example.com", "red12345!"); err != nil {
		t.Fatalf("expected login to proceed, got %v", err)
	}
	if len(limiter.resets) != 1 {
		t.Fatalf("expected counter reset after success, got %v", limiter.resets)
	}
}

// ---------------------------------------------------------------------------
// Profile and sessions
// ---------------------------------------------------------------------------

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture()
	u, _ := f.signup(t, "bob@example.com")
	f.signup(t, "taken@example.com")

	name := "  Robert "
	updated, err := f.svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Robert" {
		t.Errorf("expected trimmed name, got %q", updated.Name)
	}

	taken := "taken@example.com"
	if _, err := f.svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Email: &taken}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := f.svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty update, got %v", err)
	}

	pw := "newsecret99"
	if _, err := f.svc.UpdateProfile(context.Background(), u.ID, ports.UpdateProfileInput{Password: &pw}); err != nil {
		t.Fatalf("password update: %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "bob@example.com", pw); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestLogout_RevokesOnlyThatToken(t *testing.T) {
	f := newUserFixture()
	u, first := f.signup(t, "bob@example.com")
	_, second, _ := f.svc.Login(context.Background(), "bob@example.com", "red12345!")

	if err := f.svc.Logout(context.Background(), u.ID, first); err != nil {
		t.Fatalf("logout: %v", err)
	}
	stored, _ := f.users.FindByID(context.Background(), u.ID)
	if stored.HasToken(first) || !stored.HasToken(second) {
		t.Fatalf("unexpected token list after logout: %v", stored.Tokens)
	}

	if err := f.svc.Logout(context.Background(), u.ID, first); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on second logout, got %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	f := newUserFixture()
	u, _ := f.signup(t, "bob@example.com")
	_, _, _ = f.svc.Login(context.Background(), "bob@example.com", "red12345!")

	if err := f.svc.LogoutAll(context.Background(), u.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	stored, _ := f.users.FindByID(context.Background(), u.ID)
	if len(stored.Tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", stored.Tokens)
	}

	want := []domain.SessionEventKind{domain.SessionSignup, domain.SessionLogin, domain.SessionLogoutAll}
	got := f.events.kinds()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

func TestDeleteAccount_RemovesOnlyOwnTasks(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	one, _ := f.signup(t, "one@example.com")
	two, _ := f.signup(t, "two@example.com")

	_, _ = f.tasks.Create(ctx, &domain.Task{Description: "a", Owner: one.ID})
	_, _ = f.tasks.Create(ctx, &domain.Task{Description: "b", Owner: one.ID})
	keep, _ := f.tasks.Create(ctx, &domain.Task{Description: "c", Owner: two.ID})

	deleted, err := f.svc.DeleteAccount(ctx, one.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != one.ID {
		t.Errorf("expected deleted user %s, got %s", one.ID, deleted.ID)
	}
	if _, err := f.users.FindByID(ctx, one.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	left, _ := f.tasks.List(ctx, ports.ListTasksFilter{Owner: one.ID})
	if len(left) != 0 {
		t.Fatalf("expected user one's tasks removed, %d left", len(left))
	}
	if _, err := f.tasks.FindByID(ctx, keep.ID, two.ID); err != nil {
		t.Fatalf("user two's task must remain: %v", err)
	}
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	f := newUserFixture()
	if _, err := f.svc.DeleteAccount(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
