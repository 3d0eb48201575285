package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type stubTaskService struct {
	createFn func(ctx context.Context, owner string, in ports.CreateTaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, owner string, in ports.ListTasksInput) ([]*domain.Task, error)
	getFn    func(ctx context.Context, owner, id string) (*domain.Task, error)
	updateFn func(ctx context.Context, owner, id string, in ports.UpdateTaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, owner, id string) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, owner string, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, owner, in)
}

func (s *stubTaskService) List(ctx context.Context, owner string, in ports.ListTasksInput) ([]*domain.Task, error) {
	return s.listFn(ctx, owner, in)
}

func (s *stubTaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.getFn(ctx, owner, id)
}

func (s *stubTaskService) Update(ctx context.Context, owner, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, owner, id, in)
}

func (s *stubTaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.deleteFn(ctx, owner, id)
}

func TestTaskHandler_Create(t *testing.T) {
	stub := &stubTaskService{
		createFn: func(_ context.Context, owner string, in ports.CreateTaskInput) (*domain.Task, error) {
			if owner != "u1" || in.Description != "Buy milk" || !in.Completed {
				t.Fatalf("unexpected args %s %+v", owner, in)
			}
			return &domain.Task{ID: "t1", Description: in.Description, Completed: true, Owner: owner}, nil
		},
	}
	handler := NewTaskHandler(stub)
	e := newEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/tasks", `{"description":"Buy milk","completed":true}`), rec)
	authed(c, &domain.User{ID: "u1"}, "tok")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/tasks", `{"completed":true}`), httptest.NewRecorder())
	authed(c, &domain.User{ID: "u1"}, "tok")
	expectHTTPError(t, handler.Create(c), http.StatusBadRequest)
}

func TestTaskHandler_ListParsesQuery(t *testing.T) {
	var got ports.ListTasksInput
	stub := &stubTaskService{
		listFn: func(_ context.Context, _ string, in ports.ListTasksInput) ([]*domain.Task, error) {
			got = in
			return []*domain.Task{}, nil
		},
	}
	handler := NewTaskHandler(stub)
	e := newEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks?completed=false&limit=5&skip=10&sortBy=description:desc", nil), rec)
	authed(c, &domain.User{ID: "u1"}, "tok")

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Completed == nil || *got.Completed || got.Limit != 5 || got.Skip != 10 || got.SortBy != "description" || !got.Descending {
		t.Fatalf("unexpected list input %+v", got)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty json array, got %q", rec.Body.String())
	}

	for _, q := range []string{"completed=yes", "limit=abc", "skip=-2", "sortBy=createdAt:sideways"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks?"+q, nil), httptest.NewRecorder())
		authed(c, &domain.User{ID: "u1"}, "tok")
		expectHTTPError(t, handler.List(c), http.StatusBadRequest)
	}
}

func TestTaskHandler_GetPassesOwnerAndID(t *testing.T) {
	stub := &stubTaskService{
		getFn: func(_ context.Context, owner, id string) (*domain.Task, error) {
			if owner != "u1" || id != "t9" {
				t.Fatalf("unexpected args %s %s", owner, id)
			}
			return nil, domain.ErrTaskNotFound
		},
	}
	handler := NewTaskHandler(stub)
	e := newEcho()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks/t9", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("t9")
	authed(c, &domain.User{ID: "u1"}, "tok")

	if err := handler.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_UpdateRejectsUnknownFields(t *testing.T) {
	stub := &stubTaskService{
		updateFn: func(_ context.Context, _, _ string, in ports.UpdateTaskInput) (*domain.Task, error) {
			if in.Completed == nil || !*in.Completed || in.Description != nil {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Task{ID: "t1", Completed: true}, nil
		},
	}
	handler := NewTaskHandler(stub)
	e := newEcho()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/tasks/t1", `{"completed":true}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("t1")
	authed(c, &domain.User{ID: "u1"}, "tok")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c = e.NewContext(jsonRequest(http.MethodPatch, "/tasks/t1", `{"owner":"u2"}`), httptest.NewRecorder())
	authed(c, &domain.User{ID: "u1"}, "tok")
	expectHTTPError(t, handler.Update(c), http.StatusBadRequest)
}

func TestTaskHandler_RequiresAuthenticatedUser(t *testing.T) {
	handler := NewTaskHandler(&stubTaskService{})
	e := newEcho()

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/tasks/t1", nil), httptest.NewRecorder())
	expectHTTPError(t, handler.Delete(c), http.StatusUnauthorized)
}
