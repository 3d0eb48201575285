package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/pkg/metrics"
)

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

var _ ports.TaskService = (*TaskService)(nil)

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, owner string, in ports.CreateTaskInput) (*domain.Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	task, err := s.repo.Create(ctx, &domain.Task{
		Description: description,
		Completed:   in.Completed,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.Inc()
	s.logger.Info().Str("task_id", task.ID).Str("owner", owner).Msg("task created")
	return task, nil
}

// List returns the owner's tasks, sorted by createdAt unless told otherwise.
// Unknown sort fields and negative paging are rejected with ErrInvalidInput.
func (s *TaskService) List(ctx context.Context, owner string, in ports.ListTasksInput) ([]*domain.Task, error) {
	if in.Skip < 0 || in.Limit < 0 {
		return nil, fmt.Errorf("%w: limit and skip must not be negative", domain.ErrInvalidInput)
	}
	sortBy := in.SortBy
	if sortBy == "" {
		sortBy = domain.TaskSortCreatedAt
	}
	if !domain.IsTaskSortField(sortBy) {
		return nil, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidInput, sortBy)
	}

	return s.repo.List(ctx, ports.ListTasksFilter{
		Owner:      owner,
		Completed:  in.Completed,
		SortBy:     sortBy,
		Descending: in.Descending,
		Skip:       in.Skip,
		Limit:      in.Limit,
	})
}

func (s *TaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id, owner)
}

func (s *TaskService) Update(ctx context.Context, owner, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	upd := ports.TaskUpdate{Completed: in.Completed}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
		}
		upd.Description = &description
	}
	if upd.Description == nil && upd.Completed == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	return s.repo.Update(ctx, id, owner, upd)
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	task, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("task_id", id).Str("owner", owner).Msg("task deleted")
	return task, nil
}
