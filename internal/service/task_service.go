package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// TaskService exposes task use cases for a data room.
type TaskService interface {
	List(ctx context.Context, roomID, userID uint, filter repository.TaskFilter) (dto.TaskListResponse, error)
	Get(ctx context.Context, roomID, userID, taskID uint) (dto.TaskResponse, error)
	Create(ctx context.Context, roomID, userID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, roomID, userID, taskID uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error)
	Delete(ctx context.Context, roomID, userID, taskID uint) error
}

type taskService struct {
	repo      repository.TaskRepository
	access    AccessChecker
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTaskService builds the task service.
func NewTaskService(repo repository.TaskRepository, access AccessChecker, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		repo:      repo,
		access:    access,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "task_service").Logger(),
		now:       time.Now,
	}
}

func (s *taskService) List(ctx context.Context, roomID, userID uint, filter repository.TaskFilter) (dto.TaskListResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.TaskListResponse{}, err
	}

	tasks, total, err := s.repo.List(ctx, roomID, filter)
	if err != nil {
		return dto.TaskListResponse{}, err
	}

	window := filter.Pagination.Normalize()
	return dto.TaskListResponse{
		Items:      dto.NewTaskResponseSlice(tasks),
		Pagination: dto.NewPaginationMeta(window.Page, window.PageSize, total),
	}, nil
}

func (s *taskService) Get(ctx context.Context, roomID, userID, taskID uint) (dto.TaskResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.TaskResponse{}, err
	}

	task, err := s.getInRoom(ctx, roomID, taskID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Create(ctx context.Context, roomID, userID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.TaskResponse{}, err
	}

	priority := payload.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := models.Task{
		DataRoomID:  roomID,
		Title:       payload.Title,
		Description: payload.Description,
		AssigneeID:  payload.AssigneeID,
		Status:      models.TaskStatusOpen,
		Priority:    priority,
	}

	if payload.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.TaskResponse{}, &FieldValidationError{Field: "due_date", Reason: "must be an RFC 3339 timestamp"}
		}
		task.DueDate = &due
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "task",
		ResourceID:   &task.ID,
		ActorID:      userID,
		Action:       "task.created",
		Detail:       map[string]interface{}{"title": task.Title},
	})

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Update(ctx context.Context, roomID, userID, taskID uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.TaskResponse{}, err
	}

	task, err := s.getInRoom(ctx, roomID, taskID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	if payload.Title != nil {
		task.Title = *payload.Title
	}
	if payload.Description != nil {
		task.Description = *payload.Description
	}
	if payload.AssigneeID != nil {
		task.AssigneeID = payload.AssigneeID
	}
	if payload.Priority != nil {
		task.Priority = *payload.Priority
	}
	if payload.DueDate != nil {
		due, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.TaskResponse{}, &FieldValidationError{Field: "due_date", Reason: "must be an RFC 3339 timestamp"}
		}
		task.DueDate = &due
	}

	if payload.Status != nil && *payload.Status != task.Status {
		if !models.ValidTaskStatus(*payload.Status) {
			return dto.TaskResponse{}, ErrInvalidTransition
		}
		task.Status = *payload.Status
		// Completing a task stamps completed_at in the same mutation so
		// the response payload already carries it.
		if task.Status == models.TaskStatusCompleted {
			completed := s.now()
			task.CompletedAt = &completed
		} else {
			task.CompletedAt = nil
		}
	}

	if err := s.repo.Update(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "task",
		ResourceID:   &task.ID,
		ActorID:      userID,
		Action:       "task.updated",
		Detail:       map[string]interface{}{"status": task.Status},
	})

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, roomID, userID, taskID uint) error {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, roomID, taskID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "task",
		ResourceID:   &taskID,
		ActorID:      userID,
		Action:       "task.deleted",
	})

	return nil
}

func (s *taskService) getInRoom(ctx context.Context, roomID, taskID uint) (models.Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	if task.DataRoomID != roomID {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}
