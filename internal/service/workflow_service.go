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

// WorkflowService exposes workflow use cases for a data room.
type WorkflowService interface {
	List(ctx context.Context, roomID, userID uint) ([]dto.WorkflowResponse, error)
	Get(ctx context.Context, roomID, userID, workflowID uint) (dto.WorkflowResponse, error)
	Create(ctx context.Context, roomID, userID uint, payload dto.WorkflowCreateRequest) (dto.WorkflowResponse, error)
	AdvanceStep(ctx context.Context, roomID, userID, workflowID, stepID uint, payload dto.WorkflowStepAdvanceRequest) (dto.WorkflowResponse, error)
}

type workflowService struct {
	repo      repository.WorkflowRepository
	access    AccessChecker
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewWorkflowService builds the workflow service.
func NewWorkflowService(repo repository.WorkflowRepository, access AccessChecker, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) WorkflowService {
	return &workflowService{
		repo:      repo,
		access:    access,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "workflow_service").Logger(),
		now:       time.Now,
	}
}

func (s *workflowService) List(ctx context.Context, roomID, userID uint) ([]dto.WorkflowResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return nil, err
	}

	workflows, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return dto.NewWorkflowResponseSlice(workflows), nil
}

func (s *workflowService) Get(ctx context.Context, roomID, userID, workflowID uint) (dto.WorkflowResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.WorkflowResponse{}, err
	}

	workflow, err := s.getInRoom(ctx, roomID, workflowID)
	if err != nil {
		return dto.WorkflowResponse{}, err
	}

	return dto.NewWorkflowResponse(workflow), nil
}

func (s *workflowService) Create(ctx context.Context, roomID, userID uint, payload dto.WorkflowCreateRequest) (dto.WorkflowResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WorkflowResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.WorkflowResponse{}, err
	}

	steps := make([]models.WorkflowStep, 0, len(payload.Steps))
	for i, input := range payload.Steps {
		status := models.StepStatusPending
		if i == 0 {
			status = models.StepStatusActive
		}
		steps = append(steps, models.WorkflowStep{
			Position: i + 1,
			Name:     input.Name,
			Status:   status,
		})
	}

	workflow := models.Workflow{
		DataRoomID: roomID,
		Name:       payload.Name,
		CreatedBy:  userID,
		Steps:      steps,
	}

	if err := s.repo.Create(ctx, &workflow); err != nil {
		return dto.WorkflowResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "workflow",
		ResourceID:   &workflow.ID,
		ActorID:      userID,
		Action:       "workflow.created",
		Detail:       map[string]interface{}{"name": workflow.Name, "steps": len(steps)},
	})

	return dto.NewWorkflowResponse(workflow), nil
}

func (s *workflowService) AdvanceStep(ctx context.Context, roomID, userID, workflowID, stepID uint, payload dto.WorkflowStepAdvanceRequest) (dto.WorkflowResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WorkflowResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.WorkflowResponse{}, err
	}

	workflow, err := s.getInRoom(ctx, roomID, workflowID)
	if err != nil {
		return dto.WorkflowResponse{}, err
	}

	step, err := s.repo.GetStep(ctx, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WorkflowResponse{}, ErrStepNotFound
		}
		return dto.WorkflowResponse{}, err
	}
	if step.WorkflowID != workflow.ID {
		return dto.WorkflowResponse{}, ErrStepNotFound
	}

	if !validStepTransition(step.Status, payload.Status) {
		return dto.WorkflowResponse{}, ErrInvalidTransition
	}

	step.Status = payload.Status
	if payload.Status == models.StepStatusCompleted {
		completed := s.now()
		step.CompletedAt = &completed
	}

	if err := s.repo.UpdateStep(ctx, &step); err != nil {
		return dto.WorkflowResponse{}, err
	}

	// Completing or skipping a step activates the next pending one.
	if payload.Status == models.StepStatusCompleted || payload.Status == models.StepStatusSkipped {
		s.activateNext(ctx, workflow, step.Position)
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "workflow_step",
		ResourceID:   &step.ID,
		ActorID:      userID,
		Action:       "workflow.step_" + payload.Status,
		Detail:       map[string]interface{}{"step": step.Name, "position": step.Position},
	})

	updated, err := s.repo.GetByID(ctx, workflow.ID)
	if err != nil {
		return dto.WorkflowResponse{}, err
	}

	return dto.NewWorkflowResponse(updated), nil
}

func (s *workflowService) activateNext(ctx context.Context, workflow models.Workflow, position int) {
	for _, candidate := range workflow.Steps {
		if candidate.Position > position && candidate.Status == models.StepStatusPending {
			candidate.Status = models.StepStatusActive
			if err := s.repo.UpdateStep(ctx, &candidate); err != nil {
				s.logger.Error().Err(err).Uint("step_id", candidate.ID).Msg("failed to activate next workflow step")
			}
			return
		}
	}
}

func (s *workflowService) getInRoom(ctx context.Context, roomID, workflowID uint) (models.Workflow, error) {
	workflow, err := s.repo.GetByID(ctx, workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Workflow{}, ErrWorkflowNotFound
		}
		return models.Workflow{}, err
	}
	if workflow.DataRoomID != roomID {
		return models.Workflow{}, ErrWorkflowNotFound
	}
	return workflow, nil
}

func validStepTransition(from, to string) bool {
	switch from {
	case models.StepStatusPending:
		return to == models.StepStatusActive || to == models.StepStatusSkipped
	case models.StepStatusActive:
		return to == models.StepStatusCompleted || to == models.StepStatusSkipped
	default:
		return false
	}
}
