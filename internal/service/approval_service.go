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

// ErrAlreadyDecided indicates the approval request is no longer pending.
var ErrAlreadyDecided = errors.New("approval request already decided")

// ApprovalService exposes approval use cases for a data room.
type ApprovalService interface {
	List(ctx context.Context, roomID, userID uint, filter repository.ApprovalFilter) (dto.ApprovalListResponse, error)
	Create(ctx context.Context, roomID, userID uint, payload dto.ApprovalCreateRequest) (dto.ApprovalResponse, error)
	Decide(ctx context.Context, roomID, userID, approvalID uint, payload dto.ApprovalDecisionRequest) (dto.ApprovalResponse, error)
}

type approvalService struct {
	repo      repository.ApprovalRepository
	access    AccessChecker
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewApprovalService builds the approval service.
func NewApprovalService(repo repository.ApprovalRepository, access AccessChecker, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ApprovalService {
	return &approvalService{
		repo:      repo,
		access:    access,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "approval_service").Logger(),
		now:       time.Now,
	}
}

func (s *approvalService) List(ctx context.Context, roomID, userID uint, filter repository.ApprovalFilter) (dto.ApprovalListResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.ApprovalListResponse{}, err
	}

	approvals, total, err := s.repo.List(ctx, roomID, filter)
	if err != nil {
		return dto.ApprovalListResponse{}, err
	}

	window := filter.Pagination.Normalize()
	return dto.ApprovalListResponse{
		Items:      dto.NewApprovalResponseSlice(approvals),
		Pagination: dto.NewPaginationMeta(window.Page, window.PageSize, total),
	}, nil
}

func (s *approvalService) Create(ctx context.Context, roomID, userID uint, payload dto.ApprovalCreateRequest) (dto.ApprovalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApprovalResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.ApprovalResponse{}, err
	}

	approval := models.ApprovalRequest{
		DataRoomID:     roomID,
		WorkflowStepID: payload.WorkflowStepID,
		RequesterID:    userID,
		ApproverID:     payload.ApproverID,
		Title:          payload.Title,
		Status:         models.ApprovalStatusPending,
	}

	if err := s.repo.Create(ctx, &approval); err != nil {
		return dto.ApprovalResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "approval",
		ResourceID:   &approval.ID,
		ActorID:      userID,
		Action:       "approval.requested",
		Detail:       map[string]interface{}{"title": approval.Title, "approver_id": approval.ApproverID},
	})

	return dto.NewApprovalResponse(approval), nil
}

// Decide records the approver's verdict. Only the named approver or the room
// owner may decide; a decided request is immutable.
func (s *approvalService) Decide(ctx context.Context, roomID, userID, approvalID uint, payload dto.ApprovalDecisionRequest) (dto.ApprovalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ApprovalResponse{}, err
	}

	level, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer)
	if err != nil {
		return dto.ApprovalResponse{}, err
	}

	approval, err := s.repo.GetByID(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ApprovalResponse{}, ErrApprovalNotFound
		}
		return dto.ApprovalResponse{}, err
	}
	if approval.DataRoomID != roomID {
		return dto.ApprovalResponse{}, ErrApprovalNotFound
	}

	if approval.ApproverID != userID && level != models.PermissionOwner {
		return dto.ApprovalResponse{}, ErrForbidden
	}

	if approval.Status != models.ApprovalStatusPending {
		return dto.ApprovalResponse{}, ErrAlreadyDecided
	}

	decided := s.now()
	approval.Status = payload.Decision
	approval.DecisionNote = payload.Note
	approval.DecidedAt = &decided

	if err := s.repo.Update(ctx, &approval); err != nil {
		return dto.ApprovalResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "approval",
		ResourceID:   &approval.ID,
		ActorID:      userID,
		Action:       "approval." + payload.Decision,
		Detail:       map[string]interface{}{"title": approval.Title},
	})

	return dto.NewApprovalResponse(approval), nil
}
