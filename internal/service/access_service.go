package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// AccessChecker resolves the caller's permission level on a data room.
// Resolution order: designated owner first, then the newest active grant.
// A missing or deleted room is ErrDataRoomNotFound, never a permission error.
type AccessChecker interface {
	Check(ctx context.Context, dataRoomID, userID uint) (models.PermissionLevel, error)
	Require(ctx context.Context, dataRoomID, userID uint, minimum models.PermissionLevel) (models.PermissionLevel, error)
}

// AccessService manages grants on top of permission resolution.
type AccessService interface {
	AccessChecker
	ListGrants(ctx context.Context, dataRoomID, callerID uint, includeRevoked bool) ([]dto.AccessGrantResponse, error)
	Grant(ctx context.Context, dataRoomID, callerID uint, payload dto.AccessGrantCreateRequest) (dto.AccessGrantResponse, error)
	Revoke(ctx context.Context, dataRoomID, callerID, grantID uint) error
}

type accessService struct {
	rooms     repository.DataRoomRepository
	grants    repository.AccessGrantRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAccessService constructs the access service.
func NewAccessService(rooms repository.DataRoomRepository, grants repository.AccessGrantRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) AccessService {
	return &accessService{
		rooms:     rooms,
		grants:    grants,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "access_service").Logger(),
		now:       time.Now,
	}
}

func (s *accessService) Check(ctx context.Context, dataRoomID, userID uint) (models.PermissionLevel, error) {
	room, err := s.rooms.GetByID(ctx, dataRoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrDataRoomNotFound
		}
		return "", err
	}

	if room.OwnerID == userID {
		return models.PermissionOwner, nil
	}

	grant, err := s.grants.ActiveGrant(ctx, dataRoomID, userID, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrForbidden
		}
		return "", err
	}

	return grant.Level, nil
}

func (s *accessService) Require(ctx context.Context, dataRoomID, userID uint, minimum models.PermissionLevel) (models.PermissionLevel, error) {
	level, err := s.Check(ctx, dataRoomID, userID)
	if err != nil {
		return "", err
	}
	if !level.AtLeast(minimum) {
		return "", ErrForbidden
	}
	return level, nil
}

func (s *accessService) ListGrants(ctx context.Context, dataRoomID, callerID uint, includeRevoked bool) ([]dto.AccessGrantResponse, error) {
	if _, err := s.Require(ctx, dataRoomID, callerID, models.PermissionOwner); err != nil {
		return nil, err
	}

	grants, err := s.grants.List(ctx, dataRoomID, includeRevoked)
	if err != nil {
		return nil, err
	}

	return dto.NewAccessGrantResponseSlice(grants), nil
}

func (s *accessService) Grant(ctx context.Context, dataRoomID, callerID uint, payload dto.AccessGrantCreateRequest) (dto.AccessGrantResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccessGrantResponse{}, err
	}

	if _, err := s.Require(ctx, dataRoomID, callerID, models.PermissionOwner); err != nil {
		return dto.AccessGrantResponse{}, err
	}

	level := models.PermissionLevel(strings.ToLower(strings.TrimSpace(payload.Level)))
	if !level.Valid() || level == models.PermissionOwner {
		return dto.AccessGrantResponse{}, ErrForbidden
	}

	grant := models.AccessGrant{
		DataRoomID:  dataRoomID,
		UserID:      payload.UserID,
		InviteEmail: strings.TrimSpace(payload.InviteEmail),
		Level:       level,
		GrantedBy:   callerID,
	}

	if payload.ExpiresAt != nil {
		expires, err := time.Parse(time.RFC3339, *payload.ExpiresAt)
		if err != nil {
			return dto.AccessGrantResponse{}, &FieldValidationError{Field: "expires_at", Reason: "must be an RFC 3339 timestamp"}
		}
		grant.ExpiresAt = &expires
	}

	if err := s.grants.Create(ctx, &grant); err != nil {
		return dto.AccessGrantResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   dataRoomID,
		ResourceType: "access_grant",
		ResourceID:   &grant.ID,
		ActorID:      callerID,
		Action:       "access.granted",
		Detail: map[string]interface{}{
			"user_id":          grant.UserID,
			"permission_level": string(grant.Level),
		},
	})

	return dto.NewAccessGrantResponse(grant), nil
}

func (s *accessService) Revoke(ctx context.Context, dataRoomID, callerID, grantID uint) error {
	if _, err := s.Require(ctx, dataRoomID, callerID, models.PermissionOwner); err != nil {
		return err
	}

	grant, err := s.grants.GetByID(ctx, grantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGrantNotFound
		}
		return err
	}
	if grant.DataRoomID != dataRoomID {
		return ErrGrantNotFound
	}

	if err := s.grants.Revoke(ctx, grantID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGrantNotFound
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   dataRoomID,
		ResourceType: "access_grant",
		ResourceID:   &grantID,
		ActorID:      callerID,
		Action:       "access.revoked",
		Detail:       map[string]interface{}{"user_id": grant.UserID},
	})

	return nil
}
