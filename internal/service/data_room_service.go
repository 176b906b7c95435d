package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

// DataRoomService exposes data room use cases.
type DataRoomService interface {
	List(ctx context.Context, userID uint, filter repository.DataRoomFilter) (dto.DataRoomListResponse, error)
	Get(ctx context.Context, roomID, userID uint) (dto.DataRoomResponse, error)
	Create(ctx context.Context, userID uint, payload dto.DataRoomCreateRequest) (dto.DataRoomResponse, error)
	Update(ctx context.Context, roomID, userID uint, payload dto.DataRoomUpdateRequest) (dto.DataRoomResponse, error)
	Delete(ctx context.Context, roomID, userID uint) error
	Summary(ctx context.Context, roomID, userID uint) (dto.DataRoomSummaryResponse, error)
}

type dataRoomService struct {
	rooms     repository.DataRoomRepository
	documents repository.DocumentRepository
	tasks     repository.TaskRepository
	approvals repository.ApprovalRepository
	activity  ActivityService
	access    AccessChecker
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDataRoomService builds the data room service. cache may be nil.
func NewDataRoomService(
	rooms repository.DataRoomRepository,
	documents repository.DocumentRepository,
	tasks repository.TaskRepository,
	approvals repository.ApprovalRepository,
	activity ActivityService,
	access AccessChecker,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) DataRoomService {
	return &dataRoomService{
		rooms:     rooms,
		documents: documents,
		tasks:     tasks,
		approvals: approvals,
		activity:  activity,
		access:    access,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "data_room_service").Logger(),
		now:       time.Now,
	}
}

func (s *dataRoomService) List(ctx context.Context, userID uint, filter repository.DataRoomFilter) (dto.DataRoomListResponse, error) {
	rooms, total, err := s.rooms.ListForUser(ctx, userID, filter)
	if err != nil {
		return dto.DataRoomListResponse{}, err
	}

	window := filter.Pagination.Normalize()
	return dto.DataRoomListResponse{
		Items:      dto.NewDataRoomResponseSlice(rooms),
		Pagination: dto.NewPaginationMeta(window.Page, window.PageSize, total),
	}, nil
}

func (s *dataRoomService) Get(ctx context.Context, roomID, userID uint) (dto.DataRoomResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.DataRoomResponse{}, err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DataRoomResponse{}, ErrDataRoomNotFound
		}
		return dto.DataRoomResponse{}, err
	}

	return dto.NewDataRoomResponse(room), nil
}

func (s *dataRoomService) Create(ctx context.Context, userID uint, payload dto.DataRoomCreateRequest) (dto.DataRoomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DataRoomResponse{}, err
	}

	room := models.DataRoom{
		Name:        payload.Name,
		CompanyName: payload.CompanyName,
		DealType:    payload.DealType,
		OwnerID:     userID,
		Status:      models.DataRoomStatusActive,
	}

	if err := s.rooms.Create(ctx, &room); err != nil {
		return dto.DataRoomResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   room.ID,
		ResourceType: "data_room",
		ResourceID:   &room.ID,
		ActorID:      userID,
		Action:       "data_room.created",
		Detail:       map[string]interface{}{"name": room.Name},
	})

	return dto.NewDataRoomResponse(room), nil
}

func (s *dataRoomService) Update(ctx context.Context, roomID, userID uint, payload dto.DataRoomUpdateRequest) (dto.DataRoomResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DataRoomResponse{}, err
	}

	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionEditor); err != nil {
		return dto.DataRoomResponse{}, err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DataRoomResponse{}, ErrDataRoomNotFound
		}
		return dto.DataRoomResponse{}, err
	}

	if payload.Name != nil {
		room.Name = *payload.Name
	}
	if payload.CompanyName != nil {
		room.CompanyName = *payload.CompanyName
	}
	if payload.DealType != nil {
		room.DealType = *payload.DealType
	}
	if payload.Status != nil {
		room.Status = *payload.Status
	}

	if err := s.rooms.Update(ctx, &room); err != nil {
		return dto.DataRoomResponse{}, err
	}

	s.invalidateSummary(ctx, roomID)
	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "data_room",
		ResourceID:   &roomID,
		ActorID:      userID,
		Action:       "data_room.updated",
		Detail:       map[string]interface{}{"status": room.Status},
	})

	return dto.NewDataRoomResponse(room), nil
}

func (s *dataRoomService) Delete(ctx context.Context, roomID, userID uint) error {
	room, err := s.rooms.GetAnyByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDataRoomNotFound
		}
		return err
	}
	if room.OwnerID != userID {
		return ErrForbidden
	}
	if room.IsDeleted() {
		// Deleting twice is a no-op.
		return nil
	}

	if err := s.rooms.SoftDelete(ctx, roomID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDataRoomNotFound
		}
		return err
	}

	s.invalidateSummary(ctx, roomID)
	s.activity.Record(ctx, ActivityEntry{
		DataRoomID:   roomID,
		ResourceType: "data_room",
		ResourceID:   &roomID,
		ActorID:      userID,
		Action:       "data_room.deleted",
	})

	return nil
}

func (s *dataRoomService) Summary(ctx context.Context, roomID, userID uint) (dto.DataRoomSummaryResponse, error) {
	if _, err := s.access.Require(ctx, roomID, userID, models.PermissionViewer); err != nil {
		return dto.DataRoomSummaryResponse{}, err
	}

	cacheKey := summaryCacheKey(roomID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DataRoomSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read summary cache")
		}
	}

	documents, err := s.documents.CountByRoom(ctx, roomID)
	if err != nil {
		return dto.DataRoomSummaryResponse{}, err
	}
	tasks, err := s.tasks.CountByRoom(ctx, roomID)
	if err != nil {
		return dto.DataRoomSummaryResponse{}, err
	}
	openTasks, err := s.tasks.CountOpenByRoom(ctx, roomID)
	if err != nil {
		return dto.DataRoomSummaryResponse{}, err
	}
	pendingApprovals, err := s.approvals.CountPendingByRoom(ctx, roomID)
	if err != nil {
		return dto.DataRoomSummaryResponse{}, err
	}
	activityCount, err := s.activityCount(ctx, roomID)
	if err != nil {
		return dto.DataRoomSummaryResponse{}, err
	}

	response := dto.DataRoomSummaryResponse{
		DataRoomID:       roomID,
		DocumentCount:    documents,
		TaskCount:        tasks,
		OpenTaskCount:    openTasks,
		PendingApprovals: pendingApprovals,
		ActivityCount:    activityCount,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store summary cache")
			}
		}
	}

	return response, nil
}

func (s *dataRoomService) activityCount(ctx context.Context, roomID uint) (int64, error) {
	listing, err := s.activity.List(ctx, roomID, repository.ActivityLogFilter{
		Pagination: repository.Pagination{Page: 1, PageSize: 1},
	})
	if err != nil {
		return 0, err
	}
	return listing.Pagination.TotalItems, nil
}

func (s *dataRoomService) invalidateSummary(ctx context.Context, roomID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, summaryCacheKey(roomID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("data_room_id", roomID).Msg("failed to invalidate summary cache")
	}
}

func summaryCacheKey(roomID uint) string {
	return fmt.Sprintf("summary:room:%d", roomID)
}
