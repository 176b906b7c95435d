package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ActivityLogFilter narrows activity queries for one data room.
type ActivityLogFilter struct {
	Action       string
	ResourceType string
	ActorID      *uint
	Pagination
}

// ActivityLogRepository persists the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, dataRoomID uint, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	ListChronological(ctx context.Context, dataRoomID uint) ([]models.ActivityLog, error)
	CountByRoom(ctx context.Context, dataRoomID uint) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, dataRoomID uint, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Where("data_room_id = ?", dataRoomID)

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := filter.Pagination.Normalize()

	var entries []models.ActivityLog
	err := query.
		Order("created_at DESC").
		Offset(window.Offset()).
		Limit(window.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListChronological returns the full ordered history for export. Ordering is
// created_at then id so rows inserted within the same tick stay stable.
func (r *activityLogRepository) ListChronological(ctx context.Context, dataRoomID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("data_room_id = ?", dataRoomID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityLogRepository) CountByRoom(ctx context.Context, dataRoomID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("data_room_id = ?", dataRoomID).
		Count(&total).Error
	return total, err
}
