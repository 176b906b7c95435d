package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// DataRoomFilter describes search, status and pagination options.
type DataRoomFilter struct {
	Search string
	Status string
	Sort   string
	Pagination
}

// DataRoomRepository defines persistence operations for data rooms.
// GetByID excludes soft-deleted rows so a deleted room surfaces as not found.
type DataRoomRepository interface {
	GetByID(ctx context.Context, id uint) (models.DataRoom, error)
	GetAnyByID(ctx context.Context, id uint) (models.DataRoom, error)
	ListForUser(ctx context.Context, userID uint, filter DataRoomFilter) ([]models.DataRoom, int64, error)
	Create(ctx context.Context, room *models.DataRoom) error
	Update(ctx context.Context, room *models.DataRoom) error
	SoftDelete(ctx context.Context, id uint, now time.Time) error
}

type dataRoomRepository struct {
	db *gorm.DB
}

// NewDataRoomRepository instantiates a GORM-backed repository.
func NewDataRoomRepository(db *gorm.DB) DataRoomRepository {
	return &dataRoomRepository{db: db}
}

func (r *dataRoomRepository) GetByID(ctx context.Context, id uint) (models.DataRoom, error) {
	var room models.DataRoom
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&room, id).Error
	if err != nil {
		return models.DataRoom{}, err
	}
	return room, nil
}

// GetAnyByID also returns soft-deleted rooms. Used where the caller needs to
// distinguish "deleted" from "never existed".
func (r *dataRoomRepository) GetAnyByID(ctx context.Context, id uint) (models.DataRoom, error) {
	var room models.DataRoom
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return models.DataRoom{}, err
	}
	return room, nil
}

// ListForUser returns rooms the user owns plus rooms shared with them via an
// active grant.
func (r *dataRoomRepository) ListForUser(ctx context.Context, userID uint, filter DataRoomFilter) ([]models.DataRoom, int64, error) {
	now := time.Now()
	query := r.db.WithContext(ctx).
		Model(&models.DataRoom{}).
		Where("data_rooms.deleted_at IS NULL").
		Where(
			"data_rooms.owner_id = ? OR data_rooms.id IN (?)",
			userID,
			r.db.Model(&models.AccessGrant{}).
				Select("data_room_id").
				Where("user_id = ? AND revoked_at IS NULL", userID).
				Where("expires_at IS NULL OR expires_at > ?", now),
		)

	if filter.Status != "" {
		query = query.Where("data_rooms.status = ?", filter.Status)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(data_rooms.name) LIKE ? OR LOWER(data_rooms.company_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := filter.Pagination.Normalize()

	var rooms []models.DataRoom
	err := query.
		Order(normalizeDataRoomSort(filter.Sort)).
		Offset(window.Offset()).
		Limit(window.PageSize).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

func (r *dataRoomRepository) Create(ctx context.Context, room *models.DataRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *dataRoomRepository) Update(ctx context.Context, room *models.DataRoom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// SoftDelete marks the room deleted. Repeating the call is a no-op success.
func (r *dataRoomRepository) SoftDelete(ctx context.Context, id uint, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.DataRoom{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var room models.DataRoom
		if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func normalizeDataRoomSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "name", "name:asc":
		return "name ASC"
	case "-name", "name:desc":
		return "name DESC"
	case "created_at", "created_at:asc":
		return "created_at ASC"
	case "-created_at", "created_at:desc":
		return "created_at DESC"
	default:
		return "updated_at DESC"
	}
}
