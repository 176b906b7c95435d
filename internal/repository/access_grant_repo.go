package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// AccessGrantRepository persists data-room access grants. Grants are never
// hard-deleted; revocation and expiry are timestamp columns.
type AccessGrantRepository interface {
	GetByID(ctx context.Context, id uint) (models.AccessGrant, error)
	ActiveGrant(ctx context.Context, dataRoomID, userID uint, now time.Time) (models.AccessGrant, error)
	List(ctx context.Context, dataRoomID uint, includeRevoked bool) ([]models.AccessGrant, error)
	Create(ctx context.Context, grant *models.AccessGrant) error
	Revoke(ctx context.Context, id uint, now time.Time) error
	RevokeExpired(ctx context.Context, now time.Time) (int64, error)
}

type accessGrantRepository struct {
	db *gorm.DB
}

// NewAccessGrantRepository constructs a GORM-backed access grant repository.
func NewAccessGrantRepository(db *gorm.DB) AccessGrantRepository {
	return &accessGrantRepository{db: db}
}

func (r *accessGrantRepository) GetByID(ctx context.Context, id uint) (models.AccessGrant, error) {
	var grant models.AccessGrant
	if err := r.db.WithContext(ctx).First(&grant, id).Error; err != nil {
		return models.AccessGrant{}, err
	}
	return grant, nil
}

func (r *accessGrantRepository) ActiveGrant(ctx context.Context, dataRoomID, userID uint, now time.Time) (models.AccessGrant, error) {
	var grant models.AccessGrant
	err := r.db.WithContext(ctx).
		Where("data_room_id = ? AND user_id = ?", dataRoomID, userID).
		Where("revoked_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		First(&grant).Error
	if err != nil {
		return models.AccessGrant{}, err
	}
	return grant, nil
}

func (r *accessGrantRepository) List(ctx context.Context, dataRoomID uint, includeRevoked bool) ([]models.AccessGrant, error) {
	query := r.db.WithContext(ctx).Where("data_room_id = ?", dataRoomID)
	if !includeRevoked {
		query = query.Where("revoked_at IS NULL")
	}

	var grants []models.AccessGrant
	if err := query.Order("created_at ASC").Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *accessGrantRepository) Create(ctx context.Context, grant *models.AccessGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *accessGrantRepository) Revoke(ctx context.Context, id uint, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccessGrant{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either missing or already revoked; distinguish for the caller.
		var grant models.AccessGrant
		if err := r.db.WithContext(ctx).First(&grant, id).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *accessGrantRepository) RevokeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AccessGrant{}).
		Where("revoked_at IS NULL AND expires_at IS NOT NULL AND expires_at <= ?", now).
		Update("revoked_at", now)
	return result.RowsAffected, result.Error
}
