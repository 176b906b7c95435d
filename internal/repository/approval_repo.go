package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ApprovalFilter narrows approval request queries.
type ApprovalFilter struct {
	Status     string
	ApproverID *uint
	Pagination
}

// ApprovalRepository defines persistence operations for approval requests.
type ApprovalRepository interface {
	GetByID(ctx context.Context, id uint) (models.ApprovalRequest, error)
	List(ctx context.Context, dataRoomID uint, filter ApprovalFilter) ([]models.ApprovalRequest, int64, error)
	Create(ctx context.Context, approval *models.ApprovalRequest) error
	Update(ctx context.Context, approval *models.ApprovalRequest) error
	CountPendingByRoom(ctx context.Context, dataRoomID uint) (int64, error)
}

type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository instantiates a GORM-backed repository.
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) GetByID(ctx context.Context, id uint) (models.ApprovalRequest, error) {
	var approval models.ApprovalRequest
	if err := r.db.WithContext(ctx).First(&approval, id).Error; err != nil {
		return models.ApprovalRequest{}, err
	}
	return approval, nil
}

func (r *approvalRepository) List(ctx context.Context, dataRoomID uint, filter ApprovalFilter) ([]models.ApprovalRequest, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("data_room_id = ?", dataRoomID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ApproverID != nil {
		query = query.Where("approver_id = ?", *filter.ApproverID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := filter.Pagination.Normalize()

	var approvals []models.ApprovalRequest
	err := query.
		Order("created_at DESC").
		Offset(window.Offset()).
		Limit(window.PageSize).
		Find(&approvals).Error
	if err != nil {
		return nil, 0, err
	}

	return approvals, total, nil
}

func (r *approvalRepository) Create(ctx context.Context, approval *models.ApprovalRequest) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *approvalRepository) Update(ctx context.Context, approval *models.ApprovalRequest) error {
	return r.db.WithContext(ctx).Save(approval).Error
}

func (r *approvalRepository) CountPendingByRoom(ctx context.Context, dataRoomID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("data_room_id = ? AND status = ?", dataRoomID, models.ApprovalStatusPending).
		Count(&total).Error
	return total, err
}
