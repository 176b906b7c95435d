package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// DocumentFilter describes filter, search and pagination options.
type DocumentFilter struct {
	Status       string
	Category     string
	Search       string
	UploadedFrom *time.Time
	UploadedTo   *time.Time
	Sort         string
	Pagination
}

// DocumentRepository defines persistence operations for data-room documents.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Document, error)
	List(ctx context.Context, dataRoomID uint, filter DocumentFilter) ([]models.Document, int64, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	SoftDelete(ctx context.Context, dataRoomID, id uint, now time.Time) error
	CountByRoom(ctx context.Context, dataRoomID uint) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository instantiates a GORM-backed repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (models.Document, error) {
	var document models.Document
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&document, id).Error
	if err != nil {
		return models.Document{}, err
	}
	return document, nil
}

func (r *documentRepository) List(ctx context.Context, dataRoomID uint, filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("data_room_id = ? AND deleted_at IS NULL", dataRoomID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}
	if filter.UploadedFrom != nil {
		query = query.Where("created_at >= ?", *filter.UploadedFrom)
	}
	if filter.UploadedTo != nil {
		query = query.Where("created_at <= ?", *filter.UploadedTo)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := filter.Pagination.Normalize()

	var documents []models.Document
	err := query.
		Order(normalizeDocumentSort(filter.Sort)).
		Offset(window.Offset()).
		Limit(window.PageSize).
		Find(&documents).Error
	if err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) Update(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}

func (r *documentRepository) SoftDelete(ctx context.Context, dataRoomID, id uint, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ? AND data_room_id = ? AND deleted_at IS NULL", id, dataRoomID).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already-deleted documents are a no-op; a document outside the room is not found.
		var document models.Document
		if err := r.db.WithContext(ctx).
			Where("id = ? AND data_room_id = ?", id, dataRoomID).
			First(&document).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *documentRepository) CountByRoom(ctx context.Context, dataRoomID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("data_room_id = ? AND deleted_at IS NULL", dataRoomID).
		Count(&total).Error
	return total, err
}

func normalizeDocumentSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "name", "name:asc":
		return "name ASC"
	case "-name", "name:desc":
		return "name DESC"
	case "size", "size:asc":
		return "size_bytes ASC"
	case "-size", "size:desc":
		return "size_bytes DESC"
	case "created_at", "created_at:asc":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}
