package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// TaskFilter describes filter and pagination options for task lists.
type TaskFilter struct {
	Status     string
	Priority   string
	AssigneeID *uint
	DueFrom    *time.Time
	DueTo      *time.Time
	Search     string
	Sort       string
	Pagination
}

// TaskRepository defines persistence operations for data-room tasks.
type TaskRepository interface {
	GetByID(ctx context.Context, id uint) (models.Task, error)
	List(ctx context.Context, dataRoomID uint, filter TaskFilter) ([]models.Task, int64, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	SoftDelete(ctx context.Context, dataRoomID, id uint, now time.Time) error
	CountByRoom(ctx context.Context, dataRoomID uint) (int64, error)
	CountOpenByRoom(ctx context.Context, dataRoomID uint) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository instantiates a GORM-backed repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		First(&task, id).Error
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, dataRoomID uint, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("data_room_id = ? AND deleted_at IS NULL", dataRoomID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := filter.Pagination.Normalize()

	var tasks []models.Task
	err := query.
		Order(normalizeTaskSort(filter.Sort)).
		Offset(window.Offset()).
		Limit(window.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) SoftDelete(ctx context.Context, dataRoomID, id uint, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND data_room_id = ? AND deleted_at IS NULL", id, dataRoomID).
		Update("deleted_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already-deleted tasks are a no-op; a task outside the room is not found.
		var task models.Task
		if err := r.db.WithContext(ctx).
			Where("id = ? AND data_room_id = ?", id, dataRoomID).
			First(&task).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepository) CountByRoom(ctx context.Context, dataRoomID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("data_room_id = ? AND deleted_at IS NULL", dataRoomID).
		Count(&total).Error
	return total, err
}

func (r *taskRepository) CountOpenByRoom(ctx context.Context, dataRoomID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("data_room_id = ? AND deleted_at IS NULL", dataRoomID).
		Where("status IN ?", []string{models.TaskStatusOpen, models.TaskStatusInProgress}).
		Count(&total).Error
	return total, err
}

func normalizeTaskSort(sort string) string {
	switch strings.ToLower(strings.TrimSpace(sort)) {
	case "due_date", "due_date:asc":
		return "due_date ASC"
	case "-due_date", "due_date:desc":
		return "due_date DESC"
	case "priority", "priority:asc":
		return "priority ASC"
	case "created_at", "created_at:asc":
		return "created_at ASC"
	case "-created_at", "created_at:desc":
		return "created_at DESC"
	default:
		return "created_at DESC"
	}
}
