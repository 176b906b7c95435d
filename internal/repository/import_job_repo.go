package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// ImportJobRepository persists durable bulk-import job records.
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (models.ImportJob, error)
	Update(ctx context.Context, job *models.ImportJob) error
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type importJobRepository struct {
	db *gorm.DB
}

// NewImportJobRepository instantiates a GORM-backed repository.
func NewImportJobRepository(db *gorm.DB) ImportJobRepository {
	return &importJobRepository{db: db}
}

func (r *importJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *importJobRepository) GetByID(ctx context.Context, id string) (models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return models.ImportJob{}, err
	}
	return job, nil
}

func (r *importJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// PurgeFinishedBefore removes terminal jobs older than the cutoff. Invoked
// from the cron-protected sweep endpoint.
func (r *importJobRepository) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND finished_at IS NOT NULL AND finished_at < ?",
			[]string{models.ImportStatusCompleted, models.ImportStatusFailed}, cutoff).
		Delete(&models.ImportJob{})
	return result.RowsAffected, result.Error
}
