package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// RecomputeRunRepository persists durable records of analysis runs.
type RecomputeRunRepository interface {
	Create(ctx context.Context, run *models.RecomputeRun) error
	GetByID(ctx context.Context, id string) (models.RecomputeRun, error)
	LatestByRoom(ctx context.Context, dataRoomID uint, kind string) (models.RecomputeRun, error)
	Update(ctx context.Context, run *models.RecomputeRun) error
}

type recomputeRunRepository struct {
	db *gorm.DB
}

// NewRecomputeRunRepository instantiates a GORM-backed repository.
func NewRecomputeRunRepository(db *gorm.DB) RecomputeRunRepository {
	return &recomputeRunRepository{db: db}
}

func (r *recomputeRunRepository) Create(ctx context.Context, run *models.RecomputeRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *recomputeRunRepository) GetByID(ctx context.Context, id string) (models.RecomputeRun, error) {
	var run models.RecomputeRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return models.RecomputeRun{}, err
	}
	return run, nil
}

// LatestByRoom returns the most recently started run of the given kind.
func (r *recomputeRunRepository) LatestByRoom(ctx context.Context, dataRoomID uint, kind string) (models.RecomputeRun, error) {
	var run models.RecomputeRun
	err := r.db.WithContext(ctx).
		Where("data_room_id = ? AND kind = ?", dataRoomID, kind).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return models.RecomputeRun{}, err
	}
	return run, nil
}

func (r *recomputeRunRepository) Update(ctx context.Context, run *models.RecomputeRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}
