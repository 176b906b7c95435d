package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

// WorkflowRepository defines persistence operations for workflows and steps.
type WorkflowRepository interface {
	GetByID(ctx context.Context, id uint) (models.Workflow, error)
	ListByRoom(ctx context.Context, dataRoomID uint) ([]models.Workflow, error)
	Create(ctx context.Context, workflow *models.Workflow) error
	GetStep(ctx context.Context, stepID uint) (models.WorkflowStep, error)
	UpdateStep(ctx context.Context, step *models.WorkflowStep) error
}

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository instantiates a GORM-backed repository.
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) GetByID(ctx context.Context, id uint) (models.Workflow, error) {
	var workflow models.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&workflow, id).Error
	if err != nil {
		return models.Workflow{}, err
	}
	return workflow, nil
}

func (r *workflowRepository) ListByRoom(ctx context.Context, dataRoomID uint) ([]models.Workflow, error) {
	var workflows []models.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("data_room_id = ?", dataRoomID).
		Order("created_at ASC").
		Find(&workflows).Error
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

// Create persists the workflow together with its steps in one transaction.
func (r *workflowRepository) Create(ctx context.Context, workflow *models.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *workflowRepository) GetStep(ctx context.Context, stepID uint) (models.WorkflowStep, error) {
	var step models.WorkflowStep
	if err := r.db.WithContext(ctx).First(&step, stepID).Error; err != nil {
		return models.WorkflowStep{}, err
	}
	return step, nil
}

func (r *workflowRepository) UpdateStep(ctx context.Context, step *models.WorkflowStep) error {
	return r.db.WithContext(ctx).Save(step).Error
}
