package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

func newWorkflowFixture(t *testing.T, name string) (WorkflowService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	workflows := repository.NewWorkflowRepository(db)

	access := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	svc := NewWorkflowService(workflows, access, noopRecorder{}, testValidator(), testLogger())
	return svc, db
}

func dueDiligenceWorkflow() dto.WorkflowCreateRequest {
	return dto.WorkflowCreateRequest{
		Name: "Due diligence checklist",
		Steps: []dto.WorkflowStepInput{
			{Name: "Collect financial statements"},
			{Name: "Legal review"},
			{Name: "Final sign-off"},
		},
	}
}

func TestWorkflowCreateActivatesFirstStep(t *testing.T) {
	svc, db := newWorkflowFixture(t, "workflow_create")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	created, err := svc.Create(ctx, room.ID, 1, dueDiligenceWorkflow())
	require.NoError(t, err)
	require.Len(t, created.Steps, 3)
	require.Equal(t, models.StepStatusActive, created.Steps[0].Status)
	require.Equal(t, models.StepStatusPending, created.Steps[1].Status)
	require.Equal(t, models.StepStatusPending, created.Steps[2].Status)
	require.Equal(t, 1, created.Steps[0].Position)
}

func TestWorkflowAdvanceActivatesNextStep(t *testing.T) {
	svc, db := newWorkflowFixture(t, "workflow_advance")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	created, err := svc.Create(ctx, room.ID, 1, dueDiligenceWorkflow())
	require.NoError(t, err)

	advanced, err := svc.AdvanceStep(ctx, room.ID, 1, created.ID, created.Steps[0].ID, dto.WorkflowStepAdvanceRequest{
		Status: models.StepStatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, models.StepStatusCompleted, advanced.Steps[0].Status)
	require.NotNil(t, advanced.Steps[0].CompletedAt)
	require.Equal(t, models.StepStatusActive, advanced.Steps[1].Status)
	require.Equal(t, models.StepStatusPending, advanced.Steps[2].Status)
}

func TestWorkflowSkipActivatesNextStep(t *testing.T) {
	svc, db := newWorkflowFixture(t, "workflow_skip")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	created, err := svc.Create(ctx, room.ID, 1, dueDiligenceWorkflow())
	require.NoError(t, err)

	advanced, err := svc.AdvanceStep(ctx, room.ID, 1, created.ID, created.Steps[0].ID, dto.WorkflowStepAdvanceRequest{
		Status: models.StepStatusSkipped,
	})
	require.NoError(t, err)
	require.Equal(t, models.StepStatusSkipped, advanced.Steps[0].Status)
	require.Nil(t, advanced.Steps[0].CompletedAt)
	require.Equal(t, models.StepStatusActive, advanced.Steps[1].Status)
}

func TestWorkflowRejectsInvalidTransition(t *testing.T) {
	svc, db := newWorkflowFixture(t, "workflow_transition")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	created, err := svc.Create(ctx, room.ID, 1, dueDiligenceWorkflow())
	require.NoError(t, err)

	// A pending step cannot complete without becoming active first.
	_, err = svc.AdvanceStep(ctx, room.ID, 1, created.ID, created.Steps[1].ID, dto.WorkflowStepAdvanceRequest{
		Status: models.StepStatusCompleted,
	})
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Terminal steps stay put.
	_, err = svc.AdvanceStep(ctx, room.ID, 1, created.ID, created.Steps[0].ID, dto.WorkflowStepAdvanceRequest{
		Status: models.StepStatusCompleted,
	})
	require.NoError(t, err)
	_, err = svc.AdvanceStep(ctx, room.ID, 1, created.ID, created.Steps[0].ID, dto.WorkflowStepAdvanceRequest{
		Status: models.StepStatusSkipped,
	})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestWorkflowStepScopedToWorkflow(t *testing.T) {
	svc, db := newWorkflowFixture(t, "workflow_scope")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	first, err := svc.Create(ctx, room.ID, 1, dueDiligenceWorkflow())
	require.NoError(t, err)
	second, err := svc.Create(ctx, room.ID, 1, dueDiligenceWorkflow())
	require.NoError(t, err)

	_, err = svc.AdvanceStep(ctx, room.ID, 1, first.ID, second.Steps[0].ID, dto.WorkflowStepAdvanceRequest{
		Status: models.StepStatusCompleted,
	})
	require.ErrorIs(t, err, ErrStepNotFound)
}
