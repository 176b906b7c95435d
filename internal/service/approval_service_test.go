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

func newApprovalFixture(t *testing.T, name string) (ApprovalService, AccessService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	approvals := repository.NewApprovalRepository(db)

	access := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	svc := NewApprovalService(approvals, access, noopRecorder{}, testValidator(), testLogger())
	return svc, access, db
}

func TestApprovalDecisionByApprover(t *testing.T) {
	svc, access, db := newApprovalFixture(t, "approval_decide")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	_, err := access.Grant(ctx, room.ID, 1, dto.AccessGrantCreateRequest{
		UserID: 2,
		Level:  string(models.PermissionViewer),
	})
	require.NoError(t, err)

	created, err := svc.Create(ctx, room.ID, 1, dto.ApprovalCreateRequest{
		Title:      "Sign off Q2 financials",
		ApproverID: 2,
	})
	require.NoError(t, err)
	require.Equal(t, models.ApprovalStatusPending, created.Status)

	decided, err := svc.Decide(ctx, room.ID, 2, created.ID, dto.ApprovalDecisionRequest{
		Decision: "approved",
		Note:     "Figures reconcile",
	})
	require.NoError(t, err)
	require.Equal(t, models.ApprovalStatusApproved, decided.Status)
	require.Equal(t, "Figures reconcile", decided.DecisionNote)
	require.NotNil(t, decided.DecidedAt)

	// A decided request is immutable.
	_, err = svc.Decide(ctx, room.ID, 2, created.ID, dto.ApprovalDecisionRequest{Decision: "rejected"})
	require.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestApprovalOwnerMayOverrideDecision(t *testing.T) {
	svc, access, db := newApprovalFixture(t, "approval_owner")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	_, err := access.Grant(ctx, room.ID, 1, dto.AccessGrantCreateRequest{
		UserID: 2,
		Level:  string(models.PermissionViewer),
	})
	require.NoError(t, err)
	_, err = access.Grant(ctx, room.ID, 1, dto.AccessGrantCreateRequest{
		UserID: 3,
		Level:  string(models.PermissionViewer),
	})
	require.NoError(t, err)

	created, err := svc.Create(ctx, room.ID, 1, dto.ApprovalCreateRequest{
		Title:      "Release escrow funds",
		ApproverID: 2,
	})
	require.NoError(t, err)

	// A bystander who is not the approver cannot decide.
	_, err = svc.Decide(ctx, room.ID, 3, created.ID, dto.ApprovalDecisionRequest{Decision: "approved"})
	require.ErrorIs(t, err, ErrForbidden)

	// The room owner can decide on the approver's behalf.
	decided, err := svc.Decide(ctx, room.ID, 1, created.ID, dto.ApprovalDecisionRequest{Decision: "rejected"})
	require.NoError(t, err)
	require.Equal(t, models.ApprovalStatusRejected, decided.Status)
}

func TestApprovalDecideScopedToRoom(t *testing.T) {
	svc, _, db := newApprovalFixture(t, "approval_scope")
	ctx := context.Background()
	room := seedRoom(t, db, 1)
	other := seedRoom(t, db, 1)

	created, err := svc.Create(ctx, room.ID, 1, dto.ApprovalCreateRequest{
		Title:      "Confirm data retention policy",
		ApproverID: 1,
	})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, other.ID, 1, created.ID, dto.ApprovalDecisionRequest{Decision: "approved"})
	require.ErrorIs(t, err, ErrApprovalNotFound)
}

func TestApprovalDecisionValidation(t *testing.T) {
	svc, _, db := newApprovalFixture(t, "approval_validation")
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	created, err := svc.Create(ctx, room.ID, 1, dto.ApprovalCreateRequest{
		Title:      "Approve vendor contract",
		ApproverID: 1,
	})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, room.ID, 1, created.ID, dto.ApprovalDecisionRequest{Decision: "maybe"})
	require.Error(t, err)
}
