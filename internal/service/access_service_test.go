package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

func newAccessFixture(t *testing.T, name string) (AccessService, *gorm.DB) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)
	svc := NewAccessService(rooms, grants, noopRecorder{}, testValidator(), testLogger())
	return svc, db
}

func TestCheckOwnerOverridesGrants(t *testing.T) {
	svc, db := newAccessFixture(t, "access_owner")

	room := seedRoom(t, db, 1)

	// A stale viewer grant for the owner must not downgrade them.
	grant := models.AccessGrant{DataRoomID: room.ID, UserID: 1, Level: models.PermissionViewer, GrantedBy: 1}
	require.NoError(t, db.Create(&grant).Error)

	level, err := svc.Check(context.Background(), room.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.PermissionOwner, level)
}

func TestCheckActiveGrantLevel(t *testing.T) {
	svc, db := newAccessFixture(t, "access_grant")

	room := seedRoom(t, db, 1)
	grant := models.AccessGrant{DataRoomID: room.ID, UserID: 2, Level: models.PermissionEditor, GrantedBy: 1}
	require.NoError(t, db.Create(&grant).Error)

	level, err := svc.Check(context.Background(), room.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.PermissionEditor, level)

	_, err = svc.Require(context.Background(), room.ID, 2, models.PermissionOwner)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCheckRevokedGrantDenied(t *testing.T) {
	svc, db := newAccessFixture(t, "access_revoked")

	room := seedRoom(t, db, 1)
	revoked := time.Now().Add(-time.Hour)
	grant := models.AccessGrant{DataRoomID: room.ID, UserID: 2, Level: models.PermissionEditor, GrantedBy: 1, RevokedAt: &revoked}
	require.NoError(t, db.Create(&grant).Error)

	_, err := svc.Check(context.Background(), room.ID, 2)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCheckExpiredGrantDenied(t *testing.T) {
	svc, db := newAccessFixture(t, "access_expired")

	room := seedRoom(t, db, 1)
	expired := time.Now().Add(-time.Minute)
	grant := models.AccessGrant{DataRoomID: room.ID, UserID: 2, Level: models.PermissionViewer, GrantedBy: 1, ExpiresAt: &expired}
	require.NoError(t, db.Create(&grant).Error)

	_, err := svc.Check(context.Background(), room.ID, 2)
	require.ErrorIs(t, err, ErrForbidden)

	// A future expiry still confers access.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(&models.AccessGrant{}).Where("id = ?", grant.ID).Update("expires_at", future).Error)

	level, err := svc.Check(context.Background(), room.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.PermissionViewer, level)
}

func TestCheckMissingRoomIsNotFound(t *testing.T) {
	svc, _ := newAccessFixture(t, "access_missing")

	_, err := svc.Check(context.Background(), 999, 1)
	require.ErrorIs(t, err, ErrDataRoomNotFound)
}

func TestCheckDeletedRoomIsNotFound(t *testing.T) {
	svc, db := newAccessFixture(t, "access_deleted")

	room := seedRoom(t, db, 1)
	deleted := time.Now()
	require.NoError(t, db.Model(&models.DataRoom{}).Where("id = ?", room.ID).Update("deleted_at", deleted).Error)

	_, err := svc.Check(context.Background(), room.ID, 1)
	require.ErrorIs(t, err, ErrDataRoomNotFound)
}

func TestGrantAndRevokeLifecycle(t *testing.T) {
	svc, db := newAccessFixture(t, "access_lifecycle")

	room := seedRoom(t, db, 1)
	ctx := context.Background()

	granted, err := svc.Grant(ctx, room.ID, 1, dto.AccessGrantCreateRequest{UserID: 2, Level: "viewer"})
	require.NoError(t, err)
	require.Equal(t, "viewer", granted.Level)

	// Non-owners cannot manage grants.
	_, err = svc.Grant(ctx, room.ID, 2, dto.AccessGrantCreateRequest{UserID: 3, Level: "viewer"})
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Revoke(ctx, room.ID, 1, granted.ID))

	_, err = svc.Check(ctx, room.ID, 2)
	require.ErrorIs(t, err, ErrForbidden)

	// Revoking again is idempotent.
	require.NoError(t, svc.Revoke(ctx, room.ID, 1, granted.ID))
}
