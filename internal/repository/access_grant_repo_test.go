package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

func TestActiveGrantFiltersRevokedAndExpired(t *testing.T) {
	db := openTestDB(t, "grants_active")
	repo := NewAccessGrantRepository(db)
	ctx := context.Background()
	room := seedRoom(t, db, 1)
	now := time.Now()

	revokedAt := now.Add(-time.Hour)
	expired := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 2, Level: models.PermissionEditor, GrantedBy: 1,
		RevokedAt: &revokedAt,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 3, Level: models.PermissionViewer, GrantedBy: 1,
		ExpiresAt: &expired,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 4, Level: models.PermissionViewer, GrantedBy: 1,
		ExpiresAt: &future,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 5, Level: models.PermissionEditor, GrantedBy: 1,
	}))

	_, err := repo.ActiveGrant(ctx, room.ID, 2, now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.ActiveGrant(ctx, room.ID, 3, now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	grant, err := repo.ActiveGrant(ctx, room.ID, 4, now)
	require.NoError(t, err)
	require.Equal(t, models.PermissionViewer, grant.Level)

	grant, err = repo.ActiveGrant(ctx, room.ID, 5, now)
	require.NoError(t, err)
	require.Equal(t, models.PermissionEditor, grant.Level)

	// Grants never cross room boundaries.
	other := seedRoom(t, db, 1)
	_, err = repo.ActiveGrant(ctx, other.ID, 5, now)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRevokeExpiredSweepsOnlyLapsedGrants(t *testing.T) {
	db := openTestDB(t, "grants_sweep")
	repo := NewAccessGrantRepository(db)
	ctx := context.Background()
	room := seedRoom(t, db, 1)
	now := time.Now()

	lapsed := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 2, Level: models.PermissionViewer, GrantedBy: 1,
		ExpiresAt: &lapsed,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 3, Level: models.PermissionViewer, GrantedBy: 1,
		ExpiresAt: &future,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 4, Level: models.PermissionViewer, GrantedBy: 1,
	}))

	swept, err := repo.RevokeExpired(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), swept)

	// The sweep is idempotent; already-revoked rows are skipped.
	swept, err = repo.RevokeExpired(ctx, now)
	require.NoError(t, err)
	require.Zero(t, swept)

	grants, err := repo.List(ctx, room.ID, true)
	require.NoError(t, err)
	require.Len(t, grants, 3)
	for _, grant := range grants {
		if grant.UserID == 2 {
			require.NotNil(t, grant.RevokedAt)
		} else {
			require.Nil(t, grant.RevokedAt)
		}
	}
}

func TestListGrantsHonoursIncludeRevoked(t *testing.T) {
	db := openTestDB(t, "grants_list")
	repo := NewAccessGrantRepository(db)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	revokedAt := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 2, Level: models.PermissionViewer, GrantedBy: 1,
		RevokedAt: &revokedAt,
	}))
	require.NoError(t, repo.Create(ctx, &models.AccessGrant{
		DataRoomID: room.ID, UserID: 3, Level: models.PermissionEditor, GrantedBy: 1,
	}))

	active, err := repo.List(ctx, room.ID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, uint(3), active[0].UserID)

	all, err := repo.List(ctx, room.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
