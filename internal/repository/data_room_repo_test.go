package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oppspot/oppspot-api/internal/models"
)

func TestListForUserCombinesOwnedAndGrantedRooms(t *testing.T) {
	db := openTestDB(t, "rooms_list")
	rooms := NewDataRoomRepository(db)
	grants := NewAccessGrantRepository(db)
	ctx := context.Background()

	owned := seedRoom(t, db, 1)
	shared := seedRoom(t, db, 2)
	_ = seedRoom(t, db, 2)

	require.NoError(t, grants.Create(ctx, &models.AccessGrant{
		DataRoomID: shared.ID, UserID: 1, Level: models.PermissionViewer, GrantedBy: 2,
	}))

	listed, total, err := rooms.ListForUser(ctx, 1, DataRoomFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	ids := map[uint]bool{}
	for _, room := range listed {
		ids[room.ID] = true
	}
	require.True(t, ids[owned.ID])
	require.True(t, ids[shared.ID])
}

func TestListForUserIgnoresLapsedGrants(t *testing.T) {
	db := openTestDB(t, "rooms_lapsed")
	rooms := NewDataRoomRepository(db)
	grants := NewAccessGrantRepository(db)
	ctx := context.Background()

	revoked := seedRoom(t, db, 2)
	expired := seedRoom(t, db, 2)

	revokedAt := time.Now().Add(-time.Hour)
	require.NoError(t, grants.Create(ctx, &models.AccessGrant{
		DataRoomID: revoked.ID, UserID: 1, Level: models.PermissionViewer, GrantedBy: 2,
		RevokedAt: &revokedAt,
	}))
	expiresAt := time.Now().Add(-time.Minute)
	require.NoError(t, grants.Create(ctx, &models.AccessGrant{
		DataRoomID: expired.ID, UserID: 1, Level: models.PermissionViewer, GrantedBy: 2,
		ExpiresAt: &expiresAt,
	}))

	_, total, err := rooms.ListForUser(ctx, 1, DataRoomFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestListForUserSearchAndStatusFilters(t *testing.T) {
	db := openTestDB(t, "rooms_filters")
	rooms := NewDataRoomRepository(db)
	ctx := context.Background()

	require.NoError(t, rooms.Create(ctx, &models.DataRoom{
		Name: "Project Atlas", CompanyName: "Atlas Mining", OwnerID: 1, Status: models.DataRoomStatusActive,
	}))
	require.NoError(t, rooms.Create(ctx, &models.DataRoom{
		Name: "Project Borei", CompanyName: "Borei Shipping", OwnerID: 1, Status: models.DataRoomStatusArchived,
	}))

	listed, total, err := rooms.ListForUser(ctx, 1, DataRoomFilter{Search: "atlas"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Project Atlas", listed[0].Name)

	_, total, err = rooms.ListForUser(ctx, 1, DataRoomFilter{Status: models.DataRoomStatusArchived})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestSoftDeletedRoomsDisappearFromReads(t *testing.T) {
	db := openTestDB(t, "rooms_softdelete")
	rooms := NewDataRoomRepository(db)
	ctx := context.Background()

	room := seedRoom(t, db, 1)
	require.NoError(t, rooms.SoftDelete(ctx, room.ID, time.Now()))

	_, err := rooms.GetByID(ctx, room.ID)
	require.Error(t, err)

	// GetAnyByID still surfaces the archived row.
	archived, err := rooms.GetAnyByID(ctx, room.ID)
	require.NoError(t, err)
	require.True(t, archived.IsDeleted())

	_, total, err := rooms.ListForUser(ctx, 1, DataRoomFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}
