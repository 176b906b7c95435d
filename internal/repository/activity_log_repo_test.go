package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oppspot/oppspot-api/internal/models"
)

func TestListChronologicalOrdersByCreationThenID(t *testing.T) {
	db := openTestDB(t, "activity_order")
	repo := NewActivityLogRepository(db)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	actions := []string{"data_room.created", "document.uploaded", "task.created"}
	for i, action := range actions {
		require.NoError(t, repo.Create(ctx, &models.ActivityLog{
			DataRoomID: room.ID,
			ActorID:    1,
			Action:     action,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}
	// Two rows within the same tick keep insertion order via the id tiebreak.
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{
		DataRoomID: room.ID, ActorID: 1, Action: "task.updated", CreatedAt: base.Add(3 * time.Second),
	}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{
		DataRoomID: room.ID, ActorID: 1, Action: "task.completed", CreatedAt: base.Add(3 * time.Second),
	}))

	entries, err := repo.ListChronological(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	want := append(actions, "task.updated", "task.completed")
	for i, entry := range entries {
		require.Equal(t, want[i], entry.Action)
	}
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
	}
}

func TestActivityListFilters(t *testing.T) {
	db := openTestDB(t, "activity_filters")
	repo := NewActivityLogRepository(db)
	ctx := context.Background()
	room := seedRoom(t, db, 1)

	require.NoError(t, repo.Create(ctx, &models.ActivityLog{
		DataRoomID: room.ID, ActorID: 1, Action: "document.uploaded", ResourceType: "document",
	}))
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{
		DataRoomID: room.ID, ActorID: 2, Action: "task.created", ResourceType: "task",
	}))

	actor := uint(2)
	_, total, err := repo.List(ctx, room.ID, ActivityLogFilter{ActorID: &actor})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, total, err = repo.List(ctx, room.ID, ActivityLogFilter{ResourceType: "document"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, total, err = repo.List(ctx, room.ID, ActivityLogFilter{Action: "missing.action"})
	require.NoError(t, err)
	require.Zero(t, total)
}
