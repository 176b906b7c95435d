package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
)

func TestRecordAndExportCSVRoundTrip(t *testing.T) {
	db := openTestDB(t, "activity_export")
	repo := repository.NewActivityLogRepository(db)
	svc := NewActivityService(repo, nil, testLogger())

	room := seedRoom(t, db, 1)
	ctx := context.Background()

	actions := []string{"data_room.created", "document.uploaded", "task.completed"}
	for _, action := range actions {
		svc.Record(ctx, ActivityEntry{
			DataRoomID:   room.ID,
			ResourceType: "data_room",
			ActorID:      1,
			Action:       action,
			Detail:       map[string]interface{}{"note": "ok"},
		})
	}

	payload, err := svc.ExportCSV(ctx, room.ID)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(actions)+1)
	require.Equal(t, []string{"id", "actor_id", "action", "resource_type", "resource_id", "detail", "created_at"}, records[0])

	// Rows come back oldest first.
	for i, action := range actions {
		require.Equal(t, action, records[i+1][2])
	}
}

func TestRecordDropsEntryWithoutAction(t *testing.T) {
	db := openTestDB(t, "activity_invalid")
	repo := repository.NewActivityLogRepository(db)
	svc := NewActivityService(repo, nil, testLogger())

	svc.Record(context.Background(), ActivityEntry{DataRoomID: 1, ResourceType: "task", ActorID: 1})

	var count int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordMasksSecretsInDetail(t *testing.T) {
	db := openTestDB(t, "activity_sanitize")
	repo := repository.NewActivityLogRepository(db)
	svc := NewActivityService(repo, nil, testLogger())

	room := seedRoom(t, db, 1)
	svc.Record(context.Background(), ActivityEntry{
		DataRoomID:   room.ID,
		ResourceType: "access_grant",
		ActorID:      1,
		Action:       "access.granted",
		Detail: map[string]interface{}{
			"api_token": "abc123",
			"comment":   "<script>alert(1)</script>hello",
		},
	})

	var entry models.ActivityLog
	require.NoError(t, db.First(&entry).Error)
	require.Equal(t, "***", entry.Detail["api_token"])
	require.Equal(t, "hello", entry.Detail["comment"])
}
