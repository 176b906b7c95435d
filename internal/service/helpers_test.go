package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.DataRoom{},
		&models.AccessGrant{},
		&models.ActivityLog{},
		&models.Document{},
		&models.Task{},
		&models.Workflow{},
		&models.WorkflowStep{},
		&models.ApprovalRequest{},
		&models.RecomputeRun{},
		&models.ImportJob{},
		&models.Company{},
		&models.Profile{},
	))

	return db
}

func seedRoom(t *testing.T, db *gorm.DB, ownerID uint) models.DataRoom {
	t.Helper()

	room := models.DataRoom{
		Name:    "Project Falcon",
		OwnerID: ownerID,
		Status:  models.DataRoomStatusActive,
	}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// noopRecorder satisfies ActivityRecorder where the audit trail is not under test.
type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, entry ActivityEntry) {}
