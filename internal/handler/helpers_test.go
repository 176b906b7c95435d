package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/service"
)

type noopActivity struct{}

func (noopActivity) Record(ctx context.Context, entry service.ActivityEntry) {}

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)
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

// headerAuth stands in for the JWT middleware: the acting user comes from
// the X-Test-User header.
func headerAuth(c *fiber.Ctx) error {
	if raw := c.Get("X-Test-User"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			c.Locals("user_id", uint(id))
		}
	}
	return c.Next()
}

func doRequest(t *testing.T, app *fiber.App, method, target string, userID uint) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	if userID > 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(payload, out))
}
