package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
)

func newAccessApp(t *testing.T, name string) (*fiber.App, models.DataRoom) {
	t.Helper()

	db := openTestDB(t, name)
	rooms := repository.NewDataRoomRepository(db)
	grants := repository.NewAccessGrantRepository(db)

	access := service.NewAccessService(rooms, grants, noopActivity{}, testValidator(), testLogger())

	app := fiber.New()
	group := app.Group("/api/v1/data-rooms/:roomID/grants", headerAuth)
	NewAccessHandler(access, testLogger()).Register(group)

	room := seedRoom(t, db, 1)
	return app, room
}

func postJSON(t *testing.T, app *fiber.App, target string, userID uint, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGrantLifecycleOverHTTP(t *testing.T) {
	app, _ := newAccessApp(t, "grants_lifecycle")

	resp := postJSON(t, app, "/api/v1/data-rooms/1/grants", 1, fiber.Map{
		"user_id":          2,
		"permission_level": "viewer",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data struct {
			ID    uint   `json:"id"`
			Level string `json:"permission_level"`
		} `json:"data"`
	}
	decodeBody(t, resp, &created)
	require.Equal(t, "viewer", created.Data.Level)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/data-rooms/1/grants", 1)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listing struct {
		Data []struct {
			UserID uint `json:"user_id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &listing)
	require.Len(t, listing.Data, 1)
	require.Equal(t, uint(2), listing.Data[0].UserID)

	resp = doRequest(t, app, http.MethodDelete,
		"/api/v1/data-rooms/1/grants/"+strconv.FormatUint(uint64(created.Data.ID), 10), 1)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = doRequest(t, app, http.MethodGet, "/api/v1/data-rooms/1/grants", 1)
	decodeBody(t, resp, &listing)
	require.Empty(t, listing.Data)

	resp = doRequest(t, app, http.MethodGet, "/api/v1/data-rooms/1/grants?include_revoked=true", 1)
	decodeBody(t, resp, &listing)
	require.Len(t, listing.Data, 1)
}

func TestGrantManagementIsOwnerOnly(t *testing.T) {
	app, _ := newAccessApp(t, "grants_owner_only")

	// Give user 2 editor access; managing grants still requires ownership.
	resp := postJSON(t, app, "/api/v1/data-rooms/1/grants", 1, fiber.Map{
		"user_id":          2,
		"permission_level": "editor",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = postJSON(t, app, "/api/v1/data-rooms/1/grants", 2, fiber.Map{
		"user_id":          3,
		"permission_level": "viewer",
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	resp = doRequest(t, app, http.MethodGet, "/api/v1/data-rooms/1/grants", 2)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestGrantValidationRejectsUnknownLevel(t *testing.T) {
	app, _ := newAccessApp(t, "grants_validation")

	resp := postJSON(t, app, "/api/v1/data-rooms/1/grants", 1, fiber.Map{
		"user_id":          2,
		"permission_level": "admin",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestGrantRejectsMalformedExpiry(t *testing.T) {
	app, _ := newAccessApp(t, "grants_bad_expiry")

	resp := postJSON(t, app, "/api/v1/data-rooms/1/grants", 1, fiber.Map{
		"user_id":          2,
		"permission_level": "viewer",
		"expires_at":       "next tuesday",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func TestGrantMissingRoomIsNotFound(t *testing.T) {
	app, _ := newAccessApp(t, "grants_missing_room")

	resp := postJSON(t, app, "/api/v1/data-rooms/999/grants", 1, fiber.Map{
		"user_id":          2,
		"permission_level": "viewer",
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
