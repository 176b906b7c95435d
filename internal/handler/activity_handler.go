package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// ActivityHandler wires audit-trail HTTP routes under a data room. Reads
// require any access to the room; the CSV export is restricted to owners.
type ActivityHandler struct {
	service service.ActivityService
	access  service.AccessChecker
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, access service.AccessChecker, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		access:  access,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/export", h.export)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.access.Require(c.UserContext(), roomID, userIDFromContext(c), models.PermissionViewer); err != nil {
		return h.fail(c, err)
	}

	pagination, err := paginationFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.ActivityLogFilter{
		Action:       c.Query("action"),
		ResourceType: c.Query("resource_type"),
		Pagination:   pagination,
	}
	if actor, err := parseQueryInt(c, "actor_id"); err == nil && actor > 0 {
		id := uint(actor)
		filter.ActorID = &id
	}

	entries, err := h.service.List(c.UserContext(), roomID, filter)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}

func (h *ActivityHandler) export(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.access.Require(c.UserContext(), roomID, userIDFromContext(c), models.PermissionOwner); err != nil {
		return h.fail(c, err)
	}

	payload, err := h.service.ExportCSV(c.UserContext(), roomID)
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="data-room-%d-activity.csv"`, roomID))
	return c.Send(payload)
}

func (h *ActivityHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("activity request failed")
	return handleServiceError(c, err)
}
