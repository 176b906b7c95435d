package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// RecomputeHandler wires red-flag recompute routes under a data room. A
// trigger always answers immediately: 202 with a poll URL, 429 while the
// cooldown is in effect, or 409 when a run is still going.
type RecomputeHandler struct {
	service service.RecomputeService
	logger  zerolog.Logger
}

// NewRecomputeHandler constructs the handler.
func NewRecomputeHandler(service service.RecomputeService, logger zerolog.Logger) *RecomputeHandler {
	return &RecomputeHandler{
		service: service,
		logger:  logger.With().Str("component", "recompute_handler").Logger(),
	}
}

// Register attaches recompute endpoints to the router group.
func (h *RecomputeHandler) Register(router fiber.Router) {
	router.Post("/recompute", h.trigger)
	router.Get("/runs/:runID", h.get)
	router.Post("/runs/:runID/cancel", h.cancel)
}

func (h *RecomputeHandler) trigger(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	force := c.QueryBool("force", false)

	accepted, err := h.service.Trigger(c.UserContext(), roomID, userIDFromContext(c), force)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "recompute started", accepted)
}

func (h *RecomputeHandler) get(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	runID := c.Params("runID")

	run, err := h.service.Get(c.UserContext(), roomID, userIDFromContext(c), runID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "run retrieved", run)
}

func (h *RecomputeHandler) cancel(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	runID := c.Params("runID")

	run, err := h.service.Cancel(c.UserContext(), roomID, userIDFromContext(c), runID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "run cancelled", run)
}

func (h *RecomputeHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("recompute request failed")
	return handleServiceError(c, err)
}
