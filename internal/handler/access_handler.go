package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// AccessHandler wires access-grant HTTP routes under a data room.
type AccessHandler struct {
	service service.AccessService
	logger  zerolog.Logger
}

// NewAccessHandler constructs the handler.
func NewAccessHandler(service service.AccessService, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		service: service,
		logger:  logger.With().Str("component", "access_handler").Logger(),
	}
}

// Register attaches grant endpoints to the router group.
func (h *AccessHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.grant)
	router.Delete("/:grantID", h.revoke)
}

func (h *AccessHandler) list(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	includeRevoked := c.QueryBool("include_revoked", false)

	grants, err := h.service.ListGrants(c.UserContext(), roomID, userIDFromContext(c), includeRevoked)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "grants retrieved", grants)
}

func (h *AccessHandler) grant(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AccessGrantCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grant, err := h.service.Grant(c.UserContext(), roomID, userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "access granted", grant)
}

func (h *AccessHandler) revoke(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	grantID, err := parseUintParam(c, "grantID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Revoke(c.UserContext(), roomID, userIDFromContext(c), grantID); err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "access revoked", fiber.Map{"id": grantID})
}

func (h *AccessHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("access request failed")
	return handleServiceError(c, err)
}
