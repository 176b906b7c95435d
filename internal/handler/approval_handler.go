package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// ApprovalHandler wires approval HTTP routes under a data room.
type ApprovalHandler struct {
	service service.ApprovalService
	logger  zerolog.Logger
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(service service.ApprovalService, logger zerolog.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		service: service,
		logger:  logger.With().Str("component", "approval_handler").Logger(),
	}
}

// Register attaches approval endpoints to the router group.
func (h *ApprovalHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/:approvalID/decision", h.decide)
}

func (h *ApprovalHandler) list(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	pagination, err := paginationFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.ApprovalFilter{
		Status:     c.Query("status"),
		Pagination: pagination,
	}
	if approver, err := parseQueryInt(c, "approver_id"); err == nil && approver > 0 {
		id := uint(approver)
		filter.ApproverID = &id
	}

	approvals, err := h.service.List(c.UserContext(), roomID, userIDFromContext(c), filter)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "approvals retrieved", approvals)
}

func (h *ApprovalHandler) create(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApprovalCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	approval, err := h.service.Create(c.UserContext(), roomID, userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "approval requested", approval)
}

func (h *ApprovalHandler) decide(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	approvalID, err := parseUintParam(c, "approvalID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApprovalDecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	approval, err := h.service.Decide(c.UserContext(), roomID, userIDFromContext(c), approvalID, payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "approval decided", approval)
}

func (h *ApprovalHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("approval request failed")
	return handleServiceError(c, err)
}
