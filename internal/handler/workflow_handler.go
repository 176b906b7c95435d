package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// WorkflowHandler wires workflow HTTP routes under a data room.
type WorkflowHandler struct {
	service service.WorkflowService
	logger  zerolog.Logger
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(service service.WorkflowService, logger zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: service,
		logger:  logger.With().Str("component", "workflow_handler").Logger(),
	}
}

// Register attaches workflow endpoints to the router group.
func (h *WorkflowHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:workflowID", h.get)
	router.Patch("/:workflowID/steps/:stepID", h.advanceStep)
}

func (h *WorkflowHandler) list(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	workflows, err := h.service.List(c.UserContext(), roomID, userIDFromContext(c))
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "workflows retrieved", workflows)
}

func (h *WorkflowHandler) get(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	workflowID, err := parseUintParam(c, "workflowID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	workflow, err := h.service.Get(c.UserContext(), roomID, userIDFromContext(c), workflowID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "workflow retrieved", workflow)
}

func (h *WorkflowHandler) create(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.WorkflowCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	workflow, err := h.service.Create(c.UserContext(), roomID, userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "workflow created", workflow)
}

func (h *WorkflowHandler) advanceStep(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	workflowID, err := parseUintParam(c, "workflowID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	stepID, err := parseUintParam(c, "stepID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.WorkflowStepAdvanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	workflow, err := h.service.AdvanceStep(c.UserContext(), roomID, userIDFromContext(c), workflowID, stepID, payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "workflow step updated", workflow)
}

func (h *WorkflowHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("workflow request failed")
	return handleServiceError(c, err)
}
