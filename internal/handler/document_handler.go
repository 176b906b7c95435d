package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// DocumentHandler wires document HTTP routes under a data room.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches document endpoints to the router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:documentID", h.get)
	router.Patch("/:documentID", h.update)
	router.Delete("/:documentID", h.delete)
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	pagination, err := paginationFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.DocumentFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
		Pagination: pagination,
	}

	documents, err := h.service.List(c.UserContext(), roomID, userIDFromContext(c), filter)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "documents retrieved", documents)
}

func (h *DocumentHandler) get(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	documentID, err := parseUintParam(c, "documentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	document, err := h.service.Get(c.UserContext(), roomID, userIDFromContext(c), documentID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "document retrieved", document)
}

func (h *DocumentHandler) create(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.DocumentCreateRequest{
		Name:     c.FormValue("name"),
		Category: c.FormValue("category"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}
	if payload.Name == "" {
		payload.Name = file.Filename
	}

	document, err := h.service.Create(c.UserContext(), roomID, userIDFromContext(c), payload, file)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", document)
}

func (h *DocumentHandler) update(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	documentID, err := parseUintParam(c, "documentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DocumentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	document, err := h.service.Update(c.UserContext(), roomID, userIDFromContext(c), documentID, payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "document updated", document)
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	documentID, err := parseUintParam(c, "documentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), roomID, userIDFromContext(c), documentID); err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "document deleted", fiber.Map{"id": documentID})
}

func (h *DocumentHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("document request failed")
	return handleServiceError(c, err)
}
