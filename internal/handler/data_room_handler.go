package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/dto"
	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// DataRoomHandler wires data-room HTTP routes.
type DataRoomHandler struct {
	service service.DataRoomService
	logger  zerolog.Logger
}

// NewDataRoomHandler constructs the handler.
func NewDataRoomHandler(service service.DataRoomService, logger zerolog.Logger) *DataRoomHandler {
	return &DataRoomHandler{
		service: service,
		logger:  logger.With().Str("component", "data_room_handler").Logger(),
	}
}

// Register attaches data-room endpoints to the router group.
func (h *DataRoomHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:roomID", h.get)
	router.Patch("/:roomID", h.update)
	router.Delete("/:roomID", h.delete)
	router.Get("/:roomID/summary", h.summary)
}

func (h *DataRoomHandler) list(c *fiber.Ctx) error {
	pagination, err := paginationFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.DataRoomFilter{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		Sort:       c.Query("sort"),
		Pagination: pagination,
	}

	rooms, err := h.service.List(c.UserContext(), userIDFromContext(c), filter)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "data rooms retrieved", rooms)
}

func (h *DataRoomHandler) get(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	room, err := h.service.Get(c.UserContext(), roomID, userIDFromContext(c))
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "data room retrieved", room)
}

func (h *DataRoomHandler) create(c *fiber.Ctx) error {
	var payload dto.DataRoomCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "data room created", room)
}

func (h *DataRoomHandler) update(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DataRoomUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.Update(c.UserContext(), roomID, userIDFromContext(c), payload)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "data room updated", room)
}

func (h *DataRoomHandler) delete(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), roomID, userIDFromContext(c)); err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "data room deleted", fiber.Map{"id": roomID})
}

func (h *DataRoomHandler) summary(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.service.Summary(c.UserContext(), roomID, userIDFromContext(c))
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "data room summary", summary)
}

func (h *DataRoomHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("data room request failed")
	return handleServiceError(c, err)
}
