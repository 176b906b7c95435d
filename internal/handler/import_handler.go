package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// ImportHandler wires company import and catalogue routes.
type ImportHandler struct {
	service service.ImportService
	logger  zerolog.Logger
}

// NewImportHandler constructs the handler.
func NewImportHandler(service service.ImportService, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		service: service,
		logger:  logger.With().Str("component", "import_handler").Logger(),
	}
}

// Register attaches import endpoints to the router group.
func (h *ImportHandler) Register(router fiber.Router) {
	router.Post("/imports", h.start)
	router.Get("/imports/:jobID", h.get)
	router.Get("/companies", h.listCompanies)
}

func (h *ImportHandler) start(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	src, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer src.Close()

	accepted, err := h.service.StartImport(c.UserContext(), userIDFromContext(c), file.Filename, src)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "import started", accepted)
}

func (h *ImportHandler) get(c *fiber.Ctx) error {
	jobID := c.Params("jobID")

	job, err := h.service.GetJob(c.UserContext(), userIDFromContext(c), jobID)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "import job retrieved", job)
}

func (h *ImportHandler) listCompanies(c *fiber.Ctx) error {
	pagination, err := paginationFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := repository.CompanyFilter{
		Search:     c.Query("search"),
		Sector:     c.Query("sector"),
		Country:    c.Query("country"),
		Pagination: pagination,
	}

	companies, err := h.service.ListCompanies(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.SendSuccess(c, "companies retrieved", companies)
}

func (h *ImportHandler) fail(c *fiber.Ctx, err error) error {
	h.logger.Debug().Err(err).Msg("import request failed")
	return handleServiceError(c, err)
}
