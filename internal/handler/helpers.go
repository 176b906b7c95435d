package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func paginationFromQuery(c *fiber.Ctx) (repository.Pagination, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return repository.Pagination{}, errors.New("invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return repository.Pagination{}, errors.New("invalid page_size")
	}
	return repository.Pagination{Page: page, PageSize: pageSize}, nil
}

// handleServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is a 500 with no internal detail leaked to the client.
func handleServiceError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendValidationError(c, "validation failed", validationErrors.Error())
	}

	if invalid, ok := service.AsFieldValidation(err); ok {
		return utils.SendValidationError(c, "validation failed", invalid.Error())
	}

	if rateLimited, ok := service.AsRateLimited(err); ok {
		return utils.SendRateLimited(c, "recompute is on cooldown", rateLimited.RetryAfterSeconds)
	}

	switch {
	case errors.Is(err, service.ErrDataRoomNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "data room not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "document not found")
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrWorkflowNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "workflow not found")
	case errors.Is(err, service.ErrStepNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "workflow step not found")
	case errors.Is(err, service.ErrApprovalNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "approval not found")
	case errors.Is(err, service.ErrGrantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grant not found")
	case errors.Is(err, service.ErrRunNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "run not found")
	case errors.Is(err, service.ErrImportJobNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "import job not found")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrRunInProgress):
		return utils.SendError(c, fiber.StatusConflict, "a run is already in progress")
	case errors.Is(err, service.ErrAlreadyDecided):
		return utils.SendError(c, fiber.StatusConflict, "approval already decided")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "invalid status transition")
	case errors.Is(err, service.ErrFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds the upload limit")
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type not allowed")
	case errors.Is(err, service.ErrStorageUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "document storage is not configured")
	case errors.Is(err, service.ErrEmptyImport):
		return utils.SendError(c, fiber.StatusBadRequest, "import file contains no rows")
	default:
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
