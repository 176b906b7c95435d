package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/repository"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// CronHandler hosts the scheduler-only maintenance endpoints. The routes sit
// behind the shared-secret middleware, not user auth.
type CronHandler struct {
	grants    repository.AccessGrantRepository
	imports   service.ImportService
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCronHandler constructs the handler.
func NewCronHandler(grants repository.AccessGrantRepository, imports service.ImportService, retention time.Duration, logger zerolog.Logger) *CronHandler {
	return &CronHandler{
		grants:    grants,
		imports:   imports,
		retention: retention,
		logger:    logger.With().Str("component", "cron_handler").Logger(),
		now:       time.Now,
	}
}

// Register attaches cron endpoints to the router group.
func (h *CronHandler) Register(router fiber.Router) {
	router.Post("/expire-grants", h.expireGrants)
	router.Post("/purge-import-jobs", h.purgeImportJobs)
}

// expireGrants stamps revoked_at on grants whose expiry has passed. Expired
// grants already fail permission checks; this keeps the table tidy and makes
// the expiry visible in grant listings.
func (h *CronHandler) expireGrants(c *fiber.Ctx) error {
	revoked, err := h.grants.RevokeExpired(c.UserContext(), h.now())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to revoke expired grants")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	h.logger.Info().Int64("revoked", revoked).Msg("expired grants revoked")
	return utils.SendSuccess(c, "expired grants revoked", fiber.Map{"revoked": revoked})
}

func (h *CronHandler) purgeImportJobs(c *fiber.Ctx) error {
	purged, err := h.imports.PurgeFinished(c.UserContext(), h.retention)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to purge import jobs")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "import jobs purged", fiber.Map{"purged": purged})
}
