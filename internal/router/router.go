package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oppspot/oppspot-api/internal/config"
	"github.com/oppspot/oppspot-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DataRoomHandler  *handler.DataRoomHandler
	DocumentHandler  *handler.DocumentHandler
	TaskHandler      *handler.TaskHandler
	WorkflowHandler  *handler.WorkflowHandler
	ApprovalHandler  *handler.ApprovalHandler
	AccessHandler    *handler.AccessHandler
	ActivityHandler  *handler.ActivityHandler
	RecomputeHandler *handler.RecomputeHandler
	FeedHandler      *handler.FeedHandler
	ImportHandler    *handler.ImportHandler
	ProfileHandler   *handler.ProfileHandler
	CronHandler      *handler.CronHandler
	JWTMiddleware    fiber.Handler
	CronMiddleware   fiber.Handler
	UploadLimiter    fiber.Handler
	ImportLimiter    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	authed := api.Group("", jwtMiddleware)

	if deps.DataRoomHandler != nil {
		rooms := authed.Group("/data-rooms")
		deps.DataRoomHandler.Register(rooms)

		room := authed.Group("/data-rooms/:roomID")
		if deps.DocumentHandler != nil {
			if deps.UploadLimiter != nil {
				room.Post("/documents", deps.UploadLimiter)
			}
			deps.DocumentHandler.Register(room.Group("/documents"))
		}
		if deps.TaskHandler != nil {
			deps.TaskHandler.Register(room.Group("/tasks"))
		}
		if deps.WorkflowHandler != nil {
			deps.WorkflowHandler.Register(room.Group("/workflows"))
		}
		if deps.ApprovalHandler != nil {
			deps.ApprovalHandler.Register(room.Group("/approvals"))
		}
		if deps.AccessHandler != nil {
			deps.AccessHandler.Register(room.Group("/grants"))
		}
		if deps.ActivityHandler != nil {
			deps.ActivityHandler.Register(room.Group("/activity"))
		}
		if deps.RecomputeHandler != nil {
			deps.RecomputeHandler.Register(room.Group("/red-flags"))
		}
		if deps.FeedHandler != nil {
			deps.FeedHandler.Register(room.Group("/feed"))
		}
	}

	if deps.ImportHandler != nil {
		if deps.ImportLimiter != nil {
			authed.Post("/imports", deps.ImportLimiter)
		}
		deps.ImportHandler.Register(authed)
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(authed.Group("/profile"))
	}

	if deps.CronHandler != nil {
		cronMiddleware := deps.CronMiddleware
		if cronMiddleware == nil {
			cronMiddleware = func(c *fiber.Ctx) error { return c.Next() }
		}
		cron := api.Group("/cron", cronMiddleware)
		deps.CronHandler.Register(cron)
	}
}
