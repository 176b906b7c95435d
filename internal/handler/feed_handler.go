package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oppspot/oppspot-api/internal/models"
	"github.com/oppspot/oppspot-api/internal/service"
	"github.com/oppspot/oppspot-api/internal/utils"
)

// FeedHandler streams a data room's activity over SSE.
type FeedHandler struct {
	feed      service.FeedService
	access    service.AccessChecker
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewFeedHandler constructs a handler instance.
func NewFeedHandler(feed service.FeedService, access service.AccessChecker, logger zerolog.Logger, keepAlive time.Duration) *FeedHandler {
	return &FeedHandler{
		feed:      feed,
		access:    access,
		logger:    logger.With().Str("component", "feed_handler").Logger(),
		keepAlive: keepAlive,
	}
}

// Register binds the feed routes.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Get("/stream", h.stream)
}

func (h *FeedHandler) stream(c *fiber.Ctx) error {
	roomID, err := parseUintParam(c, "roomID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.access.Require(c.UserContext(), roomID, userIDFromContext(c), models.PermissionViewer); err != nil {
		return handleServiceError(c, err)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	stream, cleanup := h.feed.Subscribe(roomID)

	keepAliveInterval := h.keepAlive
	if keepAliveInterval <= 0 {
		keepAliveInterval = 30 * time.Second
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
		}()

		ticker := time.NewTicker(keepAliveInterval / 2)
		defer ticker.Stop()

		for {
			select {
			case entry, ok := <-stream:
				if !ok {
					return
				}
				if err := writeFeedEvent(w, entry); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write feed event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write feed keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

func writeFeedEvent(w *bufio.Writer, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: activity\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
