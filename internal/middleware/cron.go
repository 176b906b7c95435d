package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oppspot/oppspot-api/internal/utils"
)

// CronProtected guards scheduler-only endpoints with a shared bearer secret.
// Any mismatch, including a missing header, is a plain 401 with no detail
// about which part failed.
func CronProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		authorization := c.Get("Authorization")
		const bearer = "Bearer "
		if !strings.HasPrefix(authorization, bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		token := strings.TrimSpace(authorization[len(bearer):])
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		return c.Next()
	}
}
