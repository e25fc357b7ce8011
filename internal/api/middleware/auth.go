package middleware

import (
	"crypto/subtle"
	"strings"

	fiber "github.com/gofiber/fiber/v2"
)

// ManagementAuth guards management endpoints behind a bearer token. The token
// is the deployment's management capability; webhook routes are authenticated
// by signature instead and must not use this middleware.
func ManagementAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "management token not configured",
			})
		}

		header := c.Get(fiber.HeaderAuthorization)
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "invalid management token",
			})
		}

		return c.Next()
	}
}
