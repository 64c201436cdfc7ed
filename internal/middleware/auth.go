// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyRequired guards machine-to-machine endpoints (e.g. the scheduled
// sweep trigger) with a static key carried in the x-api-key header.
// An empty configured key disables the endpoint entirely.
func APIKeyRequired(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "endpoint disabled: no API key configured",
			})
		}

		provided := c.Get("x-api-key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid API key",
			})
		}

		return c.Next()
	}
}
