package middleware

import (
	"crypto/hmac"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// AdminAuth gates the admin routes behind a static bearer token. This is
// operational endpoint gating, not a user authentication system.
func AdminAuth(token string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "admin API disabled: no ADMIN_TOKEN configured"})
		}

		var presented string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				presented = parts[1]
			}
		}

		if !hmac.Equal([]byte(presented), []byte(token)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
