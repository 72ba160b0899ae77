package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ServiceAuthMiddleware guards the update trigger: only callers holding the
// service token (the scheduler or admin tooling) may run the engine. The token
// is accepted as a Bearer Authorization header or a raw Apikey header.
func ServiceAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("RANKING_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ RANKING_SERVICE_TOKEN is not set — trigger endpoint cannot authenticate callers")
	}

	return func(c *fiber.Ctx) error {
		token := c.Get("Apikey")
		if token == "" {
			authHeader := c.Get("Authorization")
			token = strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				// no "Bearer " prefix — accept the raw header value
				token = authHeader
			}
		}

		if token == "" {
			log.Printf("🚫 [SERVICE_AUTH] Missing token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "service authentication token missing",
			})
		}
		if token != expectedToken {
			log.Printf("❌ [SERVICE_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}
		return c.Next()
	}
}
