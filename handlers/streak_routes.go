package handlers

import (
	"ranking-service/middleware"
	"ranking-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStreakRoutes(app *fiber.App, streakService *services.StreakService) {
	secured := app.Group("/user", middleware.UserContextMiddleware())

	secured.Get("/streaks", streakService.GetStreaks)
	secured.Post("/streaks", streakService.PostStreaks)
}
