package handlers

import (
	"ranking-service/middleware"
	"ranking-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// 🔓 Public read — user position is attached when the gateway forwards an identity
	app.Get("/leaderboard", middleware.OptionalUserContext(), leaderboardService.GetLeaderboard)

	// 🔐 Authenticated
	app.Get("/leaderboard/me", middleware.UserContextMiddleware(), leaderboardService.GetMyPosition)

	// 🔒 Scheduler/admin trigger — service token only
	app.Post("/leaderboard/update", middleware.ServiceAuthMiddleware(), leaderboardService.TriggerUpdate)
}
