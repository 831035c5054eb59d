package handlers

import (
	"typing-duel-system/middleware"
	"typing-duel-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupDuelRoutes wires the queue and match-lifecycle endpoints. All of
// them need the gateway's user context.
func SetupDuelRoutes(app *fiber.App, queueService *services.QueueService, gameService *services.GameService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/users/login", queueService.Login)

	secured.Post("/queue", queueService.EnterQueue)
	secured.Delete("/queue", queueService.ExitQueue)

	secured.Get("/duels/current", queueService.GetCurrentMatch)
	secured.Post("/duels/accept", gameService.AcceptMatch)
	secured.Post("/duels/reject", gameService.RejectMatch)
	secured.Post("/duels/steps", gameService.ReportStep)
	secured.Post("/duels/finish", gameService.FinishMatch)
}

// SetupLeaderboardRoutes wires the public leaderboard read.
func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	app.Get("/leaderboard/wpm", leaderboardService.GetTopWPM)
}
