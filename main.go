package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"typing-duel-system/handlers"
	"typing-duel-system/middleware"
	"typing-duel-system/models"
	"typing-duel-system/services"
	"typing-duel-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// Only Gateway requests allowed — no exceptions.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-User-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.GameHistory{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Redis backs only the cosmetic WPM leaderboard; the service runs
	// without it.
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("redis unreachable, leaderboard disabled: %v", err)
			rdb = nil
		}
		cancel()
	} else {
		log.Println("REDIS_ADDR not set, leaderboard disabled")
	}

	queueService := services.NewQueueService(db)
	gameService := services.NewGameService(db)
	botService := services.NewBotService(db)
	matcherService := services.NewMatcherService(db, botService)
	leaderboardService := services.NewLeaderboardService(db, rdb)

	if _, err := botService.EnsureBotUser(); err != nil {
		log.Fatal("failed to provision bot account:", err)
	}

	botRunner := workers.NewBotProgressRunner(gameService)
	gameService.BotRunner = botRunner
	gameService.WinRecorder = leaderboardService

	matcherService.StartMatchScheduler()

	handlers.SetupDuelRoutes(app, queueService, gameService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("Server running on http://localhost:5300")
	log.Println("Queue matcher running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	botRunner.Shutdown()
	_ = app.Shutdown()
}
