package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ranking-service/handlers"
	"ranking-service/models"
	"ranking-service/services"
	"ranking-service/utils"
	"ranking-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// Permissive CORS: the trigger endpoint is called cross-origin by admin
	// tooling, so any origin is accepted and OPTIONS preflight is handled here.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Authorization, X-Client-Info, Apikey, Content-Type",
		MaxAge:       86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.UserScore{},
		&models.SessionLog{},
		&models.UserStreak{},
		&models.Profile{},
		&models.LeaderboardCacheEntry{},
		&models.LeaderboardHistoryEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	leaderboardService := services.NewLeaderboardService(db)
	streakService := services.NewStreakService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Profile mirror sync (fills usernames on cache rows) ---
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL != "" {
		serviceToken := os.Getenv("RANKING_SERVICE_TOKEN")
		syncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  PROFILE_SERVICE_URL not set — cache rows will carry placeholder usernames")
	}

	// --- Daily leaderboard recompute ---
	cronSpec := os.Getenv("LEADERBOARD_CRON")
	if cronSpec == "" {
		cronSpec = "0 3 * * *" // 03:00 UTC daily
	}
	sched, err := leaderboardService.StartDailyScheduler(ctx, cronSpec)
	if err != nil {
		log.Fatal("failed to start leaderboard scheduler:", err)
	}

	// Expired read-cache entries are swept in the background
	go leaderboardService.Cache.Sweep(ctx, time.Minute)

	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupStreakRoutes(app, streakService)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Ranking service running on http://localhost:%s", port)
	log.Printf("✅ Leaderboard scheduler running (cron: %s)", cronSpec)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = sched.Shutdown()
	_ = app.Shutdown()
}
