package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"shopmesh/internal/clients"
	"shopmesh/internal/config"
	"shopmesh/internal/database"
	"shopmesh/internal/handlers"
	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
	"shopmesh/internal/services"
	"shopmesh/internal/token"
)

const syncClientTimeout = 5 * time.Second

func main() {
	cfg := config.Load("3001", "auth_db")

	// --- Database ---
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Auth Service: database connection failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Auth Service: migration failed: %v", err)
	}

	// --- Wiring ---
	userRepo := repositories.NewGORMUserRepository(db)
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTExpiresIn)
	replicator := clients.NewUserClient(cfg.UserServiceURL, syncClientTimeout)
	authService := services.NewAuthService(userRepo, codec, replicator)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(logger.New())
	app.Use("/api", limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"service":   "auth-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)

	// --- Start & graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Auth Service running on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Auth Service failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down auth service...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Auth service stopped")
}
