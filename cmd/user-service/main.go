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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"shopmesh/internal/clients"
	"shopmesh/internal/config"
	"shopmesh/internal/database"
	"shopmesh/internal/handlers"
	"shopmesh/internal/middleware"
	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
	"shopmesh/internal/services"
)

const verifyClientTimeout = 10 * time.Second

func main() {
	cfg := config.Load("3002", "user_db")

	// --- Database ---
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("User Service: database connection failed: %v", err)
	}
	if err := db.AutoMigrate(&models.MirrorUser{}); err != nil {
		log.Fatalf("User Service: migration failed: %v", err)
	}

	// --- Wiring ---
	mirrorRepo := repositories.NewGORMMirrorRepository(db)
	userService := services.NewUserService(mirrorRepo)
	userHandler := handlers.NewUserHandler(userService)
	verifier := clients.NewAuthClient(cfg.AuthServiceURL, verifyClientTimeout)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"service":   "user-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	userHandler.RegisterRoutes(api, middleware.Authenticate(verifier))

	// --- Start & graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("User Service running on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("User Service failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down user service...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("User service stopped")
}
