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
	"shopmesh/pkg/events"
)

const verifyClientTimeout = 10 * time.Second

func main() {
	cfg := config.Load("3003", "order_db")

	// --- Database ---
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Order Service: database connection failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		log.Fatalf("Order Service: migration failed: %v", err)
	}

	// --- Event publisher (optional) ---
	var publisher *events.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err = events.NewPublisher(events.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Order Service: RabbitMQ unavailable, continuing without events: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// --- Wiring ---
	orderRepo := repositories.NewGORMOrderRepository(db)
	orderService := services.NewOrderService(orderRepo, publisher)
	orderHandler := handlers.NewOrderHandler(orderService)
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
			"service":   "order-service",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api")
	orderHandler.RegisterRoutes(api, middleware.Authenticate(verifier))

	// --- Start & graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Order Service running on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Order Service failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down order service...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Order service stopped")
}
