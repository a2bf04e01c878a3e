package gateway

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// Per-backend forwarding timeouts. Auth gets a longer budget because
// bcrypt makes registration and login slow under load.
const (
	authTimeout = 60 * time.Second
	crudTimeout = 30 * time.Second
)

// Config holds the backend base URLs.
type Config struct {
	AuthServiceURL  string
	UserServiceURL  string
	OrderServiceURL string
}

// New builds the gateway Fiber app: a stateless router that forwards
// by path prefix, preserving paths verbatim. Backend responses pass
// through untouched, error statuses included; 503 is reserved for the
// backend being unreachable or timing out.
func New(cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "OK",
			"service":   "api-gateway",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	app.All("/api/auth/*", forward(cfg.AuthServiceURL, "Auth", authTimeout))
	app.All("/api/users/*", forward(cfg.UserServiceURL, "User", crudTimeout))
	app.All("/api/orders/*", forward(cfg.OrderServiceURL, "Order", crudTimeout))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})

	return app
}

// forward proxies the request to target, mapping proxy-level failure
// to a uniform 503.
func forward(target, name string, timeout time.Duration) fiber.Handler {
	base := strings.TrimRight(target, "/")
	return func(c *fiber.Ctx) error {
		url := base + c.OriginalURL()
		if err := proxy.DoTimeout(c, url, timeout); err != nil {
			log.Printf("[Gateway] Error proxying to %s service: %v", name, err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   name + " service unavailable",
				"message": err.Error(),
			})
		}
		c.Response().Header.Del(fiber.HeaderServer)
		return nil
	}
}
