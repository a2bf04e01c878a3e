package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopmesh/internal/models"
)

// localsUserKey is where the middleware stores the confirmed identity.
// UserFromContext is the only sanctioned read path.
const localsUserKey = "authUser"

// TokenVerifier confirms a bearer token and resolves its identity.
// The production implementation is clients.AuthClient, a remote call
// into the auth service.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*models.PublicUser, error)
}

// Authenticate is a Fiber middleware guarding protected routes. It
// extracts the bearer token, verifies it through the verifier, and
// attaches the confirmed identity to the request. Every failure mode
// (absent header, malformed scheme, invalid token, network error,
// timeout) ends the request with a 401. It never proceeds without a
// confirmed identity.
func Authenticate(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		user, err := verifier.VerifyToken(c.UserContext(), parts[1])
		if err != nil {
			log.Printf("Token verification failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication failed",
			})
		}

		c.Locals(localsUserKey, user)
		return c.Next()
	}
}

// UserFromContext returns the identity attached by Authenticate.
func UserFromContext(c *fiber.Ctx) (*models.PublicUser, bool) {
	user, ok := c.Locals(localsUserKey).(*models.PublicUser)
	return user, ok
}
