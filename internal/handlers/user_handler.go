package handlers

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopmesh/internal/middleware"
	"shopmesh/internal/services"
)

// UserHandler handles HTTP requests for the identity mirror.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. The sync intake stays
// outside the authenticated group: it is a server-to-server call from
// the auth service, trusted by network reachability alone.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/sync", h.HandleSync)

	protected := userRoutes.Group("", auth)
	protected.Get("/me", h.HandleGetMe)
	protected.Get("/:id", h.HandleGetByID)
	protected.Get("/", h.HandleGetAll)
	protected.Put("/:id", h.HandleUpdate)
}

// SyncRequest represents the replication intake body.
type SyncRequest struct {
	ID        uint   `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// HandleSync upserts a replicated identity into the mirror store.
func (h *UserHandler) HandleSync(c *fiber.Ctx) error {
	var req SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "User id and email are required",
		})
	}

	user, err := h.userService.SyncUser(req.ID, req.Email, req.FirstName, req.LastName)
	if err != nil {
		log.Printf("User sync error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User synced successfully",
		"user":    user,
	})
}

// HandleGetMe returns the mirror row for the authenticated caller.
// The row may be absent if replication never landed for this identity.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	caller, ok := middleware.UserFromContext(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return h.getUser(c, caller.ID)
}

// HandleGetByID returns a mirror row by id.
func (h *UserHandler) HandleGetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}
	return h.getUser(c, uint(id))
}

func (h *UserHandler) getUser(c *fiber.Ctx, id uint) error {
	user, err := h.userService.GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		log.Printf("Get user error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(user)
}

// HandleGetAll returns every mirror row.
func (h *UserHandler) HandleGetAll(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers()
	if err != nil {
		log.Printf("Get all users error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"users": users})
}

// UpdateUserRequest carries a partial name update; absent fields keep
// their stored values.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// HandleUpdate applies a partial update to a mirror row.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.userService.UpdateUser(uint(id), req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		log.Printf("Update user error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}
