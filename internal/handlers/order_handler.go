package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"shopmesh/internal/middleware"
	"shopmesh/internal/models"
	"shopmesh/internal/services"
)

// OrderHandler handles HTTP requests for orders. Every route requires
// an authenticated identity in the request context.
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers the order routes behind the auth middleware.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreate)
	orderRoutes.Get("/me", h.HandleGetMine)
	orderRoutes.Get("/user/:userId", h.HandleGetUserOrders)
	orderRoutes.Get("/:id", h.HandleGetByID)
	orderRoutes.Put("/:id/status", h.HandleUpdateStatus)
	orderRoutes.Put("/:id", h.HandleUpdate)
}

func callerFromContext(c *fiber.Ctx) (*models.PublicUser, error) {
	caller, ok := middleware.UserFromContext(c)
	if !ok {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return caller, nil
}

// OrderRequest represents the body for order creation and edits.
type OrderRequest struct {
	Items       models.OrderItems `json:"items"`
	TotalAmount float64           `json:"totalAmount"`
}

// HandleCreate creates a new order owned by the caller.
func (h *OrderHandler) HandleCreate(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if caller == nil {
		return err
	}

	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Order items are required",
		})
	}

	order, err := h.orderService.CreateOrder(caller.ID, req.Items, req.TotalAmount)
	if err != nil {
		log.Printf("Create order error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

// HandleGetMine returns the caller's orders, newest first.
func (h *OrderHandler) HandleGetMine(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if caller == nil {
		return err
	}

	orders, err := h.orderService.ListOrders(caller.ID)
	if err != nil {
		log.Printf("Get my orders error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetUserOrders returns a user's orders. Callers may only list
// their own.
func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if caller == nil {
		return err
	}

	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}
	if uint(userID) != caller.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied",
		})
	}

	orders, err := h.orderService.ListOrders(uint(userID))
	if err != nil {
		log.Printf("Get user orders error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetByID returns a single order owned by the caller.
func (h *OrderHandler) HandleGetByID(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if caller == nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	order, err := h.orderService.GetOrder(uint(id), caller.ID)
	if err != nil {
		return h.orderError(c, err, "Get order")
	}
	return c.JSON(order)
}

// StatusRequest represents the body for a status update.
type StatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus changes an order's status.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if caller == nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	order, err := h.orderService.UpdateStatus(uint(id), caller.ID, req.Status)
	if err != nil {
		return h.orderError(c, err, "Update order status")
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"order":   order,
	})
}

// HandleUpdate replaces an order's items and total.
func (h *OrderHandler) HandleUpdate(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if caller == nil {
		return err
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	var req OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Order items are required",
		})
	}

	order, err := h.orderService.UpdateItems(uint(id), caller.ID, req.Items, req.TotalAmount)
	if err != nil {
		return h.orderError(c, err, "Update order")
	}

	return c.JSON(fiber.Map{
		"message": "Order updated successfully",
		"order":   order,
	})
}

// orderError maps service failures to HTTP statuses.
func (h *OrderHandler) orderError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Order not found",
		})
	case errors.Is(err, services.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied",
		})
	case errors.Is(err, services.ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status",
		})
	case errors.Is(err, services.ErrOrderLocked):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot edit cancelled or delivered orders",
		})
	default:
		log.Printf("%s error: %v", op, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
