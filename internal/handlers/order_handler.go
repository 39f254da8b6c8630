package handlers

import (
	"errors"

	"vapestore/internal/middleware"
	"vapestore/internal/models"
	"vapestore/internal/repositories"
	"vapestore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders. Checkout creates orders;
// this handler only exposes them and their fulfillment transitions.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the order routes. Reads require authentication
// (customers see their own orders, admins see all); status updates and
// deletion are admin only.
func (h *OrderHandler) RegisterRoutes(authed fiber.Router, admin fiber.Router) {
	orderRoutes := authed.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)

	adminRoutes := admin.Group("/orders")
	adminRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	adminRoutes.Delete("/:id", h.HandleDeleteOrder)
}

// HandleGetOrders returns all orders for admins, or the caller's own orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var (
		orders []models.Order
		err    error
	)
	if role, _ := c.Locals("role").(string); role == models.RoleAdmin {
		orders, err = h.service.GetAllOrders()
	} else {
		orders, err = h.service.GetOrdersByOwner(middleware.OwnerID(c))
	}
	if err != nil {
		h.logger.Error("failed to get orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Customers can only read their
// own orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}

	role, _ := c.Locals("role").(string)
	if role != models.RoleAdmin && order.OwnerID != middleware.OwnerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not your order",
		})
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus updates the fulfillment status of an order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	if err := h.service.UpdateOrderStatus(c.Params("id"), updateData.Status); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not update order status",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
	})
}

// HandleDeleteOrder deletes an unpaid pending order as administrative cleanup.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.Params("id")); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not delete order",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}
