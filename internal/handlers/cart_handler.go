package handlers

import (
	"vapestore/internal/middleware"
	"vapestore/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service *services.CartService
	logger  *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. All routes
// require authentication; guest carts live on the client.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/", h.HandleAddItem)
	cartRoutes.Delete("/", h.HandleRemoveItem)
}

// CartItemRequest identifies one cart line by product and variant.
type CartItemRequest struct {
	ProductID        string `json:"product_id"`
	Flavor           string `json:"flavor"`
	NicotineStrength int    `json:"nicotine_strength"`
	SelectedImage    string `json:"selected_image"`
}

// HandleGetCart returns the caller's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.service.GetCart(middleware.OwnerID(c))
	if err != nil {
		h.logger.Error("failed to get cart", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}

// HandleAddItem adds one unit of a product variant to the caller's cart and
// returns the updated cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required",
		})
	}

	items, err := h.service.AddItem(middleware.OwnerID(c), req.ProductID, req.Flavor, req.NicotineStrength, req.SelectedImage)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}

// HandleRemoveItem removes one unit of a product variant from the caller's
// cart and returns the updated cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	items, err := h.service.RemoveItem(middleware.OwnerID(c), req.ProductID, req.Flavor, req.NicotineStrength)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not remove item from cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}
