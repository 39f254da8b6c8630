package handlers

import (
	"errors"

	"vapestore/internal/middleware"
	"vapestore/internal/models"
	"vapestore/internal/services"
	"vapestore/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler handles HTTP requests for initiating a checkout.
type CheckoutHandler struct {
	service *services.CheckoutService
	logger  *zap.Logger
	metrics *metrics.StoreMetrics
}

// NewCheckoutHandler creates a new CheckoutHandler. metrics may be nil.
func NewCheckoutHandler(service *services.CheckoutService, logger *zap.Logger, m *metrics.StoreMetrics) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

// RegisterRoutes registers the checkout route with the Fiber app. The route
// should be mounted behind optional authentication: authenticated users
// check out under their account, everyone else under a generated guest id.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout validates the request body and runs the checkout workflow,
// returning the hosted payment page URL on success.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	owner := middleware.OwnerID(c)
	if owner == "" {
		owner = models.NewGuestOwnerID()
	}

	result, err := h.service.InitiateCheckout(c.Context(), owner, input)
	if err != nil {
		h.countCheckout(err)
		h.logger.Warn("checkout rejected", zap.String("owner", owner), zap.Error(err))
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Checkout failed",
			"error":   err.Error(),
		})
	}

	h.countCheckout(nil)
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *CheckoutHandler) countCheckout(err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, services.ErrValidation):
		result = "validation"
	case errors.Is(err, services.ErrConflict):
		result = "conflict"
	case errors.Is(err, services.ErrGateway):
		result = "gateway"
	default:
		result = "error"
	}
	h.metrics.Checkouts.WithLabelValues(result).Inc()
}
