package handlers

import (
	"vapestore/internal/services"
	"vapestore/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHandler handles the payment processor's webhook and the
// client-initiated confirmation poll.
type PaymentHandler struct {
	service *services.PaymentService
	logger  *zap.Logger
	metrics *metrics.StoreMetrics
}

// NewPaymentHandler creates a new PaymentHandler. metrics may be nil.
func NewPaymentHandler(service *services.PaymentService, logger *zap.Logger, m *metrics.StoreMetrics) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payment-webhook", h.HandleWebhook)
	router.Post("/payment-confirm", h.HandleConfirm)
}

// HandleWebhook receives a signed event from the payment processor. The raw
// body is passed through untouched for signature verification. Once the
// signature verifies, the response is always 200: the processor retries on
// non-2xx and none of the post-verification failures are retriable.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	outcome, err := h.service.HandleWebhook(c.Body(), c.Get("Stripe-Signature"))
	if h.metrics != nil {
		h.metrics.WebhookEvents.WithLabelValues(string(outcome)).Inc()
	}
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Webhook rejected",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// ConfirmRequest is the body of the client-initiated confirmation call.
type ConfirmRequest struct {
	SessionID string `json:"session_id"`
}

// HandleConfirm re-verifies the session with the processor and settles the
// order if the payment went through.
func (h *PaymentHandler) HandleConfirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.ConfirmPayment(c.Context(), req.SessionID); err != nil {
		h.logger.Warn("payment confirmation failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Payment not completed",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Payment verified and order updated"})
}
