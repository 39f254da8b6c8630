package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vapestore/internal/models"
	"vapestore/internal/repositories"
	"vapestore/pkg/payments"
	"vapestore/pkg/rabbitmq"

	"go.uber.org/zap"
)

// EventPublisher publishes order lifecycle events for downstream consumers.
type EventPublisher interface {
	PublishOrderPaid(event rabbitmq.OrderPaidEvent) error
}

// PaymentService reconciles asynchronous payment confirmations onto order
// state, exactly once. Two entry points feed it: the processor's webhook
// (HandleWebhook) and the client-initiated poll after redirect
// (ConfirmPayment). Both funnel into the same conditional state transition
// keyed on the payment session reference, so duplicate deliveries are no-ops.
type PaymentService struct {
	orderRepo        repositories.OrderRepository
	productRepo      repositories.ProductRepository
	cartRepo         repositories.CartRepository
	gateway          payments.Gateway
	events           EventPublisher
	logger           *zap.Logger
	restockOnFailure bool
}

// NewPaymentService creates a new PaymentService. events may be nil when no
// broker is configured. restockOnFailure controls whether a failed payment
// releases the order's stock reservation.
func NewPaymentService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	cartRepo repositories.CartRepository,
	gateway payments.Gateway,
	events EventPublisher,
	logger *zap.Logger,
	restockOnFailure bool,
) *PaymentService {
	return &PaymentService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		cartRepo:         cartRepo,
		gateway:          gateway,
		events:           events,
		logger:           logger,
		restockOnFailure: restockOnFailure,
	}
}

// WebhookOutcome describes what a webhook delivery did, for metrics.
type WebhookOutcome string

const (
	WebhookApplied      WebhookOutcome = "applied"
	WebhookDuplicate    WebhookOutcome = "duplicate"
	WebhookUnknown      WebhookOutcome = "unknown_session"
	WebhookIgnored      WebhookOutcome = "ignored"
	WebhookBadSignature WebhookOutcome = "bad_signature"
)

// HandleWebhook verifies and applies one webhook delivery.
//
// A signature failure returns ErrBadSignature with no state change. A
// verified event for an unknown session is logged and acknowledged as
// processed: the processor retries on non-2xx, and an unknown session will
// not become known by retrying.
func (s *PaymentService) HandleWebhook(payload []byte, signatureHeader string) (WebhookOutcome, error) {
	event, err := s.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		s.logger.Warn("webhook signature verification failed", zap.Error(err))
		return WebhookBadSignature, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	switch event.Type {
	case payments.EventSessionCompleted:
		// Delayed payment methods complete the session before the money
		// settles; the real outcome arrives later as an async success or
		// failure event. Settling here would burn the order's one
		// pending -> completed transition on an unpaid session.
		if !event.Paid {
			s.logger.Info("session completed but payment not settled, awaiting async outcome",
				zap.String("session_id", event.SessionID))
			return WebhookIgnored, nil
		}
		applied, err := s.settle(event.SessionID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn("webhook for unknown payment session",
					zap.String("session_id", event.SessionID))
				return WebhookUnknown, nil
			}
			return WebhookIgnored, err
		}
		if !applied {
			s.logger.Info("duplicate payment confirmation ignored",
				zap.String("session_id", event.SessionID))
			return WebhookDuplicate, nil
		}
		return WebhookApplied, nil
	case payments.EventSessionFailed:
		if err := s.fail(event.SessionID); err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Warn("failure webhook for unknown payment session",
					zap.String("session_id", event.SessionID))
				return WebhookUnknown, nil
			}
			return WebhookIgnored, err
		}
		return WebhookApplied, nil
	default:
		s.logger.Debug("ignoring webhook event type", zap.String("type", event.Type))
		return WebhookIgnored, nil
	}
}

// ConfirmPayment is the client-initiated confirmation after redirect. The
// client's claim is not trusted: payment status is re-verified with the
// processor before the order is touched.
func (s *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrValidation)
	}

	paid, err := s.gateway.SessionPaid(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if !paid {
		return fmt.Errorf("%w: payment not completed", ErrValidation)
	}

	if _, err := s.settle(sessionID); err != nil {
		// The caller supplied the session id; a ref we never issued is
		// bad input on this path, not a missing resource.
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown payment session %s", ErrValidation, sessionID)
		}
		return err
	}
	return nil
}

// settle applies the pending -> completed transition for the order
// correlated to sessionID. Returns whether this call applied the transition;
// an already-completed order is a successful no-op, so duplicate deliveries
// trigger no second cart clear and no second event.
func (s *PaymentService) settle(sessionID string) (bool, error) {
	order, err := s.orderRepo.GetBySessionRef(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, fmt.Errorf("order for session %s: %w", sessionID, ErrNotFound)
		}
		return false, err
	}

	applied, err := s.orderRepo.MarkPaymentCompleted(order.ID)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	s.logger.Info("payment confirmed",
		zap.String("order_id", order.ID),
		zap.String("session_id", sessionID),
		zap.Float64("total", order.TotalAmount),
	)

	// Guest carts are client-managed; only authenticated owners get a
	// server-side cart clear.
	if !models.IsGuestOwner(order.OwnerID) {
		if err := s.cartRepo.Clear(order.OwnerID); err != nil {
			s.logger.Error("failed to clear cart after payment",
				zap.String("owner", order.OwnerID), zap.Error(err))
		}
	}

	if s.events != nil {
		event := rabbitmq.OrderPaidEvent{
			OrderID:     order.ID,
			OwnerID:     order.OwnerID,
			TotalAmount: order.TotalAmount,
			PaidAt:      time.Now().UTC(),
		}
		if err := s.events.PublishOrderPaid(event); err != nil {
			s.logger.Error("failed to publish order paid event",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	return true, nil
}

// fail applies the pending -> failed transition and, when configured,
// releases the stock reserved by the order.
func (s *PaymentService) fail(sessionID string) error {
	order, err := s.orderRepo.GetBySessionRef(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("order for session %s: %w", sessionID, ErrNotFound)
		}
		return err
	}

	applied, err := s.orderRepo.MarkPaymentFailed(order.ID)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	s.logger.Info("payment failed",
		zap.String("order_id", order.ID),
		zap.String("session_id", sessionID),
	)

	if s.restockOnFailure {
		for _, item := range order.Items {
			if err := s.productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
				s.logger.Error("failed to restock after failed payment",
					zap.String("order_id", order.ID),
					zap.String("product_id", item.ProductID),
					zap.Error(err))
			}
		}
	}
	return nil
}
