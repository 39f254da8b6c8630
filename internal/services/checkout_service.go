package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"vapestore/internal/models"
	"vapestore/internal/repositories"
	"vapestore/pkg/payments"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// phoneRe matches an international phone number: optional +, 10 to 15 digits.
var phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)

// CheckoutItem is one requested cart line in a checkout request. Prices are
// never accepted from the client; only the product reference, quantity and
// variant selection are.
type CheckoutItem struct {
	ProductID        string `json:"product_id" validate:"required"`
	Quantity         int    `json:"quantity" validate:"required,min=1"`
	Flavor           string `json:"flavor" validate:"required"`
	NicotineStrength int    `json:"nicotine_strength" validate:"min=0"`
	SelectedImage    string `json:"selected_image"`
}

// CheckoutInput is the validated input of InitiateCheckout.
type CheckoutInput struct {
	Items           []CheckoutItem `json:"products" validate:"required,min=1,dive"`
	ShippingAddress string         `json:"shipping_address" validate:"required"`
	ContactEmail    string         `json:"order_email" validate:"required,email"`
	ContactPhone    string         `json:"phone_number" validate:"required"`
}

// CheckoutResult carries the created order id and the hosted payment page
// the caller must redirect to.
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"url"`
}

// CheckoutService converts a validated cart into a pending order plus an
// external payment session.
//
// The flow is validate-before-mutate: every catalog lookup and variant check
// happens before any stock mutation or order write. Stock is then decremented
// before the external session call, so two concurrent checkouts cannot both
// reserve the last unit, and the external call remains the only step with no
// cheap rollback.
type CheckoutService struct {
	orderRepo      repositories.OrderRepository
	productRepo    repositories.ProductRepository
	gateway        payments.Gateway
	logger         *zap.Logger
	validate       *validator.Validate
	gatewayTimeout time.Duration
}

// NewCheckoutService creates a new CheckoutService. gatewayTimeout bounds
// calls to the external payment processor.
func NewCheckoutService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	gateway payments.Gateway,
	logger *zap.Logger,
	gatewayTimeout time.Duration,
) *CheckoutService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &CheckoutService{
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		gateway:        gateway,
		logger:         logger,
		validate:       validator.New(),
		gatewayTimeout: gatewayTimeout,
	}
}

// InitiateCheckout validates the requested items against the live catalog,
// creates the order in pending/pending, reserves stock, opens a hosted
// payment session, and returns the redirect URL.
//
// Any validation failure leaves zero orders created and zero stock
// decremented. A stock race after order creation restores already-applied
// decrements and removes the order. A gateway failure restores stock and
// marks the order's payment failed for manual reconciliation.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, owner string, input CheckoutInput) (*CheckoutResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !phoneRe.MatchString(input.ContactPhone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}

	// Pass 1: validate every line against the live catalog and snapshot
	// prices. No side effects yet.
	orderItems := make([]models.OrderItem, 0, len(input.Items))
	gatewayItems := make([]payments.LineItem, 0, len(input.Items))
	var total float64
	for _, item := range input.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s not found", ErrValidation, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: product %s has only %d units in stock",
				ErrConflict, product.Name, product.Stock)
		}
		if !product.AllowsFlavor(item.Flavor) {
			return nil, fmt.Errorf("%w: invalid flavor %q for %s", ErrConflict, item.Flavor, product.Name)
		}
		if !product.AllowsStrength(item.NicotineStrength) {
			return nil, fmt.Errorf("%w: invalid nicotine strength %d for %s",
				ErrConflict, item.NicotineStrength, product.Name)
		}

		image := product.ImageOrDefault(item.SelectedImage)
		unitPrice := product.DiscountedPrice
		orderItems = append(orderItems, models.OrderItem{
			ProductID:        product.ID,
			ProductName:      product.Name,
			Quantity:         item.Quantity,
			SelectedImage:    image,
			Flavor:           item.Flavor,
			NicotineStrength: item.NicotineStrength,
			UnitPrice:        unitPrice,
		})
		gatewayItems = append(gatewayItems, payments.LineItem{
			Name:       fmt.Sprintf("%s (%d mg, %s)", product.Name, item.NicotineStrength, item.Flavor),
			ImageURL:   image,
			UnitAmount: int64(math.Round(unitPrice * 100)),
			Quantity:   int64(item.Quantity),
		})
		total += unitPrice * float64(item.Quantity)
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		OwnerID:         owner,
		Items:           orderItems,
		TotalAmount:     total,
		ShippingAddress: input.ShippingAddress,
		ContactEmail:    input.ContactEmail,
		ContactPhone:    input.ContactPhone,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Pass 2: reserve stock, one conditional decrement per line. Pass 1
	// already checked availability, so a failure here means a concurrent
	// checkout won the race; undo and reject the whole request.
	for i, item := range orderItems {
		if err := s.productRepo.DecrementStock(item.ProductID, item.Quantity); err != nil {
			s.restoreStock(orderItems[:i])
			if delErr := s.orderRepo.Delete(order.ID); delErr != nil {
				s.logger.Error("failed to delete order after stock race",
					zap.String("order_id", order.ID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("%w: product %s is out of stock", ErrConflict, item.ProductName)
		}
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	sess, err := s.gateway.CreateSession(gwCtx, gatewayItems, payments.SessionMetadata{
		OrderID: order.ID,
		OwnerID: owner,
	})
	if err != nil {
		// Money is never in flight before the session exists: release the
		// reservation and keep the order around, marked failed, for
		// manual reconciliation. Not retried silently; a retry could
		// create a duplicate session.
		s.restoreStock(orderItems)
		if _, markErr := s.orderRepo.MarkPaymentFailed(order.ID); markErr != nil {
			s.logger.Error("failed to mark order payment failed after gateway error",
				zap.String("order_id", order.ID), zap.Error(markErr))
		}
		s.logger.Warn("payment session creation failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.orderRepo.SetPaymentSession(order.ID, sess.ID); err != nil {
		return nil, fmt.Errorf("failed to attach payment session to order %s: %w", order.ID, err)
	}

	s.logger.Info("checkout initiated",
		zap.String("order_id", order.ID),
		zap.String("owner", owner),
		zap.String("session_id", sess.ID),
		zap.Float64("total", total),
	)
	return &CheckoutResult{OrderID: order.ID, RedirectURL: sess.URL}, nil
}

// restoreStock undoes stock decrements already applied for the given items.
func (s *CheckoutService) restoreStock(items []models.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.IncrementStock(item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to restore stock",
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}
