package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"vapestore/internal/models"
	"vapestore/internal/repositories"
	"vapestore/internal/services"
	"vapestore/pkg/payments"
	"vapestore/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturingPublisher records published order events in memory.
type capturingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.OrderPaidEvent
}

func (p *capturingPublisher) PublishOrderPaid(event rabbitmq.OrderPaidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) published() []rabbitmq.OrderPaidEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]rabbitmq.OrderPaidEvent(nil), p.events...)
}

type paymentFixture struct {
	svc         *services.PaymentService
	orderRepo   *repositories.MockOrderRepository
	productRepo *repositories.MockProductRepository
	cartRepo    *repositories.MockCartRepository
	gateway     *fakeGateway
	publisher   *capturingPublisher
}

func newPaymentFixture(t *testing.T, restockOnFailure bool) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		orderRepo:   repositories.NewMockOrderRepository(),
		productRepo: repositories.NewMockProductRepository(),
		cartRepo:    repositories.NewMockCartRepository(),
		gateway:     newFakeGateway(),
		publisher:   &capturingPublisher{},
	}
	f.svc = services.NewPaymentService(
		f.orderRepo, f.productRepo, f.cartRepo, f.gateway, f.publisher, zap.NewNop(), restockOnFailure)
	return f
}

// seedPendingOrder creates a pending order correlated to sessionID.
func (f *paymentFixture) seedPendingOrder(t *testing.T, owner, sessionID string) *models.Order {
	t.Helper()
	order := &models.Order{
		OwnerID: owner,
		Items: []models.OrderItem{
			{ProductID: "p1", ProductName: "Arctic Mint", Quantity: 2, UnitPrice: 10.0},
		},
		TotalAmount:   20.0,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, f.orderRepo.Create(order))
	require.NoError(t, f.orderRepo.SetPaymentSession(order.ID, sessionID))
	return order
}

func TestPaymentService_HandleWebhook_Applied(t *testing.T) {
	f := newPaymentFixture(t, false)
	order := f.seedPendingOrder(t, "user-1", "cs_1")
	require.NoError(t, f.cartRepo.Save(&models.CartItem{OwnerID: "user-1", ProductID: "p1", Quantity: 2, Flavor: "mint"}))
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: true}

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	got, err := f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	// Cart cleared and one event published for the authenticated owner.
	cart, err := f.cartRepo.GetByOwner("user-1")
	require.NoError(t, err)
	assert.Empty(t, cart)
	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, order.ID, events[0].OrderID)
	assert.Equal(t, "user-1", events[0].OwnerID)
	assert.Equal(t, 20.0, events[0].TotalAmount)
}

func TestPaymentService_HandleWebhook_CompletedUnpaidAwaitsAsyncOutcome(t *testing.T) {
	f := newPaymentFixture(t, false)
	order := f.seedPendingOrder(t, "user-1", "cs_1")

	// Delayed payment methods complete the session with the payment still
	// unsettled; the order must stay pending until the async outcome lands.
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: false}
	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookIgnored, outcome)

	got, err := f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	assert.Empty(t, f.publisher.published())

	// The payment ultimately falls through; the failure must still apply.
	f.gateway.event = &payments.Event{Type: payments.EventSessionFailed, SessionID: "cs_1"}
	outcome, err = f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	got, err = f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)
	assert.Empty(t, f.publisher.published())
}

func TestPaymentService_HandleWebhook_AsyncPaymentSucceeds(t *testing.T) {
	f := newPaymentFixture(t, false)
	order := f.seedPendingOrder(t, "user-1", "cs_1")

	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: false}
	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookIgnored, outcome)

	// The async success arrives as another completed event, now paid.
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: true}
	outcome, err = f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	got, err := f.orderRepo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Len(t, f.publisher.published(), 1)
}

func TestPaymentService_HandleWebhook_DuplicateDelivery(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.seedPendingOrder(t, "user-1", "cs_1")
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: true}

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	// The processor redelivers; the order stays settled and nothing repeats.
	outcome, err = f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookDuplicate, outcome)
	assert.Len(t, f.publisher.published(), 1)
}

func TestPaymentService_HandleWebhook_UnknownSession(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_nobody", Paid: true}

	// Acknowledged so the processor stops retrying.
	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookUnknown, outcome)
	assert.Empty(t, f.publisher.published())
}

func TestPaymentService_HandleWebhook_BadSignature(t *testing.T) {
	f := newPaymentFixture(t, false)
	order := f.seedPendingOrder(t, "user-1", "cs_1")
	f.gateway.verifyErr = fmt.Errorf("signature mismatch")

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "bad-sig")
	assert.ErrorIs(t, err, services.ErrBadSignature)
	assert.Equal(t, services.WebhookBadSignature, outcome)

	// No state change on a forged delivery.
	got, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	assert.Empty(t, f.publisher.published())
}

func TestPaymentService_HandleWebhook_IgnoredEventType(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.gateway.event = &payments.Event{Type: payments.EventIgnored}

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookIgnored, outcome)
}

func TestPaymentService_HandleWebhook_GuestOwnerKeepsNoServerCart(t *testing.T) {
	f := newPaymentFixture(t, false)
	guest := models.NewGuestOwnerID()
	f.seedPendingOrder(t, guest, "cs_1")
	// An unrelated authenticated cart must survive a guest settlement.
	require.NoError(t, f.cartRepo.Save(&models.CartItem{OwnerID: "user-2", ProductID: "p1", Quantity: 1, Flavor: "mint"}))
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: true}

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	cart, err := f.cartRepo.GetByOwner("user-2")
	require.NoError(t, err)
	assert.Len(t, cart, 1)

	// Paid events still flow for guest orders.
	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, guest, events[0].OwnerID)
}

func TestPaymentService_HandleWebhook_FailureRestocks(t *testing.T) {
	f := newPaymentFixture(t, true)
	seedProduct(t, f.productRepo, "p1", "Arctic Mint", 10.0, 3)
	order := f.seedPendingOrder(t, "user-1", "cs_1")
	f.gateway.event = &payments.Event{Type: payments.EventSessionFailed, SessionID: "cs_1"}

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	got, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)

	// The order reserved 2 units; they come back.
	product, _ := f.productRepo.GetByID("p1")
	assert.Equal(t, 5, product.Stock)

	// A redelivered failure does not restock twice.
	outcome, err = f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)
	product, _ = f.productRepo.GetByID("p1")
	assert.Equal(t, 5, product.Stock)
}

func TestPaymentService_HandleWebhook_FailureKeepsReservation(t *testing.T) {
	f := newPaymentFixture(t, false)
	seedProduct(t, f.productRepo, "p1", "Arctic Mint", 10.0, 3)
	f.seedPendingOrder(t, "user-1", "cs_1")
	f.gateway.event = &payments.Event{Type: payments.EventSessionFailed, SessionID: "cs_1"}

	outcome, err := f.svc.HandleWebhook([]byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Equal(t, services.WebhookApplied, outcome)

	product, _ := f.productRepo.GetByID("p1")
	assert.Equal(t, 3, product.Stock)
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	f := newPaymentFixture(t, false)
	order := f.seedPendingOrder(t, "user-1", "cs_1")

	// Empty session id is rejected.
	err := f.svc.ConfirmPayment(context.Background(), "")
	assert.ErrorIs(t, err, services.ErrValidation)

	// A paid session we never issued is the caller's bad input, not a
	// missing resource.
	f.gateway.paid["cs_nobody"] = true
	err = f.svc.ConfirmPayment(context.Background(), "cs_nobody")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "unknown payment session")

	// The client claims success but the processor disagrees.
	err = f.svc.ConfirmPayment(context.Background(), "cs_1")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "payment not completed")
	got, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)

	// Verified paid session settles the order.
	f.gateway.paid["cs_1"] = true
	err = f.svc.ConfirmPayment(context.Background(), "cs_1")
	require.NoError(t, err)
	got, _ = f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.PaymentStatusCompleted, got.PaymentStatus)
	assert.Len(t, f.publisher.published(), 1)

	// Re-confirming after the webhook already settled is a quiet no-op.
	err = f.svc.ConfirmPayment(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Len(t, f.publisher.published(), 1)
}

func TestPaymentService_WebhookAndConfirmRace(t *testing.T) {
	f := newPaymentFixture(t, false)
	f.seedPendingOrder(t, "user-1", "cs_1")
	f.gateway.paid["cs_1"] = true
	f.gateway.event = &payments.Event{Type: payments.EventSessionCompleted, SessionID: "cs_1", Paid: true}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = f.svc.HandleWebhook([]byte(`{}`), "sig")
	}()
	go func() {
		defer wg.Done()
		_ = f.svc.ConfirmPayment(context.Background(), "cs_1")
	}()
	wg.Wait()

	// Both entry points funnel into one transition: exactly one event.
	assert.Len(t, f.publisher.published(), 1)
}
