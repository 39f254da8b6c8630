package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Config holds the Stripe credentials and redirect targets.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// StripeGateway implements Gateway on Stripe hosted checkout sessions.
type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

// NewStripeGateway creates a new StripeGateway and sets the API key.
func NewStripeGateway(cfg Config) *StripeGateway {
	stripe.Key = cfg.SecretKey
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		currency:      currency,
	}
}

// CreateSession opens a hosted checkout session for the given line items.
func (g *StripeGateway) CreateSession(ctx context.Context, items []LineItem, meta SessionMetadata) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(g.currency),
			UnitAmount: stripe.Int64(it.UnitAmount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(it.Name),
			},
		}
		if it.ImageURL != "" {
			priceData.ProductData.Images = stripe.StringSlice([]string{it.ImageURL})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: priceData,
			Quantity:  stripe.Int64(it.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("order_id", meta.OrderID)
	params.AddMetadata("owner_id", meta.OwnerID)

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

// SessionPaid re-retrieves the session from Stripe and reports whether its
// payment has settled. Used by the client-initiated confirmation path, which
// must not trust the client's claim that it paid.
func (g *StripeGateway) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(sessionID, params)
	if err != nil {
		return false, fmt.Errorf("failed to retrieve checkout session %s: %w", sessionID, err)
	}
	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}

// VerifyWebhook checks the event signature against the shared webhook secret
// and normalizes the event. An invalid signature returns an error and no event.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		return &Event{
			Type:      EventSessionCompleted,
			SessionID: sess.ID,
			Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		}, nil
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		return &Event{Type: EventSessionFailed, SessionID: sess.ID}, nil
	default:
		return &Event{Type: EventIgnored}, nil
	}
}
