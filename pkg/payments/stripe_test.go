package payments

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload produces a Stripe-Signature header the way Stripe's servers do.
func signPayload(payload []byte, secret string, at time.Time) string {
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func eventPayload(eventType, sessionID, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "2024-09-30.acacia",
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "checkout.session",
				"payment_status": %q
			}
		}
	}`, eventType, sessionID, paymentStatus))
}

func TestStripeGateway_VerifyWebhook_Completed(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testWebhookSecret})
	payload := eventPayload("checkout.session.completed", "cs_test_abc", "paid")

	event, err := g.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventSessionCompleted, event.Type)
	assert.Equal(t, "cs_test_abc", event.SessionID)
	assert.True(t, event.Paid)
}

func TestStripeGateway_VerifyWebhook_AsyncOutcomes(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testWebhookSecret})

	payload := eventPayload("checkout.session.async_payment_succeeded", "cs_test_abc", "paid")
	event, err := g.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventSessionCompleted, event.Type)

	payload = eventPayload("checkout.session.async_payment_failed", "cs_test_abc", "unpaid")
	event, err = g.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventSessionFailed, event.Type)
	assert.Equal(t, "cs_test_abc", event.SessionID)

	payload = eventPayload("checkout.session.expired", "cs_test_abc", "unpaid")
	event, err = g.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventSessionFailed, event.Type)
}

func TestStripeGateway_VerifyWebhook_IgnoresUnrelatedEvents(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testWebhookSecret})
	payload := eventPayload("payment_intent.created", "cs_test_abc", "unpaid")

	event, err := g.VerifyWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, event.Type)
}

func TestStripeGateway_VerifyWebhook_RejectsBadSignature(t *testing.T) {
	g := NewStripeGateway(Config{WebhookSecret: testWebhookSecret})
	payload := eventPayload("checkout.session.completed", "cs_test_abc", "paid")

	// Signed with the wrong secret.
	event, err := g.VerifyWebhook(payload, signPayload(payload, "whsec_other", time.Now()))
	assert.Error(t, err)
	assert.Nil(t, event)

	// Payload tampered after signing.
	header := signPayload(payload, testWebhookSecret, time.Now())
	tampered := eventPayload("checkout.session.completed", "cs_test_attacker", "paid")
	event, err = g.VerifyWebhook(tampered, header)
	assert.Error(t, err)
	assert.Nil(t, event)

	// Stale timestamp outside the default tolerance.
	header = signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))
	event, err = g.VerifyWebhook(payload, header)
	assert.Error(t, err)
	assert.Nil(t, event)
}
