package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/careercraft/careercraft/internal/entitlement/domain"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(ts time.Time, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	return New("", testWebhookSecret, time.Second, zap.NewNop())
}

func TestVerifyWebhookPaymentIntent(t *testing.T) {
	g := newTestGateway(t)

	payload := []byte(`{
		"id": "evt_1",
		"api_version": "2022-11-15",
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_1",
				"object": "payment_intent",
				"metadata": {"subscription_id": "sub_123"}
			}
		}
	}`)

	event, err := g.VerifyWebhook(payload, signedHeader(time.Now(), payload, testWebhookSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event == nil || event.SubscriptionRef != "sub_123" {
		t.Fatalf("event = %+v", event)
	}
	if event.Type != "payment_intent.succeeded" {
		t.Fatalf("type = %q", event.Type)
	}
}

func TestVerifyWebhookInvoice(t *testing.T) {
	g := newTestGateway(t)

	payload := []byte(`{
		"id": "evt_2",
		"api_version": "2022-11-15",
		"type": "invoice.payment_succeeded",
		"data": {
			"object": {
				"id": "in_1",
				"object": "invoice",
				"subscription": "sub_456"
			}
		}
	}`)

	event, err := g.VerifyWebhook(payload, signedHeader(time.Now(), payload, testWebhookSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event == nil || event.SubscriptionRef != "sub_456" {
		t.Fatalf("event = %+v", event)
	}
}

func TestVerifyWebhookIgnoresUnrelatedEvents(t *testing.T) {
	g := newTestGateway(t)

	payload := []byte(`{
		"id": "evt_3",
		"api_version": "2022-11-15",
		"type": "customer.updated",
		"data": {"object": {"id": "cus_1", "object": "customer"}}
	}`)

	event, err := g.VerifyWebhook(payload, signedHeader(time.Now(), payload, testWebhookSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event != nil {
		t.Fatalf("unrelated event not dropped: %+v", event)
	}
}

func TestVerifyWebhookBadSignature(t *testing.T) {
	g := newTestGateway(t)

	payload := []byte(`{"id":"evt_4","type":"payment_intent.succeeded","data":{"object":{}}}`)

	if _, err := g.VerifyWebhook(payload, signedHeader(time.Now(), payload, "whsec_other")); !errors.Is(err, domain.ErrWebhookSignature) {
		t.Fatalf("wrong secret err = %v", err)
	}

	stale := time.Now().Add(-time.Hour)
	if _, err := g.VerifyWebhook(payload, signedHeader(stale, payload, testWebhookSecret)); !errors.Is(err, domain.ErrWebhookSignature) {
		t.Fatalf("stale timestamp err = %v", err)
	}
}

func TestUnconfiguredGateway(t *testing.T) {
	g := New("", "", time.Second, zap.NewNop())
	ctx := context.Background()

	if _, err := g.EnsureCustomer(ctx, "user-1", "jane@example.com"); !errors.Is(err, domain.ErrGatewayNotConfigured) {
		t.Fatalf("EnsureCustomer err = %v", err)
	}
	if _, err := g.Subscription(ctx, "sub_1"); !errors.Is(err, domain.ErrGatewayNotConfigured) {
		t.Fatalf("Subscription err = %v", err)
	}
	if _, err := g.CreateSubscription(ctx, "cus_1", "price_1"); !errors.Is(err, domain.ErrGatewayNotConfigured) {
		t.Fatalf("CreateSubscription err = %v", err)
	}
	if err := g.CancelSubscription(ctx, "sub_1"); !errors.Is(err, domain.ErrGatewayNotConfigured) {
		t.Fatalf("CancelSubscription err = %v", err)
	}
	if _, err := g.PaymentIntentSubscription(ctx, "pi_1"); !errors.Is(err, domain.ErrGatewayNotConfigured) {
		t.Fatalf("PaymentIntentSubscription err = %v", err)
	}
	if _, err := g.VerifyWebhook([]byte("{}"), "t=1,v1=ff"); !errors.Is(err, domain.ErrGatewayNotConfigured) {
		t.Fatalf("VerifyWebhook err = %v", err)
	}
}
