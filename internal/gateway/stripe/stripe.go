package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/careercraft/careercraft/internal/entitlement/domain"
	stripeapi "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
)

// Gateway implements the payment provider contract on Stripe. Every call
// carries a bounded context so a slow provider cannot hold a request
// hostage.
type Gateway struct {
	api           *client.API
	log           *zap.Logger
	timeout       time.Duration
	webhookSecret string
}

func New(secretKey, webhookSecret string, timeout time.Duration, log *zap.Logger) *Gateway {
	g := &Gateway{
		log:           log.Named("gateway.stripe"),
		timeout:       timeout,
		webhookSecret: webhookSecret,
	}
	if secretKey == "" {
		g.log.Warn("stripe secret key not set, billing operations will fail")
		return g
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	g.api = api
	return g
}

func (g *Gateway) EnsureCustomer(ctx context.Context, userID, email string) (string, error) {
	if g.api == nil {
		return "", domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	params := &stripeapi.CustomerParams{
		Params: stripeapi.Params{Context: ctx},
		Email:  stripeapi.String(email),
	}
	params.AddMetadata("user_id", userID)

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", g.mapError("create customer", err)
	}
	return customer.ID, nil
}

func (g *Gateway) Subscription(ctx context.Context, subscriptionRef string) (*domain.SubscriptionSnapshot, error) {
	if g.api == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	params := &stripeapi.SubscriptionParams{Params: stripeapi.Params{Context: ctx}}
	params.AddExpand("items.data.price")

	sub, err := g.api.Subscriptions.Get(subscriptionRef, params)
	if err != nil {
		return nil, g.mapError("get subscription", err)
	}
	return snapshot(sub), nil
}

func (g *Gateway) CreateSubscription(ctx context.Context, customerRef, priceID string) (*domain.CheckoutResult, error) {
	if g.api == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	params := &stripeapi.SubscriptionParams{
		Params:   stripeapi.Params{Context: ctx},
		Customer: stripeapi.String(customerRef),
		Items: []*stripeapi.SubscriptionItemsParams{
			{Price: stripeapi.String(priceID)},
		},
		PaymentBehavior: stripeapi.String("default_incomplete"),
		PaymentSettings: &stripeapi.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripeapi.String("on_subscription"),
		},
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		return nil, g.mapError("create subscription", err)
	}
	return checkout(sub), nil
}

func (g *Gateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionRef, priceID string) (*domain.CheckoutResult, error) {
	if g.api == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	getParams := &stripeapi.SubscriptionParams{Params: stripeapi.Params{Context: ctx}}
	current, err := g.api.Subscriptions.Get(subscriptionRef, getParams)
	if err != nil {
		return nil, g.mapError("get subscription", err)
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return nil, fmt.Errorf("subscription %s has no items: %w", subscriptionRef, domain.ErrGatewayUnavailable)
	}

	// Swap the price on the existing item and invoice the proration right
	// away so downgrades and upgrades settle through the same payment path.
	params := &stripeapi.SubscriptionParams{
		Params: stripeapi.Params{Context: ctx},
		Items: []*stripeapi.SubscriptionItemsParams{
			{
				ID:    stripeapi.String(current.Items.Data[0].ID),
				Price: stripeapi.String(priceID),
			},
		},
		ProrationBehavior: stripeapi.String("always_invoice"),
		PaymentBehavior:   stripeapi.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := g.api.Subscriptions.Update(subscriptionRef, params)
	if err != nil {
		return nil, g.mapError("update subscription", err)
	}
	return checkout(sub), nil
}

// ResumePayment digs out the payment the user still owes on an incomplete
// subscription. When the original payment intent is gone it mints a fresh
// one against the open invoice, tagged so the webhook can route it back.
func (g *Gateway) ResumePayment(ctx context.Context, customerRef, subscriptionRef string) (*domain.CheckoutResult, error) {
	if g.api == nil {
		return nil, domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	params := &stripeapi.SubscriptionParams{Params: stripeapi.Params{Context: ctx}}
	params.AddExpand("latest_invoice.payment_intent")
	params.AddExpand("items.data.price")

	sub, err := g.api.Subscriptions.Get(subscriptionRef, params)
	if err != nil {
		return nil, g.mapError("get subscription", err)
	}

	res := checkout(sub)
	if res.ClientSecret != "" {
		return res, nil
	}

	invoice, err := g.openInvoice(ctx, subscriptionRef)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("no open invoice for %s: %w", subscriptionRef, domain.ErrUnsupportedSubState)
	}
	if invoice.PaymentIntent != nil && invoice.PaymentIntent.ClientSecret != "" {
		res.ClientSecret = invoice.PaymentIntent.ClientSecret
		return res, nil
	}

	piParams := &stripeapi.PaymentIntentParams{
		Params:   stripeapi.Params{Context: ctx},
		Amount:   stripeapi.Int64(invoice.AmountDue),
		Currency: stripeapi.String(string(invoice.Currency)),
		Customer: stripeapi.String(customerRef),
	}
	piParams.AddMetadata("subscription_id", subscriptionRef)
	piParams.AddMetadata("invoice_id", invoice.ID)

	intent, err := g.api.PaymentIntents.New(piParams)
	if err != nil {
		return nil, g.mapError("create payment intent", err)
	}
	res.ClientSecret = intent.ClientSecret
	return res, nil
}

func (g *Gateway) PaymentIntentSubscription(ctx context.Context, paymentIntentRef string) (string, error) {
	if g.api == nil {
		return "", domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	params := &stripeapi.PaymentIntentParams{Params: stripeapi.Params{Context: ctx}}
	params.AddExpand("invoice")

	intent, err := g.api.PaymentIntents.Get(paymentIntentRef, params)
	if err != nil {
		return "", g.mapError("get payment intent", err)
	}
	if ref := intent.Metadata["subscription_id"]; ref != "" {
		return ref, nil
	}
	if intent.Invoice != nil && intent.Invoice.Subscription != nil {
		return intent.Invoice.Subscription.ID, nil
	}
	return "", nil
}

func (g *Gateway) openInvoice(ctx context.Context, subscriptionRef string) (*stripeapi.Invoice, error) {
	listParams := &stripeapi.InvoiceListParams{
		ListParams:   stripeapi.ListParams{Context: ctx},
		Subscription: stripeapi.String(subscriptionRef),
		Status:       stripeapi.String(string(stripeapi.InvoiceStatusOpen)),
	}
	listParams.AddExpand("data.payment_intent")
	listParams.Limit = stripeapi.Int64(1)

	iter := g.api.Invoices.List(listParams)
	for iter.Next() {
		return iter.Invoice(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, g.mapError("list invoices", err)
	}
	return nil, nil
}

func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionRef string) error {
	if g.api == nil {
		return domain.ErrGatewayNotConfigured
	}
	ctx, cancel := g.bound(ctx)
	defer cancel()

	params := &stripeapi.SubscriptionCancelParams{Params: stripeapi.Params{Context: ctx}}
	_, err := g.api.Subscriptions.Cancel(subscriptionRef, params)
	if err != nil {
		mapped := g.mapError("cancel subscription", err)
		if errors.Is(mapped, domain.ErrNotFound) {
			return nil
		}
		return mapped
	}
	return nil
}

func (g *Gateway) VerifyWebhook(payload []byte, signature string) (*domain.PaymentEvent, error) {
	if g.webhookSecret == "" {
		return nil, domain.ErrGatewayNotConfigured
	}

	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWebhookSignature, err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripeapi.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		return &domain.PaymentEvent{
			Type:            event.Type,
			SubscriptionRef: intent.Metadata["subscription_id"],
		}, nil

	case "invoice.payment_succeeded":
		var invoice stripeapi.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		evt := &domain.PaymentEvent{Type: event.Type}
		if invoice.Subscription != nil {
			evt.SubscriptionRef = invoice.Subscription.ID
		}
		return evt, nil

	default:
		return nil, nil
	}
}

func (g *Gateway) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Gateway) mapError(op string, err error) error {
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripeapi.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404 {
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		g.log.Error("stripe request failed",
			zap.String("op", op),
			zap.String("code", string(stripeErr.Code)),
			zap.Int("status", stripeErr.HTTPStatusCode))
		return fmt.Errorf("%s: %s: %w", op, stripeErr.Code, domain.ErrGatewayUnavailable)
	}
	g.log.Error("stripe transport failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, domain.ErrGatewayUnavailable)
}

func snapshot(sub *stripeapi.Subscription) *domain.SubscriptionSnapshot {
	snap := &domain.SubscriptionSnapshot{
		Ref:    sub.ID,
		Status: string(sub.Status),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		snap.PriceID = sub.Items.Data[0].Price.ID
	}
	return snap
}

func checkout(sub *stripeapi.Subscription) *domain.CheckoutResult {
	res := &domain.CheckoutResult{
		SubscriptionRef: sub.ID,
		Status:          string(sub.Status),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		res.PriceID = sub.Items.Data[0].Price.ID
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		res.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return res
}
