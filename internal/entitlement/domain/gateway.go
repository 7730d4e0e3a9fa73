package domain

import "context"

// Gateway subscription statuses as reported by the payment provider.
const (
	GatewaySubActive            = "active"
	GatewaySubTrialing          = "trialing"
	GatewaySubIncomplete        = "incomplete"
	GatewaySubIncompleteExpired = "incomplete_expired"
)

// SubscriptionSnapshot is the slice of provider subscription state the
// lifecycle logic needs.
type SubscriptionSnapshot struct {
	Ref     string
	Status  string
	PriceID string
}

// CheckoutResult comes back from operations that may require the client
// to complete a payment. ClientSecret is empty when nothing is owed.
type CheckoutResult struct {
	SubscriptionRef string
	Status          string
	PriceID         string
	ClientSecret    string
}

// RequiresPayment reports whether the client must confirm a payment
// before the change takes effect.
func (r CheckoutResult) RequiresPayment() bool {
	return r.ClientSecret != ""
}

// PaymentEvent is a provider notification that a payment settled for a
// subscription.
type PaymentEvent struct {
	Type            string
	SubscriptionRef string
	PriceID         string
}

// Gateway abstracts the payment provider. Implementations must translate
// provider transport failures into ErrGatewayUnavailable so callers can
// distinguish them from lifecycle errors.
type Gateway interface {
	// EnsureCustomer returns the provider customer for the user, creating
	// one on first use.
	EnsureCustomer(ctx context.Context, userID, email string) (string, error)

	// Subscription fetches the current provider state of a subscription.
	Subscription(ctx context.Context, subscriptionRef string) (*SubscriptionSnapshot, error)

	// CreateSubscription opens a new incomplete subscription on the given
	// price and returns the payment the client must confirm.
	CreateSubscription(ctx context.Context, customerRef, priceID string) (*CheckoutResult, error)

	// ChangeSubscriptionPrice moves an active subscription to a new price
	// with an immediate prorated invoice.
	ChangeSubscriptionPrice(ctx context.Context, subscriptionRef, priceID string) (*CheckoutResult, error)

	// PaymentIntentSubscription resolves the subscription a payment
	// intent settles, or "" when the intent is not tied to one.
	PaymentIntentSubscription(ctx context.Context, paymentIntentRef string) (string, error)

	// ResumePayment recovers the pending payment of an incomplete
	// subscription, minting a fresh payment intent when the original one
	// is gone.
	ResumePayment(ctx context.Context, customerRef, subscriptionRef string) (*CheckoutResult, error)

	// CancelSubscription cancels immediately. Cancelling a subscription
	// the provider no longer knows about is not an error.
	CancelSubscription(ctx context.Context, subscriptionRef string) error

	// VerifyWebhook authenticates a raw webhook delivery and extracts the
	// payment event, returning ErrWebhookSignature on a bad signature and
	// (nil, nil) for event types the service does not consume.
	VerifyWebhook(payload []byte, signature string) (*PaymentEvent, error)
}
