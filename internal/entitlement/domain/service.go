package domain

import (
	"context"
	"errors"
)

// TierChangeOutcome describes how a tier change request resolved.
type TierChangeOutcome string

const (
	// OutcomeAlreadyOnPlan means the subscription already bills the
	// requested tier and nothing changed.
	OutcomeAlreadyOnPlan TierChangeOutcome = "already_on_plan"
	// OutcomeUpgradedImmediately means the provider settled the change
	// without client action and the tier is already effective.
	OutcomeUpgradedImmediately TierChangeOutcome = "upgraded_immediately"
	// OutcomePendingPayment means the client must confirm a payment; the
	// tier flips once the reconciler sees it settle.
	OutcomePendingPayment TierChangeOutcome = "pending_payment"
)

type ChangeTierRequest struct {
	UserID string
	Email  string
	Tier   string
}

type TierChangeResult struct {
	Outcome         TierChangeOutcome `json:"outcome"`
	Entitlement     Entitlement       `json:"entitlement"`
	SubscriptionRef string            `json:"subscription_ref,omitempty"`
	ClientSecret    string            `json:"client_secret,omitempty"`
}

type ConfirmPaymentRequest struct {
	UserID           string
	PaymentIntentRef string
	SubscriptionRef  string
}

type Service interface {
	// Get returns the user's entitlement, creating the free record on
	// first sight.
	Get(ctx context.Context, userID string) (Entitlement, error)

	// ChangeTier drives the subscription state machine toward the
	// requested paid tier.
	ChangeTier(ctx context.Context, req ChangeTierRequest) (TierChangeResult, error)

	// Cancel tears down the subscription and returns the user to the
	// free tier.
	Cancel(ctx context.Context, userID string) (Entitlement, error)

	// ConfirmPayment is the client-driven reconciliation path after a
	// successful checkout.
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (Entitlement, error)

	// HandlePaymentEvent is the webhook-driven reconciliation path. It is
	// idempotent and ignores events for subscriptions no record tracks.
	HandlePaymentEvent(ctx context.Context, event PaymentEvent) error

	// AuthorizeGeneration checks the generation gate for the user and
	// returns the entitlement the decision was made against.
	AuthorizeGeneration(ctx context.Context, userID string) (Entitlement, error)

	// RecordGeneration bumps the usage counter after a successful
	// generation.
	RecordGeneration(ctx context.Context, userID string) error
}

var (
	ErrNotFound             = errors.New("not_found")
	ErrInvalidTier          = errors.New("invalid_tier")
	ErrInvalidUser          = errors.New("invalid_user")
	ErrUnknownPrice         = errors.New("unknown_price")
	ErrUnsupportedSubState  = errors.New("unsupported_subscription_state")
	ErrGatewayUnavailable   = errors.New("gateway_unavailable")
	ErrGatewayNotConfigured = errors.New("gateway_not_configured")
	ErrWebhookSignature     = errors.New("invalid_webhook_signature")
	ErrGenerationLimit      = errors.New("generation_limit_reached")
	ErrTierChangeInFlight   = errors.New("tier_change_in_progress")
	ErrSubscriptionMismatch = errors.New("subscription_mismatch")
)
