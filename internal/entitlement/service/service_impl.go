package service

import (
	"context"
	"errors"
	"strings"

	"github.com/careercraft/careercraft/internal/clock"
	"github.com/careercraft/careercraft/internal/config"
	"github.com/careercraft/careercraft/internal/entitlement/domain"
	"github.com/careercraft/careercraft/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Repo    domain.Repository
	Gateway domain.Gateway
	Guard   ratelimit.Guard
	Plans   *config.PlanConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	repo    domain.Repository
	gateway domain.Gateway
	guard   ratelimit.Guard
	plans   *config.PlanConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("entitlement.service"),
		clock:   p.Clock,
		repo:    p.Repo,
		gateway: p.Gateway,
		guard:   p.Guard,
		plans:   p.Plans,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (domain.Entitlement, error) {
	ent, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	return *ent, nil
}

// ChangeTier drives the subscription toward the requested paid tier. The
// gateway is always mutated before the local record, so a gateway failure
// leaves the entitlement untouched.
func (s *Service) ChangeTier(ctx context.Context, req domain.ChangeTierRequest) (domain.TierChangeResult, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.TierChangeResult{}, domain.ErrInvalidUser
	}
	tier, err := domain.ParseTier(req.Tier)
	if err != nil {
		return domain.TierChangeResult{}, err
	}
	priceID, err := s.plans.Get().PriceID(string(tier))
	if err != nil {
		return domain.TierChangeResult{}, err
	}

	release, ok, err := s.guard.Acquire(ctx, userID)
	if err != nil {
		return domain.TierChangeResult{}, err
	}
	if !ok {
		return domain.TierChangeResult{}, domain.ErrTierChangeInFlight
	}
	defer release()

	ent, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return domain.TierChangeResult{}, err
	}

	if ent.SubscriptionRef == "" {
		return s.startSubscription(ctx, ent, tier, priceID, req.Email)
	}

	snap, err := s.gateway.Subscription(ctx, ent.SubscriptionRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The tracked subscription no longer exists on the provider
			// side. Forget it and start over.
			s.log.Warn("stale subscription ref, recreating",
				zap.String("user_id", userID),
				zap.String("subscription_ref", ent.SubscriptionRef))
			ent.SubscriptionRef = ""
			return s.startSubscription(ctx, ent, tier, priceID, req.Email)
		}
		return domain.TierChangeResult{}, err
	}

	switch snap.Status {
	case domain.GatewaySubIncompleteExpired:
		// The checkout window lapsed. Best-effort cancel, then a clean
		// restart on the requested price.
		if err := s.gateway.CancelSubscription(ctx, snap.Ref); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.TierChangeResult{}, err
		}
		ent.SubscriptionRef = ""
		return s.startSubscription(ctx, ent, tier, priceID, req.Email)

	case domain.GatewaySubActive, domain.GatewaySubTrialing:
		if snap.PriceID == priceID {
			return s.alreadyOnPlan(ctx, ent, tier)
		}
		return s.changePrice(ctx, ent, tier, priceID)

	case domain.GatewaySubIncomplete:
		return s.resumeCheckout(ctx, ent)

	default:
		s.log.Warn("subscription in unsupported state",
			zap.String("user_id", userID),
			zap.String("gateway_status", snap.Status))
		return domain.TierChangeResult{}, domain.ErrUnsupportedSubState
	}
}

func (s *Service) startSubscription(ctx context.Context, ent *domain.Entitlement, tier domain.Tier, priceID, email string) (domain.TierChangeResult, error) {
	if ent.CustomerRef == "" {
		customerRef, err := s.gateway.EnsureCustomer(ctx, ent.UserID, email)
		if err != nil {
			return domain.TierChangeResult{}, err
		}
		ent.CustomerRef = customerRef
	}

	res, err := s.gateway.CreateSubscription(ctx, ent.CustomerRef, priceID)
	if err != nil {
		return domain.TierChangeResult{}, err
	}

	ent.SubscriptionRef = res.SubscriptionRef
	if !res.RequiresPayment() {
		if subscriptionSettled(res.Status) {
			return s.applyTier(ctx, ent, tier, domain.OutcomeUpgradedImmediately)
		}
		// The provider opened the subscription without attaching a payment
		// intent to its first invoice. Recover one so the caller has a
		// secret to confirm with instead of a dead pending record.
		recovered, err := s.gateway.ResumePayment(ctx, ent.CustomerRef, res.SubscriptionRef)
		if err != nil {
			return domain.TierChangeResult{}, err
		}
		res = recovered
	}
	return s.markPending(ctx, ent, res)
}

func (s *Service) alreadyOnPlan(ctx context.Context, ent *domain.Entitlement, tier domain.Tier) (domain.TierChangeResult, error) {
	if ent.Tier == tier && ent.Status == domain.StatusActive {
		return domain.TierChangeResult{
			Outcome:         domain.OutcomeAlreadyOnPlan,
			Entitlement:     *ent,
			SubscriptionRef: ent.SubscriptionRef,
		}, nil
	}
	// The provider already bills this tier but the local record lags,
	// usually a missed confirmation. Align it.
	res, err := s.applyTier(ctx, ent, tier, domain.OutcomeAlreadyOnPlan)
	return res, err
}

func (s *Service) changePrice(ctx context.Context, ent *domain.Entitlement, tier domain.Tier, priceID string) (domain.TierChangeResult, error) {
	res, err := s.gateway.ChangeSubscriptionPrice(ctx, ent.SubscriptionRef, priceID)
	if err != nil {
		return domain.TierChangeResult{}, err
	}
	if !res.RequiresPayment() {
		return s.applyTier(ctx, ent, tier, domain.OutcomeUpgradedImmediately)
	}
	return s.markPending(ctx, ent, res)
}

func (s *Service) resumeCheckout(ctx context.Context, ent *domain.Entitlement) (domain.TierChangeResult, error) {
	res, err := s.gateway.ResumePayment(ctx, ent.CustomerRef, ent.SubscriptionRef)
	if err != nil {
		return domain.TierChangeResult{}, err
	}
	return s.markPending(ctx, ent, res)
}

func (s *Service) applyTier(ctx context.Context, ent *domain.Entitlement, tier domain.Tier, outcome domain.TierChangeOutcome) (domain.TierChangeResult, error) {
	ent.Tier = tier
	ent.Status = domain.StatusActive
	ent.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, ent); err != nil {
		return domain.TierChangeResult{}, err
	}
	s.log.Info("tier applied",
		zap.String("user_id", ent.UserID),
		zap.String("tier", string(tier)),
		zap.String("outcome", string(outcome)))
	return domain.TierChangeResult{
		Outcome:         outcome,
		Entitlement:     *ent,
		SubscriptionRef: ent.SubscriptionRef,
	}, nil
}

func (s *Service) markPending(ctx context.Context, ent *domain.Entitlement, res *domain.CheckoutResult) (domain.TierChangeResult, error) {
	ent.Status = domain.StatusPendingPayment
	ent.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, ent); err != nil {
		return domain.TierChangeResult{}, err
	}
	s.log.Info("tier change pending payment",
		zap.String("user_id", ent.UserID),
		zap.String("subscription_ref", ent.SubscriptionRef))
	return domain.TierChangeResult{
		Outcome:         domain.OutcomePendingPayment,
		Entitlement:     *ent,
		SubscriptionRef: ent.SubscriptionRef,
		ClientSecret:    res.ClientSecret,
	}, nil
}

func (s *Service) Cancel(ctx context.Context, userID string) (domain.Entitlement, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Entitlement{}, domain.ErrInvalidUser
	}

	release, ok, err := s.guard.Acquire(ctx, userID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if !ok {
		return domain.Entitlement{}, domain.ErrTierChangeInFlight
	}
	defer release()

	ent, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return domain.Entitlement{}, err
	}

	if ent.SubscriptionRef == "" {
		return domain.Entitlement{}, domain.ErrNotFound
	}
	if err := s.gateway.CancelSubscription(ctx, ent.SubscriptionRef); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Entitlement{}, err
	}

	ent.Tier = domain.TierFree
	ent.Status = domain.StatusCancelled
	ent.SubscriptionRef = ""
	ent.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, ent); err != nil {
		return domain.Entitlement{}, err
	}

	s.log.Info("subscription cancelled", zap.String("user_id", userID))
	return *ent, nil
}

// ConfirmPayment re-reads the provider state and applies the tier that is
// actually being billed. It refuses confirmations for a subscription the
// record no longer tracks so a racing cancellation cannot be resurrected.
func (s *Service) ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) (domain.Entitlement, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.Entitlement{}, domain.ErrInvalidUser
	}

	ent, err := s.repo.Find(ctx, s.db, userID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if ent == nil {
		return domain.Entitlement{}, domain.ErrNotFound
	}

	ref := strings.TrimSpace(req.SubscriptionRef)
	if ref == "" {
		if intentRef := strings.TrimSpace(req.PaymentIntentRef); intentRef != "" {
			ref, err = s.gateway.PaymentIntentSubscription(ctx, intentRef)
			if err != nil {
				return domain.Entitlement{}, err
			}
			if ref == "" {
				return domain.Entitlement{}, domain.ErrSubscriptionMismatch
			}
		}
	}
	if ref == "" {
		ref = ent.SubscriptionRef
	}
	if ref == "" || ent.SubscriptionRef != ref {
		return domain.Entitlement{}, domain.ErrSubscriptionMismatch
	}

	return s.reconcile(ctx, ent, ref)
}

func (s *Service) HandlePaymentEvent(ctx context.Context, event domain.PaymentEvent) error {
	if event.SubscriptionRef == "" {
		return nil
	}

	ent, err := s.repo.FindBySubscriptionRef(ctx, s.db, event.SubscriptionRef)
	if err != nil {
		return err
	}
	if ent == nil {
		// Either the user cancelled before the event arrived or the
		// subscription was never ours. Both are safe to drop.
		s.log.Info("payment event for untracked subscription",
			zap.String("subscription_ref", event.SubscriptionRef),
			zap.String("type", event.Type))
		return nil
	}

	if _, err := s.reconcile(ctx, ent, event.SubscriptionRef); err != nil {
		return err
	}
	return nil
}

func (s *Service) reconcile(ctx context.Context, ent *domain.Entitlement, ref string) (domain.Entitlement, error) {
	snap, err := s.gateway.Subscription(ctx, ref)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if !subscriptionSettled(snap.Status) {
		return domain.Entitlement{}, domain.ErrUnsupportedSubState
	}

	tier, ok := s.plans.Get().TierForPrice(snap.PriceID)
	if !ok {
		s.log.Error("subscription bills an unknown price",
			zap.String("subscription_ref", ref),
			zap.String("price_id", snap.PriceID))
		return domain.Entitlement{}, domain.ErrUnknownPrice
	}

	if ent.Tier == domain.Tier(tier) && ent.Status == domain.StatusActive {
		return *ent, nil
	}

	ent.Tier = domain.Tier(tier)
	ent.Status = domain.StatusActive
	ent.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, ent); err != nil {
		return domain.Entitlement{}, err
	}

	s.log.Info("payment reconciled",
		zap.String("user_id", ent.UserID),
		zap.String("tier", tier),
		zap.String("subscription_ref", ref))
	return *ent, nil
}

func (s *Service) AuthorizeGeneration(ctx context.Context, userID string) (domain.Entitlement, error) {
	ent, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return domain.Entitlement{}, err
	}
	if !domain.CanGenerateApplication(*ent, s.plans.Get().FreeGenerationLimit) {
		return *ent, domain.ErrGenerationLimit
	}
	return *ent, nil
}

func (s *Service) RecordGeneration(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUser
	}
	return s.repo.IncrementUsage(ctx, s.db, userID)
}

func (s *Service) getOrCreate(ctx context.Context, userID string) (*domain.Entitlement, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	ent, err := s.repo.Find(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if ent != nil {
		return ent, nil
	}

	fresh := domain.NewFreeEntitlement(userID, s.clock.Now().UTC())
	if err := s.repo.Insert(ctx, s.db, &fresh); err != nil {
		return nil, err
	}
	return &fresh, nil
}

func subscriptionSettled(status string) bool {
	return status == domain.GatewaySubActive || status == domain.GatewaySubTrialing
}
