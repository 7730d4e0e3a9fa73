package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/careercraft/careercraft/internal/clock"
	"github.com/careercraft/careercraft/internal/config"
	"github.com/careercraft/careercraft/internal/entitlement/domain"
	"github.com/careercraft/careercraft/internal/entitlement/repository"
	"github.com/careercraft/careercraft/internal/entitlement/service"
	"github.com/careercraft/careercraft/internal/ratelimit"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGateway struct {
	customerRef string
	snapshot    *domain.SubscriptionSnapshot
	snapshotErr error
	createRes   *domain.CheckoutResult
	createErr   error
	changeRes   *domain.CheckoutResult
	changeErr   error
	resumeRes   *domain.CheckoutResult
	resumeErr   error
	cancelErr   error
	intentSubs  map[string]string

	ensureCalls int
	createCalls int
	changeCalls int
	resumeCalls int
	cancelCalls int
}

func (f *fakeGateway) EnsureCustomer(ctx context.Context, userID, email string) (string, error) {
	f.ensureCalls++
	if f.customerRef == "" {
		return "cus_test", nil
	}
	return f.customerRef, nil
}

func (f *fakeGateway) Subscription(ctx context.Context, ref string) (*domain.SubscriptionSnapshot, error) {
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeGateway) CreateSubscription(ctx context.Context, customerRef, priceID string) (*domain.CheckoutResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createRes, nil
}

func (f *fakeGateway) ChangeSubscriptionPrice(ctx context.Context, ref, priceID string) (*domain.CheckoutResult, error) {
	f.changeCalls++
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return f.changeRes, nil
}

func (f *fakeGateway) PaymentIntentSubscription(ctx context.Context, paymentIntentRef string) (string, error) {
	return f.intentSubs[paymentIntentRef], nil
}

func (f *fakeGateway) ResumePayment(ctx context.Context, customerRef, ref string) (*domain.CheckoutResult, error) {
	f.resumeCalls++
	if f.resumeErr != nil {
		return nil, f.resumeErr
	}
	return f.resumeRes, nil
}

func (f *fakeGateway) CancelSubscription(ctx context.Context, ref string) error {
	f.cancelCalls++
	return f.cancelErr
}

func (f *fakeGateway) VerifyWebhook(payload []byte, signature string) (*domain.PaymentEvent, error) {
	return nil, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Entitlement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testPlans() *config.PlanConfigHolder {
	return config.NewStaticPlanConfigHolder(config.PlanConfig{
		Plans: []config.Plan{
			{Tier: "standard", PriceID: "price_std"},
			{Tier: "premium", PriceID: "price_prem"},
		},
		FreeGenerationLimit:  5,
		StandardHistoryLimit: 50,
	})
}

func newTestService(t *testing.T, db *gorm.DB, gw *fakeGateway) domain.Service {
	t.Helper()
	return service.New(service.Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:    repository.Provide(),
		Gateway: gw,
		Guard:   ratelimit.NewLocalGuard(),
		Plans:   testPlans(),
	})
}

func seedEntitlement(t *testing.T, db *gorm.DB, ent domain.Entitlement) {
	t.Helper()
	if err := db.Create(&ent).Error; err != nil {
		t.Fatalf("seed entitlement: %v", err)
	}
}

func loadEntitlement(t *testing.T, db *gorm.DB, userID string) domain.Entitlement {
	t.Helper()
	var ent domain.Entitlement
	if err := db.Where("user_id = ?", userID).First(&ent).Error; err != nil {
		t.Fatalf("load entitlement: %v", err)
	}
	return ent
}

func TestGetCreatesFreeRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, &fakeGateway{})

	ent, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ent.Tier != domain.TierFree || ent.Status != domain.StatusActive {
		t.Fatalf("unexpected default entitlement: %+v", ent)
	}

	again, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !again.CreatedAt.Equal(ent.CreatedAt) {
		t.Fatalf("expected same record, got %+v and %+v", ent, again)
	}
}

func TestChangeTierCreatesSubscriptionPendingPayment(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{
		createRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_new",
			Status:          "incomplete",
			PriceID:         "price_std",
			ClientSecret:    "pi_secret",
		},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{
		UserID: "user-1",
		Email:  "u@example.com",
		Tier:   "standard",
	})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomePendingPayment {
		t.Fatalf("outcome = %s, want pending_payment", res.Outcome)
	}
	if res.ClientSecret != "pi_secret" {
		t.Fatalf("client secret = %q", res.ClientSecret)
	}
	if gw.ensureCalls != 1 || gw.createCalls != 1 {
		t.Fatalf("gateway calls: ensure=%d create=%d", gw.ensureCalls, gw.createCalls)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierFree {
		t.Fatalf("tier moved before payment confirmation: %s", stored.Tier)
	}
	if stored.Status != domain.StatusPendingPayment {
		t.Fatalf("status = %s, want pending_payment", stored.Status)
	}
	if stored.SubscriptionRef != "sub_new" || stored.CustomerRef == "" {
		t.Fatalf("refs not persisted: %+v", stored)
	}
}

func TestChangeTierRecoversMissingClientSecret(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{
		createRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_new",
			Status:          "incomplete",
			PriceID:         "price_std",
		},
		resumeRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_new",
			Status:          "incomplete",
			PriceID:         "price_std",
			ClientSecret:    "pi_minted",
		},
	}
	svc := newTestService(t, db, gw)

	// The provider opened the subscription but attached no payment intent
	// to its first invoice. The caller must still get a secret to confirm.
	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomePendingPayment {
		t.Fatalf("outcome = %s, want pending_payment", res.Outcome)
	}
	if res.ClientSecret != "pi_minted" {
		t.Fatalf("client secret = %q, want pi_minted", res.ClientSecret)
	}
	if gw.resumeCalls != 1 {
		t.Fatalf("resume calls = %d, want 1", gw.resumeCalls)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.SubscriptionRef != "sub_new" || stored.Status != domain.StatusPendingPayment {
		t.Fatalf("record not pending on the new subscription: %+v", stored)
	}
}

func TestChangeTierImmediateWhenNothingOwed(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{
		createRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_new",
			Status:          "active",
			PriceID:         "price_std",
		},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomeUpgradedImmediately {
		t.Fatalf("outcome = %s, want upgraded_immediately", res.Outcome)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierStandard || stored.Status != domain.StatusActive {
		t.Fatalf("entitlement not applied: %+v", stored)
	}
}

func TestChangeTierAlreadyOnPlan(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierStandard,
		Status:          domain.StatusActive,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_std"},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomeAlreadyOnPlan {
		t.Fatalf("outcome = %s, want already_on_plan", res.Outcome)
	}
	if gw.createCalls != 0 || gw.changeCalls != 0 || gw.cancelCalls != 0 {
		t.Fatalf("gateway mutated: %+v", gw)
	}
}

func TestChangeTierProratedUpdate(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierStandard,
		Status:          domain.StatusActive,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_std"},
		changeRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_1",
			Status:          "active",
			PriceID:         "price_prem",
			ClientSecret:    "pi_upgrade",
		},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "premium"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomePendingPayment {
		t.Fatalf("outcome = %s, want pending_payment", res.Outcome)
	}
	if gw.changeCalls != 1 {
		t.Fatalf("change calls = %d", gw.changeCalls)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierStandard {
		t.Fatalf("tier moved before payment confirmation: %s", stored.Tier)
	}
	if stored.Status != domain.StatusPendingPayment {
		t.Fatalf("status = %s", stored.Status)
	}
}

func TestChangeTierProratedUpdateSettledImmediately(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierPremium,
		Status:          domain.StatusActive,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_prem"},
		changeRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_1",
			Status:          "active",
			PriceID:         "price_std",
		},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomeUpgradedImmediately {
		t.Fatalf("outcome = %s", res.Outcome)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierStandard || stored.Status != domain.StatusActive {
		t.Fatalf("downgrade not applied: %+v", stored)
	}
}

func TestChangeTierResumesIncompleteCheckout(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierFree,
		Status:          domain.StatusPendingPayment,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "incomplete", PriceID: "price_std"},
		resumeRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_1",
			Status:          "incomplete",
			PriceID:         "price_std",
			ClientSecret:    "pi_resume",
		},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomePendingPayment || res.ClientSecret != "pi_resume" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gw.resumeCalls != 1 || gw.createCalls != 0 {
		t.Fatalf("gateway calls: resume=%d create=%d", gw.resumeCalls, gw.createCalls)
	}
}

func TestChangeTierRecreatesExpiredCheckout(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierFree,
		Status:          domain.StatusPendingPayment,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_old",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_old", Status: "incomplete_expired", PriceID: "price_std"},
		createRes: &domain.CheckoutResult{
			SubscriptionRef: "sub_fresh",
			Status:          "incomplete",
			PriceID:         "price_std",
			ClientSecret:    "pi_fresh",
		},
	}
	svc := newTestService(t, db, gw)

	res, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if err != nil {
		t.Fatalf("change tier: %v", err)
	}
	if res.Outcome != domain.OutcomePendingPayment {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if gw.cancelCalls != 1 || gw.createCalls != 1 {
		t.Fatalf("gateway calls: cancel=%d create=%d", gw.cancelCalls, gw.createCalls)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.SubscriptionRef != "sub_fresh" {
		t.Fatalf("subscription ref = %s, want sub_fresh", stored.SubscriptionRef)
	}
}

func TestChangeTierUnsupportedState(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierStandard,
		Status:          domain.StatusActive,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "past_due", PriceID: "price_std"},
	}
	svc := newTestService(t, db, gw)

	_, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "premium"})
	if !errors.Is(err, domain.ErrUnsupportedSubState) {
		t.Fatalf("err = %v, want unsupported state", err)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierStandard || stored.Status != domain.StatusActive {
		t.Fatalf("record mutated on failure: %+v", stored)
	}
}

func TestChangeTierGatewayFailureLeavesRecordUntouched(t *testing.T) {
	db := setupTestDB(t)
	gw := &fakeGateway{createErr: domain.ErrGatewayUnavailable}
	svc := newTestService(t, db, gw)

	_, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("err = %v", err)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.SubscriptionRef != "" || stored.Status != domain.StatusActive {
		t.Fatalf("record mutated on gateway failure: %+v", stored)
	}
}

func TestChangeTierValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, &fakeGateway{})

	if _, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "platinum"}); !errors.Is(err, domain.ErrInvalidTier) {
		t.Fatalf("err = %v, want invalid tier", err)
	}
	if _, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: " ", Tier: "standard"}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("err = %v, want invalid user", err)
	}
}

func TestChangeTierPriceNotConfigured(t *testing.T) {
	db := setupTestDB(t)
	svc := service.New(service.Params{
		DB:      db,
		Log:     zap.NewNop(),
		Clock:   clock.NewFakeClock(time.Now()),
		Repo:    repository.Provide(),
		Gateway: &fakeGateway{},
		Guard:   ratelimit.NewLocalGuard(),
		Plans: config.NewStaticPlanConfigHolder(config.PlanConfig{
			Plans: []config.Plan{{Tier: "standard", PriceID: ""}},
		}),
	})

	_, err := svc.ChangeTier(context.Background(), domain.ChangeTierRequest{UserID: "user-1", Tier: "standard"})
	if !errors.Is(err, config.ErrPriceNotConfigured) {
		t.Fatalf("err = %v, want price not configured", err)
	}
}

func TestCancelTearsDownSubscription(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierPremium,
		Status:          domain.StatusActive,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
		UsageCount:      3,
	})
	gw := &fakeGateway{}
	svc := newTestService(t, db, gw)

	ent, err := svc.Cancel(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if gw.cancelCalls != 1 {
		t.Fatalf("cancel calls = %d", gw.cancelCalls)
	}
	if ent.Tier != domain.TierFree || ent.Status != domain.StatusCancelled || ent.SubscriptionRef != "" {
		t.Fatalf("unexpected entitlement after cancel: %+v", ent)
	}
	if ent.CustomerRef != "cus_1" {
		t.Fatalf("customer ref dropped on cancel")
	}
	if ent.UsageCount != 3 {
		t.Fatalf("usage counter reset on cancel")
	}
}

func TestCancelToleratesMissingSubscription(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierStandard,
		Status:          domain.StatusActive,
		SubscriptionRef: "sub_gone",
	})
	gw := &fakeGateway{cancelErr: domain.ErrNotFound}
	svc := newTestService(t, db, gw)

	ent, err := svc.Cancel(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ent.Status != domain.StatusCancelled {
		t.Fatalf("status = %s", ent.Status)
	}
}

func TestCancelWithoutSubscription(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID: "user-1",
		Tier:   domain.TierFree,
		Status: domain.StatusActive,
	})
	gw := &fakeGateway{}
	svc := newTestService(t, db, gw)

	if _, err := svc.Cancel(context.Background(), "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if gw.cancelCalls != 0 {
		t.Fatalf("gateway called with nothing to cancel")
	}
}

func TestConfirmPaymentAppliesBilledTier(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierFree,
		Status:          domain.StatusPendingPayment,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_prem"},
	}
	svc := newTestService(t, db, gw)

	ent, err := svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{UserID: "user-1", SubscriptionRef: "sub_1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if ent.Tier != domain.TierPremium || ent.Status != domain.StatusActive {
		t.Fatalf("tier not applied: %+v", ent)
	}

	// Confirming again is a no-op.
	again, err := svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{UserID: "user-1", SubscriptionRef: "sub_1"})
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if again.Tier != domain.TierPremium || again.Status != domain.StatusActive {
		t.Fatalf("idempotent confirm changed record: %+v", again)
	}
}

func TestConfirmPaymentResolvesIntent(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierFree,
		Status:          domain.StatusPendingPayment,
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot:   &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_std"},
		intentSubs: map[string]string{"pi_1": "sub_1"},
	}
	svc := newTestService(t, db, gw)

	ent, err := svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{UserID: "user-1", PaymentIntentRef: "pi_1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if ent.Tier != domain.TierStandard || ent.Status != domain.StatusActive {
		t.Fatalf("tier not applied: %+v", ent)
	}

	// An intent with no subscription behind it confirms nothing.
	_, err = svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{UserID: "user-1", PaymentIntentRef: "pi_orphan"})
	if !errors.Is(err, domain.ErrSubscriptionMismatch) {
		t.Fatalf("orphan intent err = %v", err)
	}
}

func TestConfirmPaymentRejectsUntrackedSubscription(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:      "user-1",
		Tier:        domain.TierFree,
		Status:      domain.StatusCancelled,
		CustomerRef: "cus_1",
	})
	svc := newTestService(t, db, &fakeGateway{})

	// The user cancelled while a confirmation was in flight. The stale
	// reference must not resurrect the subscription.
	_, err := svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{UserID: "user-1", SubscriptionRef: "sub_old"})
	if !errors.Is(err, domain.ErrSubscriptionMismatch) {
		t.Fatalf("err = %v, want subscription mismatch", err)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierFree || stored.Status != domain.StatusCancelled {
		t.Fatalf("cancelled record mutated: %+v", stored)
	}
}

func TestConfirmPaymentUnknownPrice(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierFree,
		Status:          domain.StatusPendingPayment,
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_mystery"},
	}
	svc := newTestService(t, db, gw)

	_, err := svc.ConfirmPayment(context.Background(), domain.ConfirmPaymentRequest{UserID: "user-1", SubscriptionRef: "sub_1"})
	if !errors.Is(err, domain.ErrUnknownPrice) {
		t.Fatalf("err = %v, want unknown price", err)
	}
}

func TestHandlePaymentEventAppliesTier(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:          "user-1",
		Tier:            domain.TierFree,
		Status:          domain.StatusPendingPayment,
		SubscriptionRef: "sub_1",
	})
	gw := &fakeGateway{
		snapshot: &domain.SubscriptionSnapshot{Ref: "sub_1", Status: "active", PriceID: "price_std"},
	}
	svc := newTestService(t, db, gw)

	err := svc.HandlePaymentEvent(context.Background(), domain.PaymentEvent{
		Type:            "payment_intent.succeeded",
		SubscriptionRef: "sub_1",
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.Tier != domain.TierStandard || stored.Status != domain.StatusActive {
		t.Fatalf("event not applied: %+v", stored)
	}
}

func TestHandlePaymentEventIgnoresUntracked(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, &fakeGateway{})

	if err := svc.HandlePaymentEvent(context.Background(), domain.PaymentEvent{
		Type:            "payment_intent.succeeded",
		SubscriptionRef: "sub_unknown",
	}); err != nil {
		t.Fatalf("untracked event should be dropped, got %v", err)
	}

	if err := svc.HandlePaymentEvent(context.Background(), domain.PaymentEvent{Type: "payment_intent.succeeded"}); err != nil {
		t.Fatalf("event without ref should be dropped, got %v", err)
	}
}

func TestAuthorizeGenerationFreeLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, &fakeGateway{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.AuthorizeGeneration(ctx, "user-1"); err != nil {
			t.Fatalf("generation %d blocked: %v", i+1, err)
		}
		if err := svc.RecordGeneration(ctx, "user-1"); err != nil {
			t.Fatalf("record %d: %v", i+1, err)
		}
	}

	if _, err := svc.AuthorizeGeneration(ctx, "user-1"); !errors.Is(err, domain.ErrGenerationLimit) {
		t.Fatalf("err = %v, want generation limit", err)
	}

	stored := loadEntitlement(t, db, "user-1")
	if stored.UsageCount != 5 {
		t.Fatalf("usage count = %d, want 5", stored.UsageCount)
	}
}

func TestAuthorizeGenerationPaidUnlimited(t *testing.T) {
	db := setupTestDB(t)
	seedEntitlement(t, db, domain.Entitlement{
		UserID:     "user-1",
		Tier:       domain.TierStandard,
		Status:     domain.StatusActive,
		UsageCount: 9000,
	})
	svc := newTestService(t, db, &fakeGateway{})

	if _, err := svc.AuthorizeGeneration(context.Background(), "user-1"); err != nil {
		t.Fatalf("paid tier blocked: %v", err)
	}
}
