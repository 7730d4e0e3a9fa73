package config

import (
	"errors"
	"testing"
)

func testPlanConfig() PlanConfig {
	return PlanConfig{
		Plans: []Plan{
			{Tier: "standard", PriceID: "price_std"},
			{Tier: "premium", PriceID: "price_prem"},
		},
		FreeGenerationLimit:  5,
		StandardHistoryLimit: 50,
	}
}

func TestPriceID(t *testing.T) {
	cfg := testPlanConfig()

	price, err := cfg.PriceID("standard")
	if err != nil || price != "price_std" {
		t.Fatalf("PriceID(standard) = %q, %v", price, err)
	}

	if _, err := cfg.PriceID("enterprise"); !errors.Is(err, ErrPriceNotConfigured) {
		t.Fatalf("unknown tier err = %v", err)
	}

	cfg.Plans[0].PriceID = "   "
	if _, err := cfg.PriceID("standard"); !errors.Is(err, ErrPriceNotConfigured) {
		t.Fatalf("blank price err = %v", err)
	}

	cfg.Plans[0].PriceID = "prod_notaprice"
	if _, err := cfg.PriceID("standard"); !errors.Is(err, ErrPriceMalformed) {
		t.Fatalf("malformed price err = %v", err)
	}
}

func TestTierForPrice(t *testing.T) {
	cfg := testPlanConfig()

	tier, ok := cfg.TierForPrice("price_prem")
	if !ok || tier != "premium" {
		t.Fatalf("TierForPrice(price_prem) = %q, %v", tier, ok)
	}

	if _, ok := cfg.TierForPrice("price_unknown"); ok {
		t.Fatal("unknown price mapped to a tier")
	}
	if _, ok := cfg.TierForPrice(""); ok {
		t.Fatal("empty price mapped to a tier")
	}
}

func TestStaticHolderAppliesDefaults(t *testing.T) {
	holder := NewStaticPlanConfigHolder(PlanConfig{
		Plans: []Plan{{Tier: "standard", PriceID: "price_std"}},
	})

	cfg := holder.Get()
	if cfg.FreeGenerationLimit != 5 {
		t.Fatalf("free limit = %d, want default 5", cfg.FreeGenerationLimit)
	}
	if cfg.StandardHistoryLimit != 50 {
		t.Fatalf("history limit = %d, want default 50", cfg.StandardHistoryLimit)
	}
}
