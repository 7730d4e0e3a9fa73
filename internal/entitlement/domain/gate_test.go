package domain

import "testing"

func TestCanGenerateApplication(t *testing.T) {
	cases := []struct {
		name  string
		ent   Entitlement
		limit int
		want  bool
	}{
		{"free under limit", Entitlement{Tier: TierFree, UsageCount: 4}, 5, true},
		{"free at limit", Entitlement{Tier: TierFree, UsageCount: 5}, 5, false},
		{"free over limit", Entitlement{Tier: TierFree, UsageCount: 12}, 5, false},
		{"standard ignores counter", Entitlement{Tier: TierStandard, UsageCount: 9999}, 5, true},
		{"premium ignores counter", Entitlement{Tier: TierPremium, UsageCount: 9999}, 5, true},
		{"pending payment still on free tier", Entitlement{Tier: TierFree, Status: StatusPendingPayment, UsageCount: 5}, 5, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanGenerateApplication(tc.ent, tc.limit); got != tc.want {
				t.Fatalf("CanGenerateApplication(%+v, %d) = %v, want %v", tc.ent, tc.limit, got, tc.want)
			}
		})
	}
}

func TestCanViewHistory(t *testing.T) {
	if CanViewHistory(TierFree) {
		t.Fatal("free tier should not see history")
	}
	if !CanViewHistory(TierStandard) || !CanViewHistory(TierPremium) {
		t.Fatal("paid tiers should see history")
	}
}

func TestHistoryLimit(t *testing.T) {
	if got := HistoryLimit(TierStandard, 50); got != 50 {
		t.Fatalf("standard limit = %d, want 50", got)
	}
	if got := HistoryLimit(TierPremium, 50); got != 0 {
		t.Fatalf("premium limit = %d, want 0 (unlimited)", got)
	}
}

func TestCanUseInterviewPrep(t *testing.T) {
	if CanUseInterviewPrep(TierFree) {
		t.Fatal("free tier should not use interview prep")
	}
	if !CanUseInterviewPrep(TierStandard) || !CanUseInterviewPrep(TierPremium) {
		t.Fatal("paid tiers should use interview prep")
	}
}

func TestParseTier(t *testing.T) {
	if tier, err := ParseTier(" Premium "); err != nil || tier != TierPremium {
		t.Fatalf("ParseTier(Premium) = %v, %v", tier, err)
	}
	if _, err := ParseTier("free"); err == nil {
		t.Fatal("free must not be a tier change target")
	}
	if _, err := ParseTier("platinum"); err == nil {
		t.Fatal("unknown tier accepted")
	}
}
