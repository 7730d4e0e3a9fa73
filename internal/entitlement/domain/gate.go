package domain

// Gate decisions are pure functions over the entitlement record and the
// plan limits so they can be exercised without a database or gateway.

// CanGenerateApplication reports whether the user may generate another
// application package. Paid tiers are unlimited; the free tier is capped
// by the lifetime usage counter.
func CanGenerateApplication(e Entitlement, freeLimit int) bool {
	if e.Tier.Paid() {
		return true
	}
	return e.UsageCount < int64(freeLimit)
}

// CanViewHistory reports whether the user has access to past applications
// at all. Free users see an empty history rather than an error.
func CanViewHistory(tier Tier) bool {
	return tier.Paid()
}

// HistoryLimit returns the maximum number of history entries to return,
// zero meaning unlimited. Callers must check CanViewHistory first.
func HistoryLimit(tier Tier, standardLimit int) int {
	if tier == TierStandard {
		return standardLimit
	}
	return 0
}

// CanUseInterviewPrep gates the interview preparation feature to paid tiers.
func CanUseInterviewPrep(tier Tier) bool {
	return tier.Paid()
}
