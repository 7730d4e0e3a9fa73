package domain

import (
	"strings"
	"time"
)

// Tier is the product tier a user is entitled to.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ParseTier validates a requested paid tier. Free is not a valid target
// for a tier change; downgrading to free goes through Cancel.
func ParseTier(value string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierStandard:
		return TierStandard, nil
	case TierPremium:
		return TierPremium, nil
	default:
		return "", ErrInvalidTier
	}
}

func (t Tier) Paid() bool {
	return t == TierStandard || t == TierPremium
}

// Status is the local lifecycle state of an entitlement. PendingPayment
// marks a tier change whose invoice has not been confirmed yet; the tier
// field only moves once the reconciler sees the payment.
type Status string

const (
	StatusActive         Status = "active"
	StatusCancelled      Status = "cancelled"
	StatusIncomplete     Status = "incomplete"
	StatusPendingPayment Status = "pending_payment"
)

// Entitlement is the single billing record per user: current tier, local
// lifecycle status, the gateway references and the free-tier usage counter.
type Entitlement struct {
	UserID          string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	Tier            Tier      `gorm:"not null;default:free" json:"tier"`
	Status          Status    `gorm:"not null;default:active" json:"status"`
	CustomerRef     string    `gorm:"column:customer_ref;not null;default:''" json:"-"`
	SubscriptionRef string    `gorm:"column:subscription_ref;not null;default:'';index" json:"-"`
	UsageCount      int64     `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Entitlement) TableName() string {
	return "entitlements"
}

// NewFreeEntitlement is the record every user starts on.
func NewFreeEntitlement(userID string, now time.Time) Entitlement {
	return Entitlement{
		UserID:    userID,
		Tier:      TierFree,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
