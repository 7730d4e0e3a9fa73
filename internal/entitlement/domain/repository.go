package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, userID string) (*Entitlement, error)
	FindBySubscriptionRef(ctx context.Context, db *gorm.DB, subscriptionRef string) (*Entitlement, error)
	Insert(ctx context.Context, db *gorm.DB, e *Entitlement) error
	Update(ctx context.Context, db *gorm.DB, e *Entitlement) error
	IncrementUsage(ctx context.Context, db *gorm.DB, userID string) error
}
