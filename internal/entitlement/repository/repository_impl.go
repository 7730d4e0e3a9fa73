package repository

import (
	"context"
	"errors"

	"github.com/careercraft/careercraft/internal/entitlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, userID string) (*domain.Entitlement, error) {
	var e domain.Entitlement
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) FindBySubscriptionRef(ctx context.Context, db *gorm.DB, subscriptionRef string) (*domain.Entitlement, error) {
	if subscriptionRef == "" {
		return nil, nil
	}
	var e domain.Entitlement
	err := db.WithContext(ctx).
		Where("subscription_ref = ?", subscriptionRef).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *domain.Entitlement) error {
	return db.WithContext(ctx).Create(e).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, e *domain.Entitlement) error {
	return db.WithContext(ctx).Save(e).Error
}

// IncrementUsage bumps the counter in place so concurrent generations
// never lose an increment.
func (r *repo) IncrementUsage(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE entitlements
		 SET usage_count = usage_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ?`,
		userID,
	).Error
}
