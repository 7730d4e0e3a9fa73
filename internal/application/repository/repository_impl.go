package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/careercraft/careercraft/internal/application/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, app *domain.JobApplication) error {
	return db.WithContext(ctx).Create(app).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*domain.JobApplication, error) {
	var app domain.JobApplication
	err := db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.JobApplication, error) {
	var apps []domain.JobApplication
	stmt := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, app *domain.JobApplication) error {
	return db.WithContext(ctx).Save(app).Error
}
