package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/careercraft/careercraft/internal/profile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := db.WithContext(ctx).
		Preload("WorkExperiences", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date desc, id desc")
		}).
		Preload("Educations", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date desc, id desc")
		}).
		Where("user_id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.UserProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, profile *domain.UserProfile) error {
	return db.WithContext(ctx).
		Omit("WorkExperiences", "Educations").
		Save(profile).Error
}

func (r *repo) InsertExperience(ctx context.Context, db *gorm.DB, exp *domain.WorkExperience) error {
	return db.WithContext(ctx).Create(exp).Error
}

func (r *repo) FindExperience(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*domain.WorkExperience, error) {
	var exp domain.WorkExperience
	err := db.WithContext(ctx).
		Where("user_profile_id = ? AND id = ?", profileID, id).
		First(&exp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *repo) UpdateExperience(ctx context.Context, db *gorm.DB, exp *domain.WorkExperience) error {
	return db.WithContext(ctx).Save(exp).Error
}

func (r *repo) DeleteExperience(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_profile_id = ? AND id = ?", profileID, id).
		Delete(&domain.WorkExperience{})
	return res.RowsAffected, res.Error
}

func (r *repo) InsertEducation(ctx context.Context, db *gorm.DB, edu *domain.Education) error {
	return db.WithContext(ctx).Create(edu).Error
}

func (r *repo) FindEducation(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*domain.Education, error) {
	var edu domain.Education
	err := db.WithContext(ctx).
		Where("user_profile_id = ? AND id = ?", profileID, id).
		First(&edu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edu, nil
}

func (r *repo) UpdateEducation(ctx context.Context, db *gorm.DB, edu *domain.Education) error {
	return db.WithContext(ctx).Save(edu).Error
}

func (r *repo) DeleteEducation(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_profile_id = ? AND id = ?", profileID, id).
		Delete(&domain.Education{})
	return res.RowsAffected, res.Error
}
