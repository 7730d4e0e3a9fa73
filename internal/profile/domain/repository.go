package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*UserProfile, error)
	Insert(ctx context.Context, db *gorm.DB, profile *UserProfile) error
	Update(ctx context.Context, db *gorm.DB, profile *UserProfile) error
	InsertExperience(ctx context.Context, db *gorm.DB, exp *WorkExperience) error
	FindExperience(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*WorkExperience, error)
	UpdateExperience(ctx context.Context, db *gorm.DB, exp *WorkExperience) error
	DeleteExperience(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error)
	InsertEducation(ctx context.Context, db *gorm.DB, edu *Education) error
	FindEducation(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (*Education, error)
	UpdateEducation(ctx context.Context, db *gorm.DB, edu *Education) error
	DeleteEducation(ctx context.Context, db *gorm.DB, profileID, id snowflake.ID) (int64, error)
}
