package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, app *JobApplication) error
	FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*JobApplication, error)
	// ListByUser returns newest first; limit zero means no limit.
	ListByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]JobApplication, error)
	Update(ctx context.Context, db *gorm.DB, app *JobApplication) error
}
