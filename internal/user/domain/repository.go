package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id string) (*User, error)
	Upsert(ctx context.Context, db *gorm.DB, user *User) error
}
