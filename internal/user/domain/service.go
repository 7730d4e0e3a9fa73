package domain

import (
	"context"
	"errors"
)

type EnsureUserRequest struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

type Service interface {
	// Ensure records the identity-provider claims, creating or refreshing
	// the local row.
	Ensure(ctx context.Context, req EnsureUserRequest) (User, error)
	Get(ctx context.Context, id string) (User, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
