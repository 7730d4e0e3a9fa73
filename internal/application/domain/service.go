package domain

import (
	"context"
	"errors"
	"time"

	generatordomain "github.com/careercraft/careercraft/internal/generator/domain"
)

type GenerateRequest struct {
	UserID         string
	JobTitle       string
	Company        string
	JobDescription string
	JobURL         string
	Notes          string
}

type UpdateStatusRequest struct {
	UserID        string
	ApplicationID string
	Status        string
	Notes         *string
	InterviewAt   *time.Time
}

type InterviewPrepRequest struct {
	UserID        string
	ApplicationID string
}

type Service interface {
	// Generate runs the gate, composes the documents and records the
	// application. The usage counter moves only after the record is
	// persisted.
	Generate(ctx context.Context, req GenerateRequest) (JobApplication, error)

	// History returns past applications subject to the tier's window.
	// Free users get an empty list, not an error.
	History(ctx context.Context, userID string) ([]JobApplication, error)

	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (JobApplication, error)

	// InterviewPrep is a paid-tier feature.
	InterviewPrep(ctx context.Context, req InterviewPrepRequest) (generatordomain.InterviewPrep, error)
}

var (
	ErrInvalidUser        = errors.New("invalid_user")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidJobTitle    = errors.New("invalid_job_title")
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidDescription = errors.New("invalid_job_description")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrNotFound           = errors.New("not_found")
	ErrUpgradeRequired    = errors.New("upgrade_required")
)
