package domain

import (
	"context"
	"errors"
)

type SaveProfileRequest struct {
	UserID              string
	ProfessionalSummary string
	Skills              []string
	Certifications      []string
	Languages           []string
	LinkedinURL         string
	PortfolioURL        string
}

type AddExperienceRequest struct {
	UserID        string
	JobTitle      string
	Company       string
	Location      string
	StartDate     string
	EndDate       string
	Description   string
	Achievements  []string
	IsCurrentRole bool
}

type UpdateExperienceRequest struct {
	UserID        string
	ExperienceID  string
	JobTitle      string
	Company       string
	Location      string
	StartDate     string
	EndDate       string
	Description   string
	Achievements  []string
	IsCurrentRole bool
}

type AddEducationRequest struct {
	UserID       string
	Institution  string
	Degree       string
	FieldOfStudy string
	StartDate    string
	EndDate      string
	GPA          string
	Description  string
}

type UpdateEducationRequest struct {
	UserID       string
	EducationID  string
	Institution  string
	Degree       string
	FieldOfStudy string
	StartDate    string
	EndDate      string
	GPA          string
	Description  string
}

type Service interface {
	// Get returns the profile with experiences and educations loaded,
	// ErrNotFound when the user never saved one.
	Get(ctx context.Context, userID string) (UserProfile, error)

	// Save creates or replaces the top-level profile fields.
	Save(ctx context.Context, req SaveProfileRequest) (UserProfile, error)

	AddExperience(ctx context.Context, req AddExperienceRequest) (WorkExperience, error)
	UpdateExperience(ctx context.Context, req UpdateExperienceRequest) (WorkExperience, error)
	RemoveExperience(ctx context.Context, userID, experienceID string) error
	AddEducation(ctx context.Context, req AddEducationRequest) (Education, error)
	UpdateEducation(ctx context.Context, req UpdateEducationRequest) (Education, error)
	RemoveEducation(ctx context.Context, userID, educationID string) error
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidJobTitle = errors.New("invalid_job_title")
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrNotFound        = errors.New("not_found")
)
