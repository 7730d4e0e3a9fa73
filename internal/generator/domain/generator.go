package domain

import (
	"context"
	"errors"

	profiledomain "github.com/careercraft/careercraft/internal/profile/domain"
)

// GenerateRequest carries the job posting plus the applicant's profile.
type GenerateRequest struct {
	JobTitle       string
	Company        string
	JobDescription string
	User           Applicant
	Profile        *profiledomain.UserProfile
}

type Applicant struct {
	FirstName string
	LastName  string
	Email     string
}

// GeneratedPackage is the tailored document pair for one application.
type GeneratedPackage struct {
	Resume      string
	CoverLetter string
}

type InterviewPrepRequest struct {
	JobTitle       string
	Company        string
	JobDescription string
	User           Applicant
	Profile        *profiledomain.UserProfile
}

type InterviewPrep struct {
	Questions []string `json:"questions"`
	Talking   []string `json:"talking_points"`
}

// Generator produces application documents. Implementations may call an
// external model; the service treats them as a black box.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GeneratedPackage, error)
	PrepareInterview(ctx context.Context, req InterviewPrepRequest) (InterviewPrep, error)
}

var ErrGenerationFailed = errors.New("generation_failed")
