package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ApplicationStatus tracks where a submitted application stands.
type ApplicationStatus string

const (
	StatusApplied      ApplicationStatus = "applied"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusOffer        ApplicationStatus = "offer"
	StatusRejected     ApplicationStatus = "rejected"
	StatusWithdrawn    ApplicationStatus = "withdrawn"
	StatusAccepted     ApplicationStatus = "accepted"
)

func ParseStatus(value string) (ApplicationStatus, error) {
	switch ApplicationStatus(strings.ToLower(strings.TrimSpace(value))) {
	case StatusApplied:
		return StatusApplied, nil
	case StatusInterviewing:
		return StatusInterviewing, nil
	case StatusOffer:
		return StatusOffer, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusWithdrawn:
		return StatusWithdrawn, nil
	case StatusAccepted:
		return StatusAccepted, nil
	default:
		return "", ErrInvalidStatus
	}
}

// JobApplication stores one generated application and its follow-up state.
type JobApplication struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID             string            `gorm:"not null;index" json:"user_id"`
	JobTitle           string            `gorm:"not null" json:"job_title"`
	Company            string            `gorm:"not null" json:"company"`
	JobDescription     string            `gorm:"not null" json:"job_description"`
	JobURL             string            `gorm:"column:job_url" json:"job_url"`
	ApplicationStatus  ApplicationStatus `gorm:"not null;default:applied" json:"application_status"`
	AppliedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"applied_at"`
	InterviewAt        *time.Time        `json:"interview_at,omitempty"`
	Notes              string            `json:"notes"`
	ResumeContent      string            `json:"resume_content"`
	CoverLetterContent string            `json:"cover_letter_content"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}
