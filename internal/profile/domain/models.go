package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// UserProfile is the career profile the generator composes documents
// from. Skills and the other list fields are stored as JSON arrays.
type UserProfile struct {
	ID                  snowflake.ID                `gorm:"primaryKey" json:"id"`
	UserID              string                      `gorm:"not null;uniqueIndex" json:"user_id"`
	ProfessionalSummary string                      `json:"professional_summary"`
	Skills              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	Certifications      datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"certifications"`
	Languages           datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"languages"`
	LinkedinURL         string                      `json:"linkedin_url"`
	PortfolioURL        string                      `json:"portfolio_url"`
	CreatedAt           time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	WorkExperiences []WorkExperience `gorm:"foreignKey:UserProfileID" json:"work_experiences"`
	Educations      []Education      `gorm:"foreignKey:UserProfileID" json:"educations"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

type WorkExperience struct {
	ID            snowflake.ID                `gorm:"primaryKey" json:"id"`
	UserProfileID snowflake.ID                `gorm:"not null;index" json:"-"`
	JobTitle      string                      `gorm:"not null" json:"job_title"`
	Company       string                      `gorm:"not null" json:"company"`
	Location      string                      `json:"location"`
	StartDate     string                      `gorm:"not null" json:"start_date"`
	EndDate       string                      `json:"end_date"`
	Description   string                      `gorm:"not null" json:"description"`
	Achievements  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"achievements"`
	IsCurrentRole bool                        `gorm:"column:is_current_role;not null;default:false" json:"is_current_role"`
	CreatedAt     time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (WorkExperience) TableName() string {
	return "work_experiences"
}

type Education struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	UserProfileID snowflake.ID `gorm:"not null;index" json:"-"`
	Institution   string       `gorm:"not null" json:"institution"`
	Degree        string       `gorm:"not null" json:"degree"`
	FieldOfStudy  string       `json:"field_of_study"`
	StartDate     string       `json:"start_date"`
	EndDate       string       `json:"end_date"`
	GPA           string       `gorm:"column:gpa" json:"gpa"`
	Description   string       `json:"description"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Education) TableName() string {
	return "educations"
}
