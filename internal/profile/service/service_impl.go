package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/careercraft/careercraft/internal/clock"
	"github.com/careercraft/careercraft/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("profile.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (domain.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserProfile{}, domain.ErrInvalidUser
	}

	profile, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if profile == nil {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) Save(ctx context.Context, req domain.SaveProfileRequest) (domain.UserProfile, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.UserProfile{}, domain.ErrInvalidUser
	}

	now := s.clock.Now().UTC()
	existing, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.UserProfile{}, err
	}

	if existing == nil {
		profile := domain.UserProfile{
			ID:                  s.genID.Generate(),
			UserID:              userID,
			ProfessionalSummary: strings.TrimSpace(req.ProfessionalSummary),
			Skills:              req.Skills,
			Certifications:      req.Certifications,
			Languages:           req.Languages,
			LinkedinURL:         strings.TrimSpace(req.LinkedinURL),
			PortfolioURL:        strings.TrimSpace(req.PortfolioURL),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
			return domain.UserProfile{}, err
		}
		return profile, nil
	}

	existing.ProfessionalSummary = strings.TrimSpace(req.ProfessionalSummary)
	existing.Skills = req.Skills
	existing.Certifications = req.Certifications
	existing.Languages = req.Languages
	existing.LinkedinURL = strings.TrimSpace(req.LinkedinURL)
	existing.PortfolioURL = strings.TrimSpace(req.PortfolioURL)
	existing.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.UserProfile{}, err
	}
	return *existing, nil
}

func (s *Service) AddExperience(ctx context.Context, req domain.AddExperienceRequest) (domain.WorkExperience, error) {
	profile, err := s.requireProfile(ctx, req.UserID)
	if err != nil {
		return domain.WorkExperience{}, err
	}

	jobTitle := strings.TrimSpace(req.JobTitle)
	if jobTitle == "" {
		return domain.WorkExperience{}, domain.ErrInvalidJobTitle
	}
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return domain.WorkExperience{}, domain.ErrInvalidCompany
	}

	exp := domain.WorkExperience{
		ID:            s.genID.Generate(),
		UserProfileID: profile.ID,
		JobTitle:      jobTitle,
		Company:       company,
		Location:      strings.TrimSpace(req.Location),
		StartDate:     strings.TrimSpace(req.StartDate),
		EndDate:       strings.TrimSpace(req.EndDate),
		Description:   strings.TrimSpace(req.Description),
		Achievements:  req.Achievements,
		IsCurrentRole: req.IsCurrentRole,
		CreatedAt:     s.clock.Now().UTC(),
	}
	if err := s.repo.InsertExperience(ctx, s.db, &exp); err != nil {
		return domain.WorkExperience{}, err
	}
	return exp, nil
}

func (s *Service) UpdateExperience(ctx context.Context, req domain.UpdateExperienceRequest) (domain.WorkExperience, error) {
	profile, err := s.requireProfile(ctx, req.UserID)
	if err != nil {
		return domain.WorkExperience{}, err
	}
	id, err := parseID(req.ExperienceID)
	if err != nil {
		return domain.WorkExperience{}, err
	}

	jobTitle := strings.TrimSpace(req.JobTitle)
	if jobTitle == "" {
		return domain.WorkExperience{}, domain.ErrInvalidJobTitle
	}
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return domain.WorkExperience{}, domain.ErrInvalidCompany
	}

	exp, err := s.repo.FindExperience(ctx, s.db, profile.ID, id)
	if err != nil {
		return domain.WorkExperience{}, err
	}
	if exp == nil {
		return domain.WorkExperience{}, domain.ErrNotFound
	}

	exp.JobTitle = jobTitle
	exp.Company = company
	exp.Location = strings.TrimSpace(req.Location)
	exp.StartDate = strings.TrimSpace(req.StartDate)
	exp.EndDate = strings.TrimSpace(req.EndDate)
	exp.Description = strings.TrimSpace(req.Description)
	exp.Achievements = req.Achievements
	exp.IsCurrentRole = req.IsCurrentRole
	if err := s.repo.UpdateExperience(ctx, s.db, exp); err != nil {
		return domain.WorkExperience{}, err
	}
	return *exp, nil
}

func (s *Service) RemoveExperience(ctx context.Context, userID, experienceID string) error {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return err
	}
	id, err := parseID(experienceID)
	if err != nil {
		return err
	}
	affected, err := s.repo.DeleteExperience(ctx, s.db, profile.ID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) AddEducation(ctx context.Context, req domain.AddEducationRequest) (domain.Education, error) {
	profile, err := s.requireProfile(ctx, req.UserID)
	if err != nil {
		return domain.Education{}, err
	}

	institution := strings.TrimSpace(req.Institution)
	degree := strings.TrimSpace(req.Degree)
	if institution == "" || degree == "" {
		return domain.Education{}, domain.ErrInvalidID
	}

	edu := domain.Education{
		ID:            s.genID.Generate(),
		UserProfileID: profile.ID,
		Institution:   institution,
		Degree:        degree,
		FieldOfStudy:  strings.TrimSpace(req.FieldOfStudy),
		StartDate:     strings.TrimSpace(req.StartDate),
		EndDate:       strings.TrimSpace(req.EndDate),
		GPA:           strings.TrimSpace(req.GPA),
		Description:   strings.TrimSpace(req.Description),
		CreatedAt:     s.clock.Now().UTC(),
	}
	if err := s.repo.InsertEducation(ctx, s.db, &edu); err != nil {
		return domain.Education{}, err
	}
	return edu, nil
}

func (s *Service) UpdateEducation(ctx context.Context, req domain.UpdateEducationRequest) (domain.Education, error) {
	profile, err := s.requireProfile(ctx, req.UserID)
	if err != nil {
		return domain.Education{}, err
	}
	id, err := parseID(req.EducationID)
	if err != nil {
		return domain.Education{}, err
	}

	institution := strings.TrimSpace(req.Institution)
	degree := strings.TrimSpace(req.Degree)
	if institution == "" || degree == "" {
		return domain.Education{}, domain.ErrInvalidID
	}

	edu, err := s.repo.FindEducation(ctx, s.db, profile.ID, id)
	if err != nil {
		return domain.Education{}, err
	}
	if edu == nil {
		return domain.Education{}, domain.ErrNotFound
	}

	edu.Institution = institution
	edu.Degree = degree
	edu.FieldOfStudy = strings.TrimSpace(req.FieldOfStudy)
	edu.StartDate = strings.TrimSpace(req.StartDate)
	edu.EndDate = strings.TrimSpace(req.EndDate)
	edu.GPA = strings.TrimSpace(req.GPA)
	edu.Description = strings.TrimSpace(req.Description)
	if err := s.repo.UpdateEducation(ctx, s.db, edu); err != nil {
		return domain.Education{}, err
	}
	return *edu, nil
}

func (s *Service) RemoveEducation(ctx context.Context, userID, educationID string) error {
	profile, err := s.requireProfile(ctx, userID)
	if err != nil {
		return err
	}
	id, err := parseID(educationID)
	if err != nil {
		return err
	}
	affected, err := s.repo.DeleteEducation(ctx, s.db, profile.ID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) requireProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	profile, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
