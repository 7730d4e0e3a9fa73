package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/careercraft/careercraft/internal/application/domain"
	"github.com/careercraft/careercraft/internal/clock"
	"github.com/careercraft/careercraft/internal/config"
	entitlementdomain "github.com/careercraft/careercraft/internal/entitlement/domain"
	generatordomain "github.com/careercraft/careercraft/internal/generator/domain"
	profiledomain "github.com/careercraft/careercraft/internal/profile/domain"
	userdomain "github.com/careercraft/careercraft/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Repo         domain.Repository
	Entitlements entitlementdomain.Service
	Users        userdomain.Service
	Profiles     profiledomain.Service
	Generator    generatordomain.Generator
	Plans        *config.PlanConfigHolder
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	repo         domain.Repository
	entitlements entitlementdomain.Service
	users        userdomain.Service
	profiles     profiledomain.Service
	generator    generatordomain.Generator
	plans        *config.PlanConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("application.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         p.Repo,
		entitlements: p.Entitlements,
		users:        p.Users,
		profiles:     p.Profiles,
		generator:    p.Generator,
		plans:        p.Plans,
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (domain.JobApplication, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.JobApplication{}, domain.ErrInvalidUser
	}
	jobTitle := strings.TrimSpace(req.JobTitle)
	if jobTitle == "" {
		return domain.JobApplication{}, domain.ErrInvalidJobTitle
	}
	company := strings.TrimSpace(req.Company)
	if company == "" {
		return domain.JobApplication{}, domain.ErrInvalidCompany
	}
	description := strings.TrimSpace(req.JobDescription)
	if description == "" {
		return domain.JobApplication{}, domain.ErrInvalidDescription
	}

	if _, err := s.entitlements.AuthorizeGeneration(ctx, userID); err != nil {
		return domain.JobApplication{}, err
	}

	applicant, profile := s.applicantContext(ctx, userID)

	pkg, err := s.generator.Generate(ctx, generatordomain.GenerateRequest{
		JobTitle:       jobTitle,
		Company:        company,
		JobDescription: description,
		User:           applicant,
		Profile:        profile,
	})
	if err != nil {
		return domain.JobApplication{}, err
	}

	now := s.clock.Now().UTC()
	app := domain.JobApplication{
		ID:                 s.genID.Generate(),
		UserID:             userID,
		JobTitle:           jobTitle,
		Company:            company,
		JobDescription:     description,
		JobURL:             strings.TrimSpace(req.JobURL),
		ApplicationStatus:  domain.StatusApplied,
		AppliedAt:          now,
		Notes:              strings.TrimSpace(req.Notes),
		ResumeContent:      pkg.Resume,
		CoverLetterContent: pkg.CoverLetter,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, &app); err != nil {
		return domain.JobApplication{}, err
	}

	// Count the generation only once the record exists, so a failed
	// insert never burns free-tier quota.
	if err := s.entitlements.RecordGeneration(ctx, userID); err != nil {
		s.log.Error("usage increment failed after generation",
			zap.String("user_id", userID), zap.Error(err))
	}

	s.log.Info("application generated",
		zap.String("user_id", userID),
		zap.String("company", company),
		zap.String("job_title", jobTitle))
	return app, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]domain.JobApplication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	ent, err := s.entitlements.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !entitlementdomain.CanViewHistory(ent.Tier) {
		return []domain.JobApplication{}, nil
	}

	limit := entitlementdomain.HistoryLimit(ent.Tier, s.plans.Get().StandardHistoryLimit)
	return s.repo.ListByUser(ctx, s.db, userID, limit)
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.JobApplication, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.JobApplication{}, domain.ErrInvalidUser
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return domain.JobApplication{}, err
	}
	id, err := parseID(req.ApplicationID)
	if err != nil {
		return domain.JobApplication{}, err
	}

	app, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return domain.JobApplication{}, err
	}
	if app == nil {
		return domain.JobApplication{}, domain.ErrNotFound
	}

	app.ApplicationStatus = status
	if req.Notes != nil {
		app.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.InterviewAt != nil {
		app.InterviewAt = req.InterviewAt
	}
	app.UpdatedAt = s.clock.Now().UTC()
	if err := s.repo.Update(ctx, s.db, app); err != nil {
		return domain.JobApplication{}, err
	}
	return *app, nil
}

func (s *Service) InterviewPrep(ctx context.Context, req domain.InterviewPrepRequest) (generatordomain.InterviewPrep, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return generatordomain.InterviewPrep{}, domain.ErrInvalidUser
	}

	ent, err := s.entitlements.Get(ctx, userID)
	if err != nil {
		return generatordomain.InterviewPrep{}, err
	}
	if !entitlementdomain.CanUseInterviewPrep(ent.Tier) {
		return generatordomain.InterviewPrep{}, domain.ErrUpgradeRequired
	}

	id, err := parseID(req.ApplicationID)
	if err != nil {
		return generatordomain.InterviewPrep{}, err
	}
	app, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return generatordomain.InterviewPrep{}, err
	}
	if app == nil {
		return generatordomain.InterviewPrep{}, domain.ErrNotFound
	}

	applicant, profile := s.applicantContext(ctx, userID)
	return s.generator.PrepareInterview(ctx, generatordomain.InterviewPrepRequest{
		JobTitle:       app.JobTitle,
		Company:        app.Company,
		JobDescription: app.JobDescription,
		User:           applicant,
		Profile:        profile,
	})
}

// applicantContext gathers whatever identity and profile data exists; a
// missing profile is normal for new users and never blocks generation.
func (s *Service) applicantContext(ctx context.Context, userID string) (generatordomain.Applicant, *profiledomain.UserProfile) {
	var applicant generatordomain.Applicant
	if user, err := s.users.Get(ctx, userID); err == nil {
		applicant = generatordomain.Applicant{
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
		}
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, profiledomain.ErrNotFound) {
			s.log.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return applicant, nil
	}
	return applicant, &profile
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
