package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/careercraft/careercraft/internal/clock"
	"github.com/careercraft/careercraft/internal/profile/domain"
	"github.com/careercraft/careercraft/internal/profile/repository"
	"github.com/careercraft/careercraft/internal/profile/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:profiledb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserProfile{}, &domain.WorkExperience{}, &domain.Education{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	return service.New(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Save(ctx, domain.SaveProfileRequest{
		UserID:              "user-1",
		ProfessionalSummary: "Backend engineer.",
		Skills:              []string{"Go", "PostgreSQL"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, []string(created.Skills))

	updated, err := svc.Save(ctx, domain.SaveProfileRequest{
		UserID:              "user-1",
		ProfessionalSummary: "Staff engineer.",
		Skills:              []string{"Go"},
		LinkedinURL:         "https://linkedin.com/in/jane",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "update must not mint a new profile")
	assert.Equal(t, "Staff engineer.", updated.ProfessionalSummary)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "https://linkedin.com/in/jane", got.LinkedinURL)
}

func TestGetUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestExperienceLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddExperience(ctx, domain.AddExperienceRequest{
		UserID:   "user-1",
		JobTitle: "Engineer",
		Company:  "Acme",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "experience requires an existing profile")

	_, err = svc.Save(ctx, domain.SaveProfileRequest{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.AddExperience(ctx, domain.AddExperienceRequest{UserID: "user-1", Company: "Acme"})
	assert.ErrorIs(t, err, domain.ErrInvalidJobTitle)

	exp, err := svc.AddExperience(ctx, domain.AddExperienceRequest{
		UserID:        "user-1",
		JobTitle:      "Engineer",
		Company:       "Acme",
		StartDate:     "2021-03",
		IsCurrentRole: true,
		Achievements:  []string{"Shipped v2"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.WorkExperiences, 1)
	assert.Equal(t, "Engineer", got.WorkExperiences[0].JobTitle)

	err = svc.RemoveExperience(ctx, "user-1", exp.ID.String())
	require.NoError(t, err)

	err = svc.RemoveExperience(ctx, "user-1", exp.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err = svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got.WorkExperiences)
}

func TestUpdateExperience(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveProfileRequest{UserID: "user-1"})
	require.NoError(t, err)

	exp, err := svc.AddExperience(ctx, domain.AddExperienceRequest{
		UserID:        "user-1",
		JobTitle:      "Engineer",
		Company:       "Acme",
		StartDate:     "2021-03",
		IsCurrentRole: true,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateExperience(ctx, domain.UpdateExperienceRequest{
		UserID:       "user-1",
		ExperienceID: exp.ID.String(),
		JobTitle:     "Senior Engineer",
		Company:      "Acme",
		StartDate:    "2021-03",
		EndDate:      "2024-01",
		Achievements: []string{"Led the platform team"},
	})
	require.NoError(t, err)
	assert.Equal(t, exp.ID, updated.ID, "update must keep the entry id")
	assert.Equal(t, "Senior Engineer", updated.JobTitle)
	assert.False(t, updated.IsCurrentRole)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.WorkExperiences, 1)
	assert.Equal(t, []string{"Led the platform team"}, []string(got.WorkExperiences[0].Achievements))

	_, err = svc.UpdateExperience(ctx, domain.UpdateExperienceRequest{
		UserID:       "user-1",
		ExperienceID: exp.ID.String(),
		Company:      "Acme",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidJobTitle)

	_, err = svc.UpdateExperience(ctx, domain.UpdateExperienceRequest{
		UserID:       "user-2",
		ExperienceID: exp.ID.String(),
		JobTitle:     "Intruder",
		Company:      "Evil Corp",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "foreign entries must not be editable")
}

func TestEducationLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveProfileRequest{UserID: "user-1"})
	require.NoError(t, err)

	edu, err := svc.AddEducation(ctx, domain.AddEducationRequest{
		UserID:      "user-1",
		Institution: "State University",
		Degree:      "BSc",
		GPA:         "3.8",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Educations, 1)
	assert.Equal(t, "3.8", got.Educations[0].GPA)

	updated, err := svc.UpdateEducation(ctx, domain.UpdateEducationRequest{
		UserID:       "user-1",
		EducationID:  edu.ID.String(),
		Institution:  "State University",
		Degree:       "MSc",
		FieldOfStudy: "Computer Science",
	})
	require.NoError(t, err)
	assert.Equal(t, edu.ID, updated.ID)
	assert.Equal(t, "MSc", updated.Degree)
	assert.Empty(t, updated.GPA, "omitted fields clear on update")

	_, err = svc.UpdateEducation(ctx, domain.UpdateEducationRequest{
		UserID:      "user-1",
		EducationID: edu.ID.String(),
		Degree:      "MSc",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	require.NoError(t, svc.RemoveEducation(ctx, "user-1", edu.ID.String()))
	assert.ErrorIs(t, svc.RemoveEducation(ctx, "user-1", edu.ID.String()), domain.ErrNotFound)
}

func TestRemoveExperienceScopedToOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveProfileRequest{UserID: "user-1"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, domain.SaveProfileRequest{UserID: "user-2"})
	require.NoError(t, err)

	exp, err := svc.AddExperience(ctx, domain.AddExperienceRequest{
		UserID:   "user-1",
		JobTitle: "Engineer",
		Company:  "Acme",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveExperience(ctx, "user-2", exp.ID.String()), domain.ErrNotFound)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got.WorkExperiences, 1)
}
