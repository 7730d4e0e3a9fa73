package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/careercraft/careercraft/internal/generator/domain"
	"go.uber.org/zap"
)

// Composer builds documents from the profile alone, without an external
// model. It keeps the product usable offline and is the fallback when no
// model provider is configured.
type Composer struct {
	log *zap.Logger
}

func NewComposer(log *zap.Logger) *Composer {
	return &Composer{log: log.Named("generator.local")}
}

func (c *Composer) Generate(_ context.Context, req domain.GenerateRequest) (domain.GeneratedPackage, error) {
	name := applicantName(req.User)

	var resume strings.Builder
	fmt.Fprintf(&resume, "%s\n%s\n\n", name, req.User.Email)
	fmt.Fprintf(&resume, "Target Role: %s at %s\n\n", req.JobTitle, req.Company)

	if req.Profile != nil {
		if req.Profile.ProfessionalSummary != "" {
			fmt.Fprintf(&resume, "Summary\n%s\n\n", req.Profile.ProfessionalSummary)
		}
		if len(req.Profile.Skills) > 0 {
			fmt.Fprintf(&resume, "Skills\n%s\n\n", strings.Join(req.Profile.Skills, ", "))
		}
		if len(req.Profile.WorkExperiences) > 0 {
			resume.WriteString("Experience\n")
			for _, exp := range req.Profile.WorkExperiences {
				end := exp.EndDate
				if exp.IsCurrentRole {
					end = "present"
				}
				fmt.Fprintf(&resume, "- %s, %s (%s - %s)\n  %s\n", exp.JobTitle, exp.Company, exp.StartDate, end, exp.Description)
				for _, a := range exp.Achievements {
					fmt.Fprintf(&resume, "  * %s\n", a)
				}
			}
			resume.WriteString("\n")
		}
		if len(req.Profile.Educations) > 0 {
			resume.WriteString("Education\n")
			for _, edu := range req.Profile.Educations {
				fmt.Fprintf(&resume, "- %s, %s", edu.Degree, edu.Institution)
				if edu.FieldOfStudy != "" {
					fmt.Fprintf(&resume, " (%s)", edu.FieldOfStudy)
				}
				resume.WriteString("\n")
			}
			resume.WriteString("\n")
		}
		if len(req.Profile.Certifications) > 0 {
			fmt.Fprintf(&resume, "Certifications\n%s\n", strings.Join(req.Profile.Certifications, ", "))
		}
	}

	var cover strings.Builder
	fmt.Fprintf(&cover, "Dear %s Hiring Team,\n\n", req.Company)
	fmt.Fprintf(&cover, "I am writing to apply for the %s position at %s.", req.JobTitle, req.Company)
	if req.Profile != nil && req.Profile.ProfessionalSummary != "" {
		fmt.Fprintf(&cover, " %s", req.Profile.ProfessionalSummary)
	}
	cover.WriteString("\n\n")
	if req.Profile != nil && len(req.Profile.WorkExperiences) > 0 {
		latest := req.Profile.WorkExperiences[0]
		fmt.Fprintf(&cover, "Most recently I worked as %s at %s, where %s\n\n", latest.JobTitle, latest.Company, lowerFirst(latest.Description))
	}
	fmt.Fprintf(&cover, "I would welcome the opportunity to discuss how my background fits your needs.\n\nSincerely,\n%s\n", name)

	return domain.GeneratedPackage{
		Resume:      resume.String(),
		CoverLetter: cover.String(),
	}, nil
}

func (c *Composer) PrepareInterview(_ context.Context, req domain.InterviewPrepRequest) (domain.InterviewPrep, error) {
	prep := domain.InterviewPrep{
		Questions: []string{
			fmt.Sprintf("Why do you want to work at %s?", req.Company),
			fmt.Sprintf("What attracts you to the %s role?", req.JobTitle),
			"Walk me through a project you are proud of.",
			"Describe a time you disagreed with a teammate and how you resolved it.",
			"Where do you want to grow in the next few years?",
		},
	}

	if req.Profile != nil {
		for _, skill := range req.Profile.Skills {
			prep.Talking = append(prep.Talking, fmt.Sprintf("Highlight your experience with %s relevant to the role.", skill))
			if len(prep.Talking) >= 5 {
				break
			}
		}
		if len(req.Profile.WorkExperiences) > 0 {
			latest := req.Profile.WorkExperiences[0]
			prep.Talking = append(prep.Talking, fmt.Sprintf("Connect your work at %s to %s's needs from the posting.", latest.Company, req.Company))
		}
	}
	if len(prep.Talking) == 0 {
		prep.Talking = []string{"Complete your profile to get tailored talking points."}
	}

	return prep, nil
}

func applicantName(a domain.Applicant) string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return "Applicant"
	}
	return name
}

func lowerFirst(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "I delivered measurable results."
	}
	return strings.ToLower(s[:1]) + s[1:]
}
