package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	applicationdomain "github.com/careercraft/careercraft/internal/application/domain"
	entitlementdomain "github.com/careercraft/careercraft/internal/entitlement/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateApplication(c *gin.Context) {
	var req struct {
		JobTitle       string `json:"job_title"`
		Company        string `json:"company"`
		JobDescription string `json:"job_description"`
		JobURL         string `json:"job_url"`
		Notes          string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	app, err := s.applicationSvc.Generate(c.Request.Context(), applicationdomain.GenerateRequest{
		UserID:         currentUserID(c),
		JobTitle:       req.JobTitle,
		Company:        req.Company,
		JobDescription: req.JobDescription,
		JobURL:         req.JobURL,
		Notes:          req.Notes,
	})
	if err != nil {
		if s.metrics != nil && errors.Is(err, entitlementdomain.ErrGenerationLimit) {
			s.metrics.RecordGateDenial(c.Request.Context(), "generate")
		}
		AbortWithError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordGeneration(c.Request.Context(), "")
	}
	c.JSON(http.StatusCreated, gin.H{"data": app})
}

func (s *Server) ListApplications(c *gin.Context) {
	apps, err := s.applicationSvc.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if apps == nil {
		apps = []applicationdomain.JobApplication{}
	}
	c.JSON(http.StatusOK, gin.H{"data": apps})
}

func (s *Server) UpdateApplicationStatus(c *gin.Context) {
	var req struct {
		Status      string  `json:"status"`
		Notes       *string `json:"notes"`
		InterviewAt *string `json:"interview_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var interviewAt *time.Time
	if req.InterviewAt != nil && strings.TrimSpace(*req.InterviewAt) != "" {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.InterviewAt))
		if err != nil {
			AbortWithError(c, newValidationError("interview_at", "invalid_interview_at", "invalid interview_at"))
			return
		}
		interviewAt = &parsed
	}

	app, err := s.applicationSvc.UpdateStatus(c.Request.Context(), applicationdomain.UpdateStatusRequest{
		UserID:        currentUserID(c),
		ApplicationID: c.Param("id"),
		Status:        req.Status,
		Notes:         req.Notes,
		InterviewAt:   interviewAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": app})
}

func (s *Server) InterviewPrep(c *gin.Context) {
	prep, err := s.applicationSvc.InterviewPrep(c.Request.Context(), applicationdomain.InterviewPrepRequest{
		UserID:        currentUserID(c),
		ApplicationID: c.Param("id"),
	})
	if err != nil {
		if s.metrics != nil && errors.Is(err, applicationdomain.ErrUpgradeRequired) {
			s.metrics.RecordGateDenial(c.Request.Context(), "interview_prep")
		}
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prep})
}
