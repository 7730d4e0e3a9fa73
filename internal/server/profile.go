package server

import (
	"net/http"

	profiledomain "github.com/careercraft/careercraft/internal/profile/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetProfile(c *gin.Context) {
	p, err := s.profileSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) SaveProfile(c *gin.Context) {
	var req struct {
		ProfessionalSummary string   `json:"professional_summary"`
		Skills              []string `json:"skills"`
		Certifications      []string `json:"certifications"`
		Languages           []string `json:"languages"`
		LinkedinURL         string   `json:"linkedin_url"`
		PortfolioURL        string   `json:"portfolio_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	p, err := s.profileSvc.Save(c.Request.Context(), profiledomain.SaveProfileRequest{
		UserID:              currentUserID(c),
		ProfessionalSummary: req.ProfessionalSummary,
		Skills:              req.Skills,
		Certifications:      req.Certifications,
		Languages:           req.Languages,
		LinkedinURL:         req.LinkedinURL,
		PortfolioURL:        req.PortfolioURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": p})
}

func (s *Server) AddExperience(c *gin.Context) {
	var req struct {
		JobTitle      string   `json:"job_title"`
		Company       string   `json:"company"`
		Location      string   `json:"location"`
		StartDate     string   `json:"start_date"`
		EndDate       string   `json:"end_date"`
		Description   string   `json:"description"`
		Achievements  []string `json:"achievements"`
		IsCurrentRole bool     `json:"is_current_role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	exp, err := s.profileSvc.AddExperience(c.Request.Context(), profiledomain.AddExperienceRequest{
		UserID:        currentUserID(c),
		JobTitle:      req.JobTitle,
		Company:       req.Company,
		Location:      req.Location,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Description:   req.Description,
		Achievements:  req.Achievements,
		IsCurrentRole: req.IsCurrentRole,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": exp})
}

func (s *Server) UpdateExperience(c *gin.Context) {
	var req struct {
		JobTitle      string   `json:"job_title"`
		Company       string   `json:"company"`
		Location      string   `json:"location"`
		StartDate     string   `json:"start_date"`
		EndDate       string   `json:"end_date"`
		Description   string   `json:"description"`
		Achievements  []string `json:"achievements"`
		IsCurrentRole bool     `json:"is_current_role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	exp, err := s.profileSvc.UpdateExperience(c.Request.Context(), profiledomain.UpdateExperienceRequest{
		UserID:        currentUserID(c),
		ExperienceID:  c.Param("id"),
		JobTitle:      req.JobTitle,
		Company:       req.Company,
		Location:      req.Location,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Description:   req.Description,
		Achievements:  req.Achievements,
		IsCurrentRole: req.IsCurrentRole,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": exp})
}

func (s *Server) RemoveExperience(c *gin.Context) {
	if err := s.profileSvc.RemoveExperience(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) AddEducation(c *gin.Context) {
	var req struct {
		Institution  string `json:"institution"`
		Degree       string `json:"degree"`
		FieldOfStudy string `json:"field_of_study"`
		StartDate    string `json:"start_date"`
		EndDate      string `json:"end_date"`
		GPA          string `json:"gpa"`
		Description  string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	edu, err := s.profileSvc.AddEducation(c.Request.Context(), profiledomain.AddEducationRequest{
		UserID:       currentUserID(c),
		Institution:  req.Institution,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		GPA:          req.GPA,
		Description:  req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": edu})
}

func (s *Server) UpdateEducation(c *gin.Context) {
	var req struct {
		Institution  string `json:"institution"`
		Degree       string `json:"degree"`
		FieldOfStudy string `json:"field_of_study"`
		StartDate    string `json:"start_date"`
		EndDate      string `json:"end_date"`
		GPA          string `json:"gpa"`
		Description  string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	edu, err := s.profileSvc.UpdateEducation(c.Request.Context(), profiledomain.UpdateEducationRequest{
		UserID:       currentUserID(c),
		EducationID:  c.Param("id"),
		Institution:  req.Institution,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		GPA:          req.GPA,
		Description:  req.Description,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": edu})
}

func (s *Server) RemoveEducation(c *gin.Context) {
	if err := s.profileSvc.RemoveEducation(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
