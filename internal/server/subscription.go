package server

import (
	"net/http"
	"strings"

	entitlementdomain "github.com/careercraft/careercraft/internal/entitlement/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetSubscription(c *gin.Context) {
	ent, err := s.entitlementSvc.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ent})
}

func (s *Server) ChangeTier(c *gin.Context) {
	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.entitlementSvc.ChangeTier(c.Request.Context(), entitlementdomain.ChangeTierRequest{
		UserID: currentUserID(c),
		Email:  strings.TrimSpace(c.GetHeader("X-User-Email")),
		Tier:   req.Tier,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordTierChange(c.Request.Context(), req.Tier, string(resp.Outcome))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSubscription(c *gin.Context) {
	ent, err := s.entitlementSvc.Cancel(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordTierChange(c.Request.Context(), string(ent.Tier), "cancelled")
	}
	c.JSON(http.StatusOK, gin.H{"data": ent})
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"payment_intent_id"`
		SubscriptionRef string `json:"subscription_ref"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.PaymentIntentID) == "" && strings.TrimSpace(req.SubscriptionRef) == "" {
		AbortWithError(c, newValidationError("payment_intent_id", "invalid_request", "payment_intent_id is required"))
		return
	}

	ent, err := s.entitlementSvc.ConfirmPayment(c.Request.Context(), entitlementdomain.ConfirmPaymentRequest{
		UserID:           currentUserID(c),
		PaymentIntentRef: strings.TrimSpace(req.PaymentIntentID),
		SubscriptionRef:  strings.TrimSpace(req.SubscriptionRef),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ent})
}
