package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StripeWebhook consumes payment notifications. The endpoint is
// authenticated by signature, not by user identity, and always answers
// 200 for events it deliberately ignores so the provider stops retrying.
func (s *Server) StripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	event, err := s.gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if event == nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if s.metrics != nil {
		s.metrics.RecordPaymentEvent(c.Request.Context(), event.Type)
	}

	if err := s.entitlementSvc.HandlePaymentEvent(c.Request.Context(), *event); err != nil {
		s.log.Error("webhook processing failed",
			zap.String("type", event.Type),
			zap.String("subscription_ref", event.SubscriptionRef),
			zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
