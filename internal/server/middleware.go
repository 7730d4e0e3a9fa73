package server

import (
	"strings"

	userdomain "github.com/careercraft/careercraft/internal/user/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ctxUserIDKey = "user_id"

// UserRequired trusts the identity headers asserted by the fronting
// identity-aware proxy. Requests without a subject are rejected before
// any handler runs.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if _, err := s.userSvc.Ensure(c.Request.Context(), userdomain.EnsureUserRequest{
			ID:        userID,
			Email:     c.GetHeader("X-User-Email"),
			FirstName: c.GetHeader("X-User-First-Name"),
			LastName:  c.GetHeader("X-User-Last-Name"),
		}); err != nil {
			s.log.Error("identity upsert failed", zap.String("user_id", userID), zap.Error(err))
			AbortWithError(c, err)
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
