package server

import (
	"errors"
	"net/http"
	"strings"

	applicationdomain "github.com/careercraft/careercraft/internal/application/domain"
	"github.com/careercraft/careercraft/internal/config"
	entitlementdomain "github.com/careercraft/careercraft/internal/entitlement/domain"
	profiledomain "github.com/careercraft/careercraft/internal/profile/domain"
	userdomain "github.com/careercraft/careercraft/internal/user/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}

	case errors.Is(err, ErrForbidden),
		errors.Is(err, entitlementdomain.ErrGenerationLimit),
		errors.Is(err, applicationdomain.ErrUpgradeRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "upgrade_required",
			Message: "this feature requires a higher tier",
		}

	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}

	case errors.Is(err, entitlementdomain.ErrTierChangeInFlight):
		return http.StatusConflict, errorPayload{
			Type:    "tier_change_in_progress",
			Message: "another tier change is in progress",
		}

	case errors.Is(err, entitlementdomain.ErrUnsupportedSubState):
		return http.StatusBadRequest, errorPayload{
			Type:    "unsupported_subscription_state",
			Message: "the subscription is not in a state this operation supports",
		}

	case errors.Is(err, entitlementdomain.ErrSubscriptionMismatch):
		return http.StatusBadRequest, errorPayload{
			Type:    "subscription_mismatch",
			Message: "the payment does not belong to the tracked subscription",
		}

	case errors.Is(err, entitlementdomain.ErrWebhookSignature):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_signature",
			Message: "webhook signature verification failed",
		}

	case errors.Is(err, entitlementdomain.ErrGatewayUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_unavailable",
			Message: "payment provider is unavailable",
		}

	case errors.Is(err, entitlementdomain.ErrGatewayNotConfigured),
		errors.Is(err, entitlementdomain.ErrUnknownPrice),
		errors.Is(err, config.ErrPriceNotConfigured),
		errors.Is(err, config.ErrPriceMalformed):
		return http.StatusBadRequest, errorPayload{
			Type:    "configuration_error",
			Message: "billing is not configured correctly",
		}

	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, entitlementdomain.ErrInvalidTier),
		errors.Is(err, entitlementdomain.ErrInvalidUser),
		errors.Is(err, userdomain.ErrInvalidID),
		errors.Is(err, profiledomain.ErrInvalidUser),
		errors.Is(err, profiledomain.ErrInvalidID),
		errors.Is(err, profiledomain.ErrInvalidJobTitle),
		errors.Is(err, profiledomain.ErrInvalidCompany),
		errors.Is(err, applicationdomain.ErrInvalidUser),
		errors.Is(err, applicationdomain.ErrInvalidID),
		errors.Is(err, applicationdomain.ErrInvalidJobTitle),
		errors.Is(err, applicationdomain.ErrInvalidCompany),
		errors.Is(err, applicationdomain.ErrInvalidDescription),
		errors.Is(err, applicationdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, entitlementdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, applicationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
