package server

import (
	"errors"
	"net/http"

	"github.com/coworklabs/perks/internal/providers/directory"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	rewarddomain "github.com/coworklabs/perks/internal/reward/domain"
	"github.com/gin-gonic/gin"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	// Conflict detail, when available.
	ExistingCode  string `json:"existing_code,omitempty"`
	CurrentStatus string `json:"current_status,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware translates service errors pushed onto the gin
// context into structured JSON responses.
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

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var otherCode *referraldomain.OtherCodeConflictError
	if errors.As(err, &otherCode) {
		return http.StatusConflict, errorPayload{
			Type:         "conflict",
			Message:      err.Error(),
			ExistingCode: otherCode.ExistingCode,
		}
	}

	var notEligible *referraldomain.NotEligibleError
	if errors.As(err, &notEligible) {
		return http.StatusConflict, errorPayload{
			Type:          "conflict",
			Message:       err.Error(),
			CurrentStatus: string(notEligible.Status),
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, referraldomain.ErrInvalidArgument),
		errors.Is(err, codedomain.ErrInvalidOwner),
		errors.Is(err, codedomain.ErrInvalidOwnerType),
		errors.Is(err, rewarddomain.ErrInvalidSubscriptionValue):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, codedomain.ErrNotFound),
		errors.Is(err, referraldomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, referraldomain.ErrAlreadyReferred),
		errors.Is(err, referraldomain.ErrSelfReferral):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, referraldomain.ErrDataInvalid):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "data_invalid",
			Message: err.Error(),
		}
	case errors.Is(err, codedomain.ErrCodeSpaceExhausted),
		errors.Is(err, directory.ErrRequestFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "dependency_failure",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
