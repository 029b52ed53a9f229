package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

// HandleAPIError maps domain errors to HTTP responses. Message and details
// come from the wrapped CustomError when one is present.
func HandleAPIError(c *gin.Context, err error) {
	status, code, message := classify(err)

	detail := dto.NewErrorDetail(code, message)

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		if customErr.Message != "" {
			detail.Message = customErr.Message
		}
		if customErr.Details != nil {
			detail = detail.WithDetails(customErr.Details)
		}
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrSponsorshipRequired):
		return http.StatusForbidden, dto.ErrorCodeSponsorshipRequired, "An active sponsorship is required"
	case errors.Is(err, apperrors.ErrNotAParticipant):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Not a participant in this conversation"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrApplicationNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrFieldReviewNotFound),
		errors.Is(err, apperrors.ErrSponsorshipNotFound),
		errors.Is(err, apperrors.ErrDisbursementNotFound),
		errors.Is(err, apperrors.ErrConversationNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrInvalidStatus):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Unknown status value"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusConflict, dto.ErrorCodeInvalidState, "Status transition not allowed"
	case errors.Is(err, apperrors.ErrIncompleteDocuments):
		return http.StatusConflict, dto.ErrorCodeIncompleteDocuments, "Required documents are missing"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusConflict, dto.ErrorCodeInsufficientFunds, "Amount exceeds undisbursed balance"
	case errors.Is(err, apperrors.ErrApplicationNotApproved):
		return http.StatusConflict, dto.ErrorCodeInvalidState, "Student has no approved application"
	case errors.Is(err, apperrors.ErrNotAFieldOfficer):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Assignee does not hold the field officer role"
	case errors.Is(err, apperrors.ErrResourceAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
