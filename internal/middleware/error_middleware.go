package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
)

// HandleAPIError maps service errors to HTTP responses. When the error is a
// CustomError its message is surfaced verbatim; the ownership rejection in
// particular carries the blocking staff member's name.
func HandleAPIError(c *gin.Context, err error) {
	message := func(fallback string) string {
		var customErr *apperrors.CustomError
		if errors.As(err, &customErr) && customErr.Message != "" {
			return customErr.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrCaseNotFound):
		c.JSON(404, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("Case not found"))))
	case errors.Is(err, apperrors.ErrNotificationNotFound):
		c.JSON(404, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("Notification not found"))))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(404, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("User not found"))))
	case errors.Is(err, apperrors.ErrMessageNotFound):
		c.JSON(404, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("Message not found"))))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(404, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message("Resource not found"))))
	case errors.Is(err, apperrors.ErrCaseAlreadyOwned):
		c.JSON(403, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, message("This case is being handled by another staff member"))))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(403, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeForbidden, message("Permission denied"))))
	case errors.Is(err, apperrors.ErrEmptyMessage):
		c.JSON(400, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message("A message needs a body or an attachment"))))
	case errors.Is(err, apperrors.ErrInvalidStatus):
		c.JSON(400, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message("Invalid case status")).WithField("status")))
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(400, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message("Validation failed"))))
	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(401, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))
	case errors.Is(err, apperrors.ErrTokenInvalid):
		c.JSON(401, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))
	default:
		c.JSON(500, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
