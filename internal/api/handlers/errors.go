package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"classroom-service/internal/models"
	"classroom-service/internal/services"
	"classroom-service/internal/storage"

	"github.com/gin-gonic/gin"
)

// respondError maps service sentinel errors onto HTTP statuses. Anything
// unmapped is a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrAssignmentNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrFileNotFound),
		errors.Is(err, services.ErrNoPendingSignup):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})

	case errors.Is(err, services.ErrNotCourseMember),
		errors.Is(err, services.ErrNotCourseCreator),
		errors.Is(err, services.ErrNotSubmissionOwner),
		errors.Is(err, services.ErrNotMessageAuthor),
		errors.Is(err, services.ErrCreatorCannotSubmit),
		errors.Is(err, services.ErrCreatorCannotLeave),
		errors.Is(err, services.ErrCannotDeleteSelf):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrCodeExpired):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrAlreadyGraded):
		c.JSON(http.StatusConflict, models.ErrorResponse{Code: "CONFLICT", Message: err.Error()})

	case errors.Is(err, services.ErrCourseArchived),
		errors.Is(err, services.ErrInvalidJoinCode),
		errors.Is(err, services.ErrInvalidGradingConfig),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrAttemptLimitReached),
		errors.Is(err, services.ErrSubmissionViewed),
		errors.Is(err, services.ErrAttemptsExhausted),
		errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, storage.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})

	case errors.Is(err, services.ErrResendThrottled):
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Code: "RATE_LIMITED", Message: err.Error()})

	case errors.Is(err, services.ErrEmailDeliveryFailed):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Code: "EMAIL_DELIVERY_FAILED", Message: err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Code: "INTERNAL", Message: "internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Code: "BAD_REQUEST", Message: "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
