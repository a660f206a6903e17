package utils

import (
	"errors"
	"net/http"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/system/correlation"
	"github.com/carecompanion/carecompanion-api/internal/system/error/serviceerror"
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "userID"

// SendErrorResponse sends an error JSON response
func SendErrorResponse(c *gin.Context, statusCode int, errCode, message, details string) {
	c.JSON(statusCode, models.ErrorResponse{
		Code:    errCode,
		Message: message,
		Details: details,
	})
}

// SendOKResponse sends a 200 OK response
func SendOKResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendBadRequestError sends a 400 Bad Request error
func SendBadRequestError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeBadRequest, message, details)
}

// SendUnauthorizedError sends a 401 Unauthorized error
func SendUnauthorizedError(c *gin.Context, message string) {
	SendErrorResponse(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, message, "")
}

// SendInternalServerError sends a 500 Internal Server Error
func SendInternalServerError(c *gin.Context, message, details string) {
	SendErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternalError, message, details)
}

// SendValidationError sends a validation error response
func SendValidationError(c *gin.Context, details string) {
	SendErrorResponse(c, http.StatusBadRequest, models.ErrCodeValidationError, "Validation failed", details)
}

// SendServiceError writes err with the status matching its ServiceError code.
// Server errors never expose their cause.
func SendServiceError(c *gin.Context, err error) {
	var svcErr *serviceerror.ServiceError
	if !errors.As(err, &svcErr) {
		SendInternalServerError(c, "Internal server error", "")
		return
	}

	code := errorCodeFor(svcErr)
	message := svcErr.ErrorDescription
	if !svcErr.IsClientError() {
		message = serviceErrorBase(svcErr).ErrorDescription
	}

	SendErrorResponse(c, models.HTTPStatusForErrorCode(code), code, message, "")
}

func errorCodeFor(err *serviceerror.ServiceError) string {
	switch err.Code {
	case serviceerror.ValidationError.Code:
		return models.ErrCodeValidationError
	case serviceerror.InvalidRequestError.Code:
		return models.ErrCodeBadRequest
	case serviceerror.NotFoundError.Code:
		return models.ErrCodeNotFound
	case serviceerror.ConflictError.Code:
		return models.ErrCodeNotPending
	case serviceerror.ConsentRequiredError.Code:
		return models.ErrCodeConsentRequired
	case serviceerror.DatabaseError.Code:
		return models.ErrCodeDatabaseError
	case serviceerror.NotificationError.Code:
		return models.ErrCodeNotificationError
	default:
		return models.ErrCodeInternalError
	}
}

func serviceErrorBase(err *serviceerror.ServiceError) serviceerror.ServiceError {
	switch err.Code {
	case serviceerror.DatabaseError.Code:
		return serviceerror.DatabaseError
	case serviceerror.NotificationError.Code:
		return serviceerror.NotificationError
	default:
		return serviceerror.InternalServerError
	}
}

// GetUserIDFromContext extracts the user id set by the identity middleware
func GetUserIDFromContext(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// GetModeratorFromContext returns the basic-auth user, or "moderator" when
// moderator authentication is disabled
func GetModeratorFromContext(c *gin.Context) string {
	if user := c.GetString(gin.AuthUserKey); user != "" {
		return user
	}
	return "moderator"
}

// GetCorrelationIDFromContext extracts correlation ID from context
func GetCorrelationIDFromContext(c *gin.Context) string {
	if id := c.GetString(correlation.GinKey); id != "" {
		return id
	}
	return correlation.FromContext(c.Request.Context())
}
