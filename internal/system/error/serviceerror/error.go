// Package serviceerror defines the typed errors returned by the service layer.
package serviceerror

import "fmt"

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError is a classified service failure. Two ServiceErrors match under
// errors.Is when their codes are equal, so derived errors still match their base.
type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Name             string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
	cause            error
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5000",
		Name:             "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5001",
		Name:             "database_error",
		ErrorDescription: "A database error occurred",
	}

	NotificationError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5002",
		Name:             "notification_error",
		ErrorDescription: "The notification could not be delivered",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4000",
		Name:             "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4001",
		Name:             "validation_error",
		ErrorDescription: "Validation failed",
	}

	NotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4004",
		Name:             "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4009",
		Name:             "conflict",
		ErrorDescription: "Request conflicts with current state",
	}

	ConsentRequiredError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4010",
		Name:             "consent_required",
		ErrorDescription: "The user has not consented to this escalation",
	}
)

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.ErrorDescription, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.ErrorDescription)
}

// Is matches on the error code
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Unwrap returns the underlying cause, if any
func (e *ServiceError) Unwrap() error {
	return e.cause
}

// IsClientError reports whether the caller is at fault
func (e *ServiceError) IsClientError() bool {
	return e.Type == ClientErrorType
}

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Name:             baseError.Name,
		ErrorDescription: description,
	}
}

// WrapServiceError derives from baseError and keeps cause for logging.
// The cause is never rendered to API clients.
func WrapServiceError(baseError ServiceError, cause error) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Name:             baseError.Name,
		ErrorDescription: baseError.ErrorDescription,
		cause:            cause,
	}
}
