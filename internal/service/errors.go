package service

import (
	"errors"

	"github.com/carecompanion/carecompanion-api/internal/system/error/serviceerror"
)

var (
	errEscalationNotFound = serviceerror.CustomServiceError(serviceerror.NotFoundError, "escalation not found")
	errUserNotFound       = serviceerror.CustomServiceError(serviceerror.NotFoundError, "user not found")
	errNoPendingConsent   = serviceerror.CustomServiceError(serviceerror.NotFoundError, "no pending escalation found for this conversation")
	errNotPending         = serviceerror.CustomServiceError(serviceerror.ConflictError, "escalation is not pending")
	errConsentMissing     = serviceerror.CustomServiceError(serviceerror.ConsentRequiredError, "the user has not confirmed consent for this escalation")
)

func validationError(err error) *serviceerror.ServiceError {
	return serviceerror.CustomServiceError(serviceerror.ValidationError, err.Error())
}

// asServiceError returns err unchanged when it already is a ServiceError and
// wraps it in base otherwise
func asServiceError(err error, base serviceerror.ServiceError) error {
	var svcErr *serviceerror.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	return serviceerror.WrapServiceError(base, err)
}
