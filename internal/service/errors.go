package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these onto the HTTP
// error taxonomy; anything unrecognised becomes a 500.
var (
	ErrDataRoomNotFound  = errors.New("data room not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrStepNotFound      = errors.New("workflow step not found")
	ErrApprovalNotFound  = errors.New("approval request not found")
	ErrGrantNotFound     = errors.New("access grant not found")
	ErrRunNotFound       = errors.New("recompute run not found")
	ErrImportJobNotFound = errors.New("import job not found")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrRunInProgress     = errors.New("a recompute run is already in progress")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// RateLimitedError rejects a recompute trigger inside the cooldown window.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("recompute throttled, retry in %ds", e.RetryAfterSeconds)
}

// AsRateLimited unwraps err into a RateLimitedError if possible.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var limited *RateLimitedError
	if errors.As(err, &limited) {
		return limited, true
	}
	return nil, false
}

// FieldValidationError rejects a request value that fails parsing before it
// reaches struct validation, such as a malformed timestamp.
type FieldValidationError struct {
	Field  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AsFieldValidation unwraps err into a FieldValidationError if possible.
func AsFieldValidation(err error) (*FieldValidationError, bool) {
	var invalid *FieldValidationError
	if errors.As(err, &invalid) {
		return invalid, true
	}
	return nil, false
}
