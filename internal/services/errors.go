package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTriggerPayload    = errors.New("invalid trigger payload")
	ErrMissingRequiredField     = errors.New("missing required field")
	ErrIdentityCreationFailed   = errors.New("identity creation failed")
	ErrIdentityDeletionFailed   = errors.New("identity deletion failed")
	ErrCompanyCreationFailed    = errors.New("company creation failed")
	ErrUserRecordCreationFailed = errors.New("user record creation failed")
	ErrDuplicateAccount         = errors.New("account already exists")
	ErrIntegrationNotActive     = errors.New("integration not active")
	ErrClientNotSynced          = errors.New("client not synced")
	ErrNoCalendarsFound         = errors.New("no calendars found")
	ErrCompanyNotFound          = errors.New("company not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrSeatLimitReached         = errors.New("seat limit reached")
)

// StepError wraps a provisioning step failure with the outcome of the
// compensation that followed it. The original failure stays the primary
// error; compensation problems are carried alongside, never in its place.
type StepError struct {
	Step          string
	Err           error
	CompensateErr error
}

func (e *StepError) Error() string {
	if e.CompensateErr != nil {
		return fmt.Sprintf("%s: %v (rollback incomplete: %v)", e.Step, e.Err, e.CompensateErr)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
