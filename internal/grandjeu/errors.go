package grandjeu

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectCode      = errors.New("incorrect code")
	ErrIncorrectAnswer    = errors.New("incorrect answer")
	ErrChallengeLocked    = errors.New("challenge is locked")
	ErrCodeRequired       = errors.New("code must be entered before answering")
	ErrAlreadyCompleted   = errors.New("challenge already completed")
	ErrNoQuestion         = errors.New("challenge has no question")
	ErrDuplicateTeam      = errors.New("team already exists")
	ErrDuplicateChallenge = errors.New("challenge already exists")

	// ErrPersistence wraps every failed store write.
	ErrPersistence = errors.New("persistence write failed")
)

// ValidationError reports a required input that was missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + " is required"
	}
	return e.Field + " " + e.Reason
}

func missing(field string) error {
	return &ValidationError{Field: field}
}

// PersistenceError marks err as a failed write.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
