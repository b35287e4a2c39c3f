package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned when the target record does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrEditLimit is returned when a non-privileged actor tries to change
	// a record's payment status after its one allowed edit.
	ErrEditLimit = errors.New("payment status can only be changed once")

	// ErrReasonRequired is returned when a transition to rejected carries
	// no reason.
	ErrReasonRequired = errors.New("a rejection reason is required")

	// ErrConflict is returned when a conditional update matched no rows
	// because another actor changed the record first.
	ErrConflict = errors.New("record was modified concurrently, refetch and retry")

	// ErrNoActiveSurvey is returned when an answer arrives with no open
	// survey session for the caller.
	ErrNoActiveSurvey = errors.New("no survey question is pending")
)

// ValidationError blocks a submission for a user-correctable reason
// (payee mismatch or duplicate invoice number).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InvalidTransitionError reports a status change outside the transition table.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// StoreError wraps a failed persistence call. It is surfaced verbatim to
// the actor; no retry is attempted.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
