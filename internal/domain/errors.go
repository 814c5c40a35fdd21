package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrClaimLost is returned when a guarded queue transition finds the
	// worker's lease gone (expired and reclaimed by another worker).
	ErrClaimLost = errors.New("notification claim lost")
)

// ValidationError rejects a malformed input before anything is stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError rejects an operation the current notification status
// does not allow, e.g. marking an undelivered notification as read.
type InvalidStateError struct {
	Op      string
	Current NotificationStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s notification in status %s", e.Op, e.Current)
}

// EvaluationError reports a budget evaluation that could not run. It is
// logged and swallowed; it never fails the transaction write that caused it.
type EvaluationError struct {
	BudgetID uuid.UUID
	Reason   string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("budget %s evaluation failed: %s", e.BudgetID, e.Reason)
}
