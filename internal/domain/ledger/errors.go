package ledger

import (
	"errors"
	"fmt"

	"github.com/personal-finance-ledger/internal/domain/shared"
)

// ErrIdempotencyKeyReused indicates an idempotency key replayed with a different intent
var ErrIdempotencyKeyReused = errors.New("idempotency key already used with a different request")

// ValidationError indicates malformed or missing input. Nothing is persisted when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is matches any ValidationError
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	return ok
}

// ConflictError indicates a write under an identifier that already exists
type ConflictError struct {
	ID string
}

func (e ConflictError) Error() string {
	return "ledger record already exists: " + e.ID
}

// Is implements the errors.Is interface for ConflictError
func (e ConflictError) Is(target error) bool {
	t, ok := target.(ConflictError)
	if !ok {
		return false
	}
	// An empty target ID matches any conflict
	return t.ID == "" || t.ID == e.ID
}

// NotFoundError indicates a lookup of a record that does not exist
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return "ledger record not found: " + e.ID
}

// Is implements the errors.Is interface for NotFoundError
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	return t.ID == "" || t.ID == e.ID
}

// StorageError wraps a failure of the underlying persistence layer
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

// Is matches any StorageError
func (e StorageError) Is(target error) bool {
	_, ok := target.(StorageError)
	return ok
}

// ErrInvalidTransition indicates a forbidden status change
type ErrInvalidTransition struct {
	From shared.RecordStatus
	To   shared.RecordStatus
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
