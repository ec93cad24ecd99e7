package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is() to check these; the typed errors below
// carry the detail a caller needs to render a message.
var (
	// ErrNotFound indicates a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConstraint indicates a uniqueness or composite-key collision on insert.
	ErrConstraint = errors.New("constraint violation")

	// ErrValidation indicates a caller-supplied field violates a documented constraint.
	ErrValidation = errors.New("validation failed")

	// ErrTransaction indicates a step of a multi-step operation failed and
	// nothing was committed.
	ErrTransaction = errors.New("transaction failed")
)

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConstraintError reports a collision on a unique index or primary key.
// Detail holds the constraint as reported by the storage engine, for example
// "areaTypes.name".
type ConstraintError struct {
	Collection string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("constraint violation in %s", e.Collection)
	}
	return fmt.Sprintf("constraint violation in %s: %s", e.Collection, e.Detail)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

func (e *ConstraintError) Unwrap() error { return e.Err }

type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransactionError wraps the failure of a multi-step operation. Err is the
// step that failed, so errors.Is still sees the underlying kind.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

func (e *TransactionError) Unwrap() error { return e.Err }
