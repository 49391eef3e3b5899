package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyKind      = errors.New("empty kind")
	ErrEmptyCategory  = errors.New("empty category")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrBudgetRequired = errors.New("weekly budget required")
	ErrStorage        = errors.New("storage failure")
)

// ValidationError reports a malformed or missing input field. Nothing is
// written when it is returned.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BudgetRequiredError is returned when an expense is recorded for the
// current week before a budget exists for it.
type BudgetRequiredError struct {
	WeekStart Date
}

func (e *BudgetRequiredError) Error() string {
	return fmt.Sprintf("no budget set for week starting %s", e.WeekStart)
}

func (e *BudgetRequiredError) Is(target error) bool {
	return target == ErrBudgetRequired
}

// StorageError wraps a persistence failure. The operation that returned it
// did not complete.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
