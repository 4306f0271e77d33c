package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks user-correctable input errors.
	ErrValidation = errors.New("validation failed")
	// ErrOrderNotFound is returned when an order number or id does not resolve.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConcurrentModification is returned when the order changed since it was read.
	ErrConcurrentModification = errors.New("order was modified concurrently")
	// ErrDuplicateOrderNumber is returned by storage when the order number is taken.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)

// ValidationError lists every problem found in an input.
type ValidationError struct {
	Problems []string
}

// NewValidationError builds a ValidationError from one or more problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidTransitionError names the rejected change.
type InvalidTransitionError struct {
	// Field is "status" or "payment_status".
	Field string
	From  string
	To    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot change from %q to %q", ErrInvalidTransition, e.Field, e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidTransition.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
