package domain

import "fmt"

// ValidationError marks malformed or missing input. Requests failing
// validation never reach the store.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// CapacityError is returned when a booking would oversell a flight. Available
// carries the actual remaining seat count so the caller can retry sensibly.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats available. Requested: %d, Available: %d", e.Requested, e.Available)
}

type InsufficientPointsError struct {
	Balance  int
	Required int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: balance %d, required %d", e.Balance, e.Required)
}

// ConflictError covers duplicate flight codes.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// StoreUnavailableError wraps connectivity and timeout failures from the
// relational store without leaking driver details to callers.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string { return "store unavailable" }
func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// ExternalDependencyError marks a failure in a best-effort collaborator
// (notification channel, price predictor). It must never fail the primary
// operation that triggered it.
type ExternalDependencyError struct {
	Dependency string
	Err        error
}

func (e *ExternalDependencyError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}
func (e *ExternalDependencyError) Unwrap() error { return e.Err }
