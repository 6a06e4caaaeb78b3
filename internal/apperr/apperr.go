package apperr

import "fmt"

// Domain error taxonomy. Services return these; the HTTP layer translates
// them to response codes with errors.As.

// ValidationError reports malformed or missing input (bad booking fields,
// unknown doctor, past date).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ForbiddenError reports that the actor is not a party to the resource.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

// Forbidden builds a ForbiddenError from a format string.
func Forbidden(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports a transition attempted from the wrong status,
// including the loser of a concurrent transition race.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

// InvalidState builds an InvalidStateError from a format string.
func InvalidState(format string, args ...interface{}) *InvalidStateError {
	return &InvalidStateError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown id.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// NotFound builds a NotFoundError for the named resource.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}
