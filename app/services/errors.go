package services

import "fmt"

// The workflow engine reports four kinds of failures. All of them are
// caller/business-rule violations detected at the point of mutation; none
// are retried automatically.

// ValidationError signals malformed or out-of-range input, e.g. an exam
// weight that would push the class-course total past 100.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidStateError signals a lifecycle transition attempted from a state
// that does not permit it.
type InvalidStateError struct {
	Op     string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s an exam in status %q", e.Op, e.Status)
}

// ForbiddenError signals a locked record or an insufficient capability.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// NotFoundError signals an absent entity. Records belonging to another
// institution are reported as not found, never as forbidden.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }
