package domain

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by repositories
// and services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Not-found conditions are distinct per entity so boundary layers can map
// them to different user-facing outcomes.
var (
	ErrScenarioNotFound   = errors.New("scenario not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
)

// General errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError reports malformed input to a create or update operation.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Is makes ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageError wraps a failed storage port call. Storage failures are
// propagated, never swallowed.
type StorageError struct {
	Op         string
	Collection string
	Key        string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Collection, e.Key, e.Err)
}

// Unwrap exposes the underlying backend error.
func (e *StorageError) Unwrap() error { return e.Err }
