package ecs

import (
	"errors"
	"fmt"
)

// KernelError represents a structural or programming error detected by the
// kernel. Data problems inside a single entity are never reported this way.
type KernelError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// System names the system that was running, if any.
	System string

	// Kind names the component kind involved, if any.
	Kind Kind

	// Count is the number of matches for cardinality errors.
	Count int
}

// ErrorCode categorizes kernel errors.
type ErrorCode string

const (
	// ErrCodeCardinality indicates a singleton query matched zero or many entities.
	ErrCodeCardinality ErrorCode = "CARDINALITY"

	// ErrCodeUnknownKind indicates a component kind that was never registered.
	ErrCodeUnknownKind ErrorCode = "UNKNOWN_KIND"

	// ErrCodeUnknownEntity indicates an entity that does not exist in the world.
	ErrCodeUnknownEntity ErrorCode = "UNKNOWN_ENTITY"

	// ErrCodeKindMismatch indicates a value whose Go type does not match its column.
	ErrCodeKindMismatch ErrorCode = "KIND_MISMATCH"

	// ErrCodeScheduleState indicates a schedule used outside the Idle state.
	ErrCodeScheduleState ErrorCode = "SCHEDULE_STATE"

	// ErrCodeInvalidSystem indicates a bad system registration (duplicate
	// name, empty name, or an ordering dependency that is not declared earlier).
	ErrCodeInvalidSystem ErrorCode = "INVALID_SYSTEM"
)

// Error implements the error interface.
func (e *KernelError) Error() string {
	switch {
	case e.System != "" && e.Kind != "":
		return fmt.Sprintf("%s: %s (system=%s, kind=%s)", e.Code, e.Message, e.System, e.Kind)
	case e.System != "":
		return fmt.Sprintf("%s: %s (system=%s)", e.Code, e.Message, e.System)
	case e.Kind != "":
		return fmt.Sprintf("%s: %s (kind=%s)", e.Code, e.Message, e.Kind)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// HasCode reports whether err wraps a KernelError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Code == code
	}
	return false
}

// IsCardinalityError returns true if err is a singleton cardinality violation.
func IsCardinalityError(err error) bool {
	return HasCode(err, ErrCodeCardinality)
}

// IsUnknownKindError returns true if err references an unregistered kind.
func IsUnknownKindError(err error) bool {
	return HasCode(err, ErrCodeUnknownKind)
}

func newUnknownKindError(k Kind) *KernelError {
	return &KernelError{
		Code:    ErrCodeUnknownKind,
		Message: "component kind is not registered",
		Kind:    k,
	}
}

func newCardinalityError(count int) *KernelError {
	return &KernelError{
		Code:    ErrCodeCardinality,
		Message: fmt.Sprintf("singleton query expected exactly 1 match, got %d", count),
		Count:   count,
	}
}
