// Package allocation implements the seat allocation engine: grouping a
// normalized roster into exam slots and assigning every student of a
// slot to a (hall, seat, desk) under capacity and anti-clustering
// rules.  The package is pure; persistence lives in the repository
// layer and failures here never leave partial state behind.
package allocation

import (
	"errors"
	"fmt"
)

// ErrDuplicateAssignment signals an attempt to seat a student who
// already holds a seat for the slot.  Callers treat it as a skip, not
// a failure.
var ErrDuplicateAssignment = errors.New("student already seated for slot")

// ValidationError reports malformed roster input (unparseable date,
// unknown session code, missing required field).  It carries no state
// change; the offending row is identified in the message.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NewValidationError builds a ValidationError from a format string.
// The roster normalizer shares this type so callers see one taxonomy.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func validationErrorf(format string, args ...any) *ValidationError {
	return NewValidationError(format, args...)
}

// CapacityExceededError is returned when the students of one slot do
// not fit into the usable capacity of the supplied halls.  Allocation
// for that slot fails atomically; Needed and Available are reported to
// the caller unchanged.
type CapacityExceededError struct {
	Needed    int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("not enough hall capacity: need %d seats, %d available", e.Needed, e.Available)
}
