package autodiff

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrConcurrentRecording = errors.New("a recording session is already open on this store")
	ErrInvalidDimension    = errors.New("dimension must be positive")
	ErrDimensionMismatch   = errors.New("input vector length does not match function dimension")
	ErrStaleGraph          = errors.New("graph was reset by a later recording session")
	ErrVariableOutOfRange  = errors.New("variable index out of range")
)

// DimensionMismatchError reports a wrong-length input vector.
type DimensionMismatchError struct {
	Want int // Dimension of the function
	Got  int // Length of the input vector
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch, e.Want, e.Got)
}

// Is makes errors.Is(err, ErrDimensionMismatch) hold.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// MalformedGraphError describes a violated graph invariant.
//
// It is only ever used as a panic value: a malformed graph means a defect in
// graph construction, and continuing would return wrong numbers.
type MalformedGraphError struct {
	Index  NodeRef // Node involved, or NoRef
	Want   Kind    // Expected tag, if the failure was a tag mismatch
	Got    Kind    // Actual tag
	Reason string  // Human-readable description
}

// Error implements the error interface.
func (e *MalformedGraphError) Error() string {
	if e.Want != e.Got {
		return fmt.Sprintf("malformed graph: node %d: want %s, got %s: %s", e.Index, e.Want, e.Got, e.Reason)
	}
	if e.Index != NoRef {
		return fmt.Sprintf("malformed graph: node %d: %s", e.Index, e.Reason)
	}
	return "malformed graph: " + e.Reason
}

func malformed(index NodeRef, format string, args ...any) *MalformedGraphError {
	return &MalformedGraphError{Index: index, Reason: fmt.Sprintf(format, args...)}
}
