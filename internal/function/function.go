// Package function provides a uniform callable interface over plain Go
// functions and recorded expression graphs.
package function

import (
	"fmt"

	"github.com/born-ml/fncas/internal/autodiff"
)

// Function is a scalar function of a fixed-length vector.
type Function interface {
	// Evaluate computes the function at x. len(x) must equal Dimension().
	Evaluate(x []float64) (float64, error)

	// Dimension returns the length of the input vector.
	Dimension() int

	// ScratchSize returns how many float64 slots a compiled implementation
	// needs for intermediate values. Zero when not applicable.
	ScratchSize() int
}

// Compile-time interface checks.
var (
	_ Function = (*Native)(nil)
	_ Function = (*Recorded)(nil)
)

// checkDimension returns a DimensionMismatchError if len(x) != dim.
func checkDimension(dim int, x []float64) error {
	if len(x) != dim {
		return &autodiff.DimensionMismatchError{Want: dim, Got: len(x)}
	}
	return nil
}

// Native wraps a plain Go callback.
type Native struct {
	fn  func(x []float64) float64
	dim int
}

// NewNative wraps fn as a function of dim variables.
func NewNative(fn func(x []float64) float64, dim int) (*Native, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("native function: %w", autodiff.ErrInvalidDimension)
	}
	return &Native{fn: fn, dim: dim}, nil
}

// Evaluate calls the wrapped callback.
func (n *Native) Evaluate(x []float64) (float64, error) {
	if err := checkDimension(n.dim, x); err != nil {
		return 0, err
	}
	return n.fn(x), nil
}

// Dimension returns the input length.
func (n *Native) Dimension() int {
	return n.dim
}

// ScratchSize is always 0 for native functions.
func (n *Native) ScratchSize() int {
	return 0
}
