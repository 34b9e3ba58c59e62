package config

import (
	"errors"
	"fmt"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/parallel"
	"github.com/born-ml/fncas/internal/parse"
)

// Errors returned by Validate.
var (
	ErrNoExpression      = errors.New("expression is required")
	ErrDuplicateVariable = errors.New("duplicate variable name")
)

// Run describes an expression and the points to evaluate it at.
type Run struct {
	Expression string           `json:"expression" yaml:"expression"`
	Dimension  int              `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	Variables  []string         `json:"variables,omitempty" yaml:"variables,omitempty"`
	Points     [][]float64      `json:"points" yaml:"points"`
	Gradient   bool             `json:"gradient,omitempty" yaml:"gradient,omitempty"`
	Parallel   *parallel.Config `json:"parallel,omitempty" yaml:"parallel,omitempty"`
}

// ApplyDefaults fills unset fields. Dimension defaults to the number of named
// variables, and Parallel to parallel.DefaultConfig().
func (r *Run) ApplyDefaults() {
	if r.Dimension == 0 {
		r.Dimension = len(r.Variables)
	}
	if r.Parallel == nil {
		cfg := parallel.DefaultConfig()
		r.Parallel = &cfg
	}
}

// Validate checks the run after defaults have been applied.
func (r *Run) Validate() error {
	if r.Expression == "" {
		return ErrNoExpression
	}
	if r.Dimension <= 0 {
		return fmt.Errorf("dimension %d: %w", r.Dimension, autodiff.ErrInvalidDimension)
	}
	if len(r.Variables) > r.Dimension {
		return fmt.Errorf("%d variable names for dimension %d: %w", len(r.Variables), r.Dimension, autodiff.ErrVariableOutOfRange)
	}
	seen := make(map[string]bool, len(r.Variables))
	for _, v := range r.Variables {
		if err := parse.CheckName(v); err != nil {
			return err
		}
		if seen[v] {
			return fmt.Errorf("%w: %q", ErrDuplicateVariable, v)
		}
		seen[v] = true
	}
	for i, p := range r.Points {
		if len(p) != r.Dimension {
			return fmt.Errorf("point %d: %w", i, &autodiff.DimensionMismatchError{Want: r.Dimension, Got: len(p)})
		}
	}
	return nil
}
