package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/function"
)

// ErrDiverged is returned when the objective or its gradient stops being finite.
var ErrDiverged = errors.New("optimization diverged")

// MinimizeConfig bounds a Minimize run.
type MinimizeConfig struct {
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"` // Default: 1000
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"`           // Stop once |∇f| falls below it. Default: 1e-6
}

// Result is the outcome of Minimize.
type Result struct {
	X          []float64 `json:"x" yaml:"x"`
	Value      float64   `json:"value" yaml:"value"`
	GradNorm   float64   `json:"grad_norm" yaml:"grad_norm"`
	Iterations int       `json:"iterations" yaml:"iterations"`
	Converged  bool      `json:"converged" yaml:"converged"`
}

// Minimize runs opt from x0 until the gradient norm drops below the tolerance
// or the iteration budget is spent. x0 is not modified.
//
// The optimizer is Reset first. Running out of iterations is not an error:
// the best effort is returned with Converged unset.
//
// On ErrDiverged the Result holds the last point where the value and gradient
// were finite. If x0 itself is not finite, it holds x0 and the values found there.
func Minimize(ctx context.Context, g *function.Gradient, x0 []float64, opt Optimizer, cfg MinimizeConfig) (Result, error) {
	if len(x0) != g.Dimension() {
		return Result{}, &autodiff.DimensionMismatchError{Want: g.Dimension(), Got: len(x0)}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 1000
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-6
	}
	opt.Reset()

	x := append([]float64(nil), x0...)
	res := Result{X: append([]float64(nil), x0...)}
	for iter := 0; ; iter++ {
		value, grad, err := g.Evaluate(x)
		if err != nil {
			return Result{}, err
		}
		gradNorm := norm(grad)
		if !finite(value) || !finite(gradNorm) {
			if iter == 0 {
				res.Value, res.GradNorm = value, gradNorm
			}
			return res, fmt.Errorf("iteration %d: %w", iter, ErrDiverged)
		}
		copy(res.X, x)
		res.Value, res.GradNorm, res.Iterations = value, gradNorm, iter

		if gradNorm < cfg.Tolerance {
			res.Converged = true
			return res, nil
		}
		if iter == cfg.MaxIterations {
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		opt.Step(x, grad)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
