package function

import "github.com/born-ml/fncas/internal/autodiff"

// Gradient holds a recorded function together with all of its partial derivatives.
type Gradient struct {
	f        *Recorded
	partials []*Recorded
}

// NewGradient differentiates f with respect to every input variable.
func NewGradient(f *Recorded) (*Gradient, error) {
	partials := make([]*Recorded, f.Dimension())
	for i := range partials {
		d, err := f.Differentiate(i)
		if err != nil {
			return nil, err
		}
		partials[i] = d
	}
	return &Gradient{f: f, partials: partials}, nil
}

// Function returns the differentiated function.
func (g *Gradient) Function() *Recorded {
	return g.f
}

// Partial returns ∂f/∂x[i].
func (g *Gradient) Partial(i int) *Recorded {
	return g.partials[i]
}

// Dimension returns the number of partials.
func (g *Gradient) Dimension() int {
	return len(g.partials)
}

// Evaluate returns f(x) and ∇f(x).
//
// The value is computed with a fresh memo and every partial reuses it, so
// sub-expressions shared between f and its derivatives are computed once.
func (g *Gradient) Evaluate(x []float64) (float64, []float64, error) {
	value, err := g.f.EvaluateMode(x, autodiff.Invalidate)
	if err != nil {
		return 0, nil, err
	}
	grad := make([]float64, len(g.partials))
	for i, p := range g.partials {
		v, err := p.EvaluateMode(x, autodiff.Reuse)
		if err != nil {
			return 0, nil, err
		}
		grad[i] = v
	}
	return value, grad, nil
}

// DefaultStep is the finite-difference step used by ApproximateGradient.
const DefaultStep = 1e-6

// ApproximateGradient estimates ∇f(x) with central differences.
// It works for any Function, including Native ones that cannot be differentiated symbolically.
func ApproximateGradient(f Function, x []float64, step float64) ([]float64, error) {
	if err := checkDimension(f.Dimension(), x); err != nil {
		return nil, err
	}
	if step <= 0 {
		step = DefaultStep
	}
	probe := make([]float64, len(x))
	copy(probe, x)
	grad := make([]float64, len(x))
	for i := range x {
		probe[i] = x[i] + step
		hi, err := f.Evaluate(probe)
		if err != nil {
			return nil, err
		}
		probe[i] = x[i] - step
		lo, err := f.Evaluate(probe)
		if err != nil {
			return nil, err
		}
		probe[i] = x[i]
		grad[i] = (hi - lo) / (2 * step)
	}
	return grad, nil
}
