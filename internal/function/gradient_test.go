package function_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/function"
)

func rosenbrock(x []float64) float64 {
	a, b := 1-x[0], x[1]-x[0]*x[0]
	return a*a + 100*b*b
}

func recordRosenbrock(t *testing.T, s *autodiff.Store) *function.Recorded {
	t.Helper()
	f, err := function.Record(s, 2, func(x []autodiff.Term) autodiff.Term {
		a := x[0].Neg().AddConst(1)
		b := x[1].Sub(autodiff.Sqr(x[0]))
		return autodiff.Sqr(a).Add(autodiff.Sqr(b).MulConst(100))
	})
	require.NoError(t, err)
	return f
}

func TestGradient_Evaluate(t *testing.T) {
	s := autodiff.NewStore()
	g, err := function.NewGradient(recordRosenbrock(t, s))
	require.NoError(t, err)
	require.Equal(t, 2, g.Dimension())

	at := []float64{-1.2, 1}
	value, grad, err := g.Evaluate(at)
	require.NoError(t, err)

	// ∂/∂x0 = -2(1-x0) - 400 x0 (x1 - x0²), ∂/∂x1 = 200 (x1 - x0²)
	x0, x1 := at[0], at[1]
	assert.InDelta(t, rosenbrock(at), value, 1e-9)
	assert.InDelta(t, -2*(1-x0)-400*x0*(x1-x0*x0), grad[0], 1e-9)
	assert.InDelta(t, 200*(x1-x0*x0), grad[1], 1e-9)
}

func TestGradient_MatchesApproximation(t *testing.T) {
	s := autodiff.NewStore()
	recorded := recordRosenbrock(t, s)
	g, err := function.NewGradient(recorded)
	require.NoError(t, err)

	native, err := function.NewNative(rosenbrock, 2)
	require.NoError(t, err)

	for _, at := range [][]float64{{0, 0}, {1, 1}, {0.5, -0.3}, {-2, 3}} {
		_, grad, err := g.Evaluate(at)
		require.NoError(t, err)
		approx, err := function.ApproximateGradient(native, at, 0)
		require.NoError(t, err)

		for i := range grad {
			assert.InDelta(t, approx[i], grad[i], 1e-4*math.Max(1, math.Abs(approx[i])), "at %v, i=%d", at, i)
		}
	}
}

func TestGradient_ConsecutivePoints(t *testing.T) {
	s := autodiff.NewStore()
	g, err := function.NewGradient(recordRosenbrock(t, s))
	require.NoError(t, err)

	_, first, err := g.Evaluate([]float64{1, 1})
	require.NoError(t, err)
	_, second, err := g.Evaluate([]float64{0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, first[0], 1e-12)
	assert.InDelta(t, 0.0, first[1], 1e-12)
	assert.InDelta(t, -2.0, second[0], 1e-12)
	assert.InDelta(t, 0.0, second[1], 1e-12)
}

func TestGradient_Partials(t *testing.T) {
	s := autodiff.NewStore()
	f := recordRosenbrock(t, s)
	g, err := function.NewGradient(f)
	require.NoError(t, err)

	assert.Same(t, f, g.Function())
	v, err := g.Partial(1).Evaluate([]float64{2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -600.0, v, 1e-12)
}

func TestGradient_Stale(t *testing.T) {
	s := autodiff.NewStore()
	f := recordRosenbrock(t, s)
	_ = recordRosenbrock(t, s)

	_, err := function.NewGradient(f)
	assert.ErrorIs(t, err, autodiff.ErrStaleGraph)
}

func TestApproximateGradient_DimensionMismatch(t *testing.T) {
	native, err := function.NewNative(rosenbrock, 2)
	require.NoError(t, err)

	_, err = function.ApproximateGradient(native, []float64{1}, function.DefaultStep)
	assert.ErrorIs(t, err, autodiff.ErrDimensionMismatch)
}
