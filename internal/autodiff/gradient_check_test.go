package autodiff_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/fncas/internal/autodiff"
)

// randomExpression builds a random expression of the given depth over x.
// Every function used is smooth on the whole real line, so symbolic and
// numerical derivatives can be compared at any point.
func randomExpression(r *rand.Rand, x []autodiff.Term, depth int) autodiff.Term {
	if depth == 0 {
		if r.IntN(4) == 0 {
			return x[0].Const(r.Float64()*2 - 1)
		}
		return x[r.IntN(len(x))]
	}
	a := randomExpression(r, x, depth-1)
	switch r.IntN(8) {
	case 0:
		return a.Add(randomExpression(r, x, depth-1))
	case 1:
		return a.Sub(randomExpression(r, x, depth-1))
	case 2:
		return a.Mul(randomExpression(r, x, depth-1))
	case 3:
		// Denominator stays >= 1.
		return a.Div(autodiff.Sqr(randomExpression(r, x, depth-1)).AddConst(1))
	case 4:
		return autodiff.Sin(a)
	case 5:
		return autodiff.Cos(a)
	case 6:
		return autodiff.Atan(a)
	default:
		return autodiff.Exp(autodiff.Sin(a))
	}
}

// TestGradientCheck_RandomExpressions compares symbolic partials with
// central differences on randomly generated graphs.
func TestGradientCheck_RandomExpressions(t *testing.T) {
	const (
		dim    = 3
		trials = 50
	)
	r := rand.New(rand.NewPCG(1, 2))

	for trial := 0; trial < trials; trial++ {
		s := autodiff.NewStore()
		sess, err := s.Record(dim)
		if err != nil {
			t.Fatal(err)
		}
		f := randomExpression(r, sess.X(), 4)
		sess.Close()

		at := make([]float64, dim)
		for i := range at {
			at[i] = r.Float64()*2 - 1
		}

		for i := 0; i < dim; i++ {
			symbolic := f.Differentiate(i).Eval(at, autodiff.Invalidate)
			numerical := centralDifference(f, at, i)
			tolerance := 1e-5 * math.Max(1, math.Abs(numerical))
			assert.InDeltaf(t, numerical, symbolic, tolerance,
				"trial %d, d/dx[%d] of %s at %v", trial, i, f, at)
		}
	}
}

// TestGradientCheck_SecondOrder compares the second derivative with a
// central difference of the first.
func TestGradientCheck_SecondOrder(t *testing.T) {
	s := autodiff.NewStore()
	_, x := record(t, s, 2)

	f := autodiff.Sin(x[0].Mul(x[1])).Add(autodiff.Exp(x[0]).Div(x[1]))
	df0 := f.Differentiate(0)
	at := []float64{0.4, 1.3}

	for i := 0; i < 2; i++ {
		symbolic := df0.Differentiate(i).Eval(at, autodiff.Invalidate)
		assert.InDelta(t, centralDifference(df0, at, i), symbolic, 1e-5)
	}
}
