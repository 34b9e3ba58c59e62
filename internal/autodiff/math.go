package autodiff

import "github.com/born-ml/fncas/internal/autodiff/ops"

// Apply records f(t).
func Apply(f ops.Func, t Term) Term {
	t.check()
	return t.with(t.store.Function(f, t.ref))
}

// Sqr returns t².
func Sqr(t Term) Term { return Apply(ops.Square, t) }

// Sqrt returns √t.
func Sqrt(t Term) Term { return Apply(ops.Sqrt, t) }

// Exp returns eᵗ.
func Exp(t Term) Term { return Apply(ops.Exp, t) }

// Log returns the natural logarithm of t.
func Log(t Term) Term { return Apply(ops.Log, t) }

// Sin returns sin(t).
func Sin(t Term) Term { return Apply(ops.Sin, t) }

// Cos returns cos(t).
func Cos(t Term) Term { return Apply(ops.Cos, t) }

// Tan returns tan(t).
func Tan(t Term) Term { return Apply(ops.Tan, t) }

// Asin returns asin(t).
func Asin(t Term) Term { return Apply(ops.Asin, t) }

// Acos returns acos(t).
func Acos(t Term) Term { return Apply(ops.Acos, t) }

// Atan returns atan(t).
func Atan(t Term) Term { return Apply(ops.Atan, t) }

// UnitStep returns 1 if t >= 0, else 0.
func UnitStep(t Term) Term { return Apply(ops.UnitStep, t) }

// Ramp returns t if t > 0, else 0.
func Ramp(t Term) Term { return Apply(ops.Ramp, t) }
