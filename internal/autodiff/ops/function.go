package ops

import "math"

// Func is a unary math function.
type Func uint8

// Math functions.
const (
	Square Func = iota
	Sqrt
	Exp
	Log
	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	UnitStep
	Ramp
	numFuncs
)

var funcNames = [numFuncs]string{
	"sqr", "sqrt", "exp", "log", "sin", "cos", "tan", "asin", "acos", "atan", "unit_step", "ramp",
}

var funcEvaluators = [numFuncs]func(float64) float64{
	sqr, math.Sqrt, math.Exp, math.Log, math.Sin, math.Cos, math.Tan,
	math.Asin, math.Acos, math.Atan, unitStep, ramp,
}

// Aliases accepted by ParseFunc in addition to the canonical names.
var funcAliases = map[string]Func{
	"square":   Square,
	"unitstep": UnitStep,
	"step":     UnitStep,
	"relu":     Ramp,
}

func sqr(x float64) float64 { return x * x }

func unitStep(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return 0
}

func ramp(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// String returns the function name as rendered in debug output.
func (f Func) String() string {
	if f >= numFuncs {
		return "?"
	}
	return funcNames[f]
}

// Valid reports whether f is a known function.
func (f Func) Valid() bool {
	return f < numFuncs
}

// Funcs returns every known function in tag order.
func Funcs() []Func {
	out := make([]Func, numFuncs)
	for i := range out {
		out[i] = Func(i)
	}
	return out
}

// ParseFunc looks up a function by name.
func ParseFunc(name string) (Func, bool) {
	for i, n := range funcNames {
		if n == name {
			return Func(i), true
		}
	}
	f, ok := funcAliases[name]
	return f, ok
}

// ApplyFunc evaluates a math function. Unknown functions yield NaN.
func ApplyFunc(f Func, x float64) float64 {
	if f >= numFuncs {
		return math.NaN()
	}
	return funcEvaluators[f](x)
}
