package ops

import "fmt"

// Derivative builds f'(arg), the outer factor of the chain rule.
//
// self is the node holding f(arg) itself. Rules whose derivative is
// expressed through the function value (exp, sqrt) reuse it instead of
// allocating a second copy.
//
// Non-differentiable points are not special-cased: unit_step has derivative 0
// everywhere and ramp has derivative unit_step(x), including at the origin.
func Derivative(b Builder, f Func, arg, self NodeRef) NodeRef {
	switch f {
	case Square:
		// 2x
		return b.Operation(Mul, b.Constant(2), arg)
	case Sqrt:
		// 1 / (2*sqrt(x)) = 0.5 / sqrt(x)
		return b.Operation(Div, b.Constant(0.5), self)
	case Exp:
		return self
	case Log:
		return b.Operation(Div, b.Constant(1), arg)
	case Sin:
		return b.Function(Cos, arg)
	case Cos:
		return b.Operation(Sub, b.Constant(0), b.Function(Sin, arg))
	case Tan:
		// 1 / cos(x)^2
		return b.Operation(Div, b.Constant(1), b.Function(Square, b.Function(Cos, arg)))
	case Asin:
		return b.Operation(Div, b.Constant(1), oneMinusSquareRoot(b, arg))
	case Acos:
		return b.Operation(Div, b.Constant(-1), oneMinusSquareRoot(b, arg))
	case Atan:
		// 1 / (1 + x^2)
		return b.Operation(Div, b.Constant(1),
			b.Operation(Add, b.Constant(1), b.Function(Square, arg)))
	case UnitStep:
		return b.Constant(0)
	case Ramp:
		return b.Function(UnitStep, arg)
	default:
		panic(fmt.Sprintf("ops: no derivative rule for function %d", f))
	}
}

// oneMinusSquareRoot builds sqrt(1 - x^2).
func oneMinusSquareRoot(b Builder, arg NodeRef) NodeRef {
	return b.Function(Sqrt, b.Operation(Sub, b.Constant(1), b.Function(Square, arg)))
}
