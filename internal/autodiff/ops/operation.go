// Package ops defines the closed set of node tags for recorded expressions.
//
// Every tag carries three things:
//   - an evaluator (ApplyOp, ApplyFunc)
//   - a printable name used by debug rendering and the text parser
//   - a symbolic derivative rule (Derivative)
//
// Supported binary operations:
//   - Add: d(a+b) = da + db
//   - Sub: d(a-b) = da - db
//   - Mul: d(a*b) = da*b + a*db
//   - Div: d(a/b) = (da*b - a*db) / (b*b)
//
// Adding a math function means adding a Func constant, an entry in the
// evaluator table and a case in Derivative.
package ops

import "math"

// NodeRef is an index into a node store.
// It carries no ownership and is only meaningful for the store that issued it.
type NodeRef int32

// NoRef marks an unknown or absent node.
const NoRef NodeRef = -1

// Op is a binary arithmetic operation.
type Op uint8

// Binary operations.
const (
	Add Op = iota
	Sub
	Mul
	Div
	numOps
)

var opNames = [numOps]string{"+", "-", "*", "/"}

// String returns the infix symbol of the operation.
func (o Op) String() string {
	if o >= numOps {
		return "?"
	}
	return opNames[o]
}

// Valid reports whether o is a known operation.
func (o Op) Valid() bool {
	return o < numOps
}

// ApplyOp evaluates a binary operation. Unknown operations yield NaN.
func ApplyOp(o Op, lhs, rhs float64) float64 {
	switch o {
	case Add:
		return lhs + rhs
	case Sub:
		return lhs - rhs
	case Mul:
		return lhs * rhs
	case Div:
		return lhs / rhs
	default:
		return math.NaN()
	}
}

// Builder allocates new nodes in a store.
// Derivative rules build their results exclusively through it, so derivative
// graphs are ordinary nodes that can be evaluated and differentiated again.
type Builder interface {
	Constant(v float64) NodeRef
	Operation(o Op, lhs, rhs NodeRef) NodeRef
	Function(f Func, arg NodeRef) NodeRef
}
