package autodiff

import (
	"context"

	"github.com/born-ml/fncas/internal/autodiff/ops"
)

// Differentiate returns the node for ∂node/∂x[variable].
//
// Results are memoized per (variable, node). Without the memo, a DAG with
// shared sub-expressions would have its shared branches differentiated once
// per path, which is exponential in depth.
//
// The derivative is built from ordinary nodes in the same store: it can be
// evaluated with Evaluate, share sub-expressions with the original graph, and
// be differentiated again for higher orders, reusing the same memo.
func (s *Store) Differentiate(node NodeRef, variable int) NodeRef {
	s.checkRef(node)
	if variable < 0 || variable >= s.dim {
		panic(malformed(node, "%s: %d outside [0, %d)", ErrVariableOutOfRange, variable, s.dim))
	}
	if d := s.derivative(variable, node); d != NoRef {
		s.metrics.RecordDerivative(context.Background(), true)
		return d
	}
	s.metrics.RecordDerivative(context.Background(), false)

	stack := make([]frame, 1, 64)
	stack[0] = frame{ref: node}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i := f.ref
		if s.derivative(variable, i) != NoRef {
			continue
		}
		n := s.nodes[i]

		if f.post {
			s.setDerivative(variable, i, s.derive(i, n, variable))
			continue
		}

		switch n.Kind {
		case KindConstant:
			s.setDerivative(variable, i, s.zeroConst())
		case KindVariable:
			if int(n.Variable) == variable {
				s.setDerivative(variable, i, s.oneConst())
			} else {
				s.setDerivative(variable, i, s.zeroConst())
			}
		case KindOperation:
			stack = append(stack, frame{ref: i, post: true}, frame{ref: n.LHS}, frame{ref: n.RHS})
		case KindFunction:
			stack = append(stack, frame{ref: i, post: true}, frame{ref: n.LHS})
		default:
			panic(malformed(i, "unknown node kind %d", n.Kind))
		}
	}

	return s.derivative(variable, node)
}

// derive applies the rule for an inner node whose operand derivatives are known.
func (s *Store) derive(i NodeRef, n Node, variable int) NodeRef {
	switch n.Kind {
	case KindOperation:
		l, r := n.LHS, n.RHS
		dl, dr := s.derivative(variable, l), s.derivative(variable, r)
		switch n.Op {
		case ops.Add:
			return s.Operation(ops.Add, dl, dr)
		case ops.Sub:
			return s.Operation(ops.Sub, dl, dr)
		case ops.Mul:
			// dl*r + l*dr
			return s.Operation(ops.Add, s.Operation(ops.Mul, dl, r), s.Operation(ops.Mul, l, dr))
		case ops.Div:
			// (dl*r - l*dr) / (r*r)
			num := s.Operation(ops.Sub, s.Operation(ops.Mul, dl, r), s.Operation(ops.Mul, l, dr))
			return s.Operation(ops.Div, num, s.Operation(ops.Mul, r, r))
		default:
			panic(malformed(i, "unknown operation %d", n.Op))
		}
	case KindFunction:
		da := s.derivative(variable, n.LHS)
		return s.Operation(ops.Mul, ops.Derivative(s, n.Func, n.LHS, i), da)
	default:
		panic(&MalformedGraphError{Index: i, Want: KindOperation, Got: n.Kind, Reason: "derivative rule for a leaf"})
	}
}
