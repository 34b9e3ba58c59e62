package autodiff

import (
	"context"

	"github.com/born-ml/fncas/internal/autodiff/ops"
)

// ReuseMode controls whether Evaluate keeps values from the previous call.
type ReuseMode uint8

const (
	// Invalidate discards every memoized value before evaluating.
	Invalidate ReuseMode = iota

	// Reuse keeps values computed by earlier calls since the last Invalidate.
	// Only valid when those calls used the same input vector: values
	// computed for a different x are returned as-is.
	Reuse
)

// String returns the mode name.
func (m ReuseMode) String() string {
	if m == Reuse {
		return "reuse"
	}
	return "invalidate"
}

// frame is one work item of an explicit-stack traversal.
// post is set once the node's operands have been scheduled.
type frame struct {
	ref  NodeRef
	post bool
}

// Evaluate computes the value of root at x, and as a side effect the value of
// every node root depends on.
//
// The traversal uses an explicit stack, so graphs built by long loops of
// repeated operations evaluate without growing the goroutine stack.
func (s *Store) Evaluate(root NodeRef, x []float64, mode ReuseMode) float64 {
	s.checkRef(root)
	if mode == Invalidate {
		s.epoch++
	}
	s.growCaches(len(s.nodes))

	computed := 0
	stack := make([]frame, 1, 64)
	stack[0] = frame{ref: root}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i := f.ref
		n := s.nodes[i]

		if !f.post {
			if s.computed[i] == s.epoch {
				continue
			}
			switch n.Kind {
			case KindConstant:
				s.values[i] = n.Value
			case KindVariable:
				k := int(n.Variable)
				if k < 0 || k >= len(x) {
					panic(malformed(i, "variable %d outside input of length %d", k, len(x)))
				}
				s.values[i] = x[k]
			case KindOperation:
				// Operands are popped before the post-marker below them.
				stack = append(stack, frame{ref: i, post: true}, frame{ref: n.LHS}, frame{ref: n.RHS})
				continue
			case KindFunction:
				stack = append(stack, frame{ref: i, post: true}, frame{ref: n.LHS})
				continue
			default:
				panic(malformed(i, "unknown node kind %d", n.Kind))
			}
			s.computed[i] = s.epoch
			computed++
			continue
		}

		if s.computed[i] == s.epoch {
			continue
		}
		switch n.Kind {
		case KindOperation:
			s.values[i] = ops.ApplyOp(n.Op, s.values[n.LHS], s.values[n.RHS])
		case KindFunction:
			s.values[i] = ops.ApplyFunc(n.Func, s.values[n.LHS])
		default:
			panic(&MalformedGraphError{Index: i, Want: KindOperation, Got: n.Kind, Reason: "post-visit of a leaf"})
		}
		s.computed[i] = s.epoch
		computed++
	}

	s.metrics.RecordEvaluation(context.Background(), computed)
	return s.values[root]
}
