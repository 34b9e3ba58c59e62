package autodiff

import (
	"strconv"
	"strings"
)

// Format renders the expression rooted at ref.
//
// Variables print as x[i], constants in shortest %g form, operations fully
// parenthesized and functions by name. Shared sub-expressions are expanded
// at every use, so the output can be much larger than the graph.
func (s *Store) Format(ref NodeRef) string {
	s.checkRef(ref)

	rendered := make(map[NodeRef]string)
	stack := []frame{{ref: ref}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i := f.ref
		if _, ok := rendered[i]; ok {
			continue
		}
		n := s.nodes[i]

		if !f.post {
			switch n.Kind {
			case KindConstant:
				rendered[i] = strconv.FormatFloat(n.Value, 'g', -1, 64)
			case KindVariable:
				rendered[i] = "x[" + strconv.Itoa(int(n.Variable)) + "]"
			case KindOperation:
				stack = append(stack, frame{ref: i, post: true}, frame{ref: n.LHS}, frame{ref: n.RHS})
			case KindFunction:
				stack = append(stack, frame{ref: i, post: true}, frame{ref: n.LHS})
			default:
				rendered[i] = "?"
			}
			continue
		}

		var b strings.Builder
		switch n.Kind {
		case KindOperation:
			b.WriteByte('(')
			b.WriteString(rendered[n.LHS])
			b.WriteString(n.Op.String())
			b.WriteString(rendered[n.RHS])
			b.WriteByte(')')
		case KindFunction:
			b.WriteString(n.Func.String())
			b.WriteByte('(')
			b.WriteString(rendered[n.LHS])
			b.WriteByte(')')
		}
		rendered[i] = b.String()
	}

	return rendered[ref]
}
