package autodiff

import "github.com/born-ml/fncas/internal/autodiff/ops"

// NodeRef is an index into the node store that produced it.
type NodeRef = ops.NodeRef

// NoRef marks an unknown or absent node.
const NoRef = ops.NoRef

// Kind is the tag of a node.
type Kind uint8

// Node kinds.
const (
	KindConstant Kind = iota
	KindVariable
	KindOperation
	KindFunction
)

var kindNames = [...]string{"constant", "variable", "operation", "function"}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is one element of a recorded expression graph.
//
// Only the fields relevant to Kind are meaningful:
//   - KindConstant: Value
//   - KindVariable: Variable
//   - KindOperation: Op, LHS, RHS
//   - KindFunction: Func, LHS (the argument)
//
// Operands always reference nodes with a lower index.
type Node struct {
	Kind     Kind
	Op       ops.Op
	Func     ops.Func
	Variable int32
	Value    float64
	LHS      NodeRef
	RHS      NodeRef
}

// Const returns the value of a constant node.
func (n Node) Const(index NodeRef) float64 {
	n.expect(index, KindConstant)
	return n.Value
}

// Var returns the input slot of a variable node.
func (n Node) Var(index NodeRef) int {
	n.expect(index, KindVariable)
	return int(n.Variable)
}

// Operation returns the operation and operands of an operation node.
func (n Node) Operation(index NodeRef) (ops.Op, NodeRef, NodeRef) {
	n.expect(index, KindOperation)
	return n.Op, n.LHS, n.RHS
}

// Function returns the function and argument of a function node.
func (n Node) Function(index NodeRef) (ops.Func, NodeRef) {
	n.expect(index, KindFunction)
	return n.Func, n.LHS
}

func (n Node) expect(index NodeRef, want Kind) {
	if n.Kind != want {
		panic(&MalformedGraphError{Index: index, Want: want, Got: n.Kind, Reason: "tag-incompatible access"})
	}
}
