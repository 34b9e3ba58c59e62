package autodiff

// NodeInfo is the exported form of one node.
// Optional fields are set according to Kind.
type NodeInfo struct {
	Index    int      `json:"index" yaml:"index"`
	Kind     string   `json:"kind" yaml:"kind"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Variable *int     `json:"variable,omitempty" yaml:"variable,omitempty"`
	Op       string   `json:"op,omitempty" yaml:"op,omitempty"`
	Func     string   `json:"func,omitempty" yaml:"func,omitempty"`
	LHS      *int     `json:"lhs,omitempty" yaml:"lhs,omitempty"`
	RHS      *int     `json:"rhs,omitempty" yaml:"rhs,omitempty"`
}

// Snapshot is an index-addressable copy of a store's graph, sufficient for a
// code generator to translate it. Nodes appear in allocation order, so each
// node's operands precede it.
type Snapshot struct {
	ID          string     `json:"id" yaml:"id"`
	Generation  uint64     `json:"generation" yaml:"generation"`
	Dimension   int        `json:"dimension" yaml:"dimension"`
	ScratchSize int        `json:"scratch_size" yaml:"scratch_size"`
	Nodes       []NodeInfo `json:"nodes" yaml:"nodes"`
}

// Snapshot copies the current graph.
// ScratchSize is the number of value slots needed to hold every node.
func (s *Store) Snapshot() Snapshot {
	return s.SnapshotUpTo(NodeRef(len(s.nodes) - 1))
}

// SnapshotUpTo copies nodes [0, last]. Every node reachable from last is included.
func (s *Store) SnapshotUpTo(last NodeRef) Snapshot {
	n := int(last) + 1
	if n < 0 || n > len(s.nodes) {
		panic(malformed(last, "index outside store bounds [0, %d)", len(s.nodes)))
	}
	snap := Snapshot{
		ID:          s.id.String(),
		Generation:  s.generation,
		Dimension:   s.dim,
		ScratchSize: n,
		Nodes:       make([]NodeInfo, n),
	}
	for i, node := range s.nodes[:n] {
		info := NodeInfo{Index: i, Kind: node.Kind.String()}
		switch node.Kind {
		case KindConstant:
			v := node.Value
			info.Value = &v
		case KindVariable:
			v := int(node.Variable)
			info.Variable = &v
		case KindOperation:
			l, r := int(node.LHS), int(node.RHS)
			info.Op = node.Op.String()
			info.LHS, info.RHS = &l, &r
		case KindFunction:
			a := int(node.LHS)
			info.Func = node.Func.String()
			info.LHS = &a
		}
		snap.Nodes[i] = info
	}
	return snap
}
