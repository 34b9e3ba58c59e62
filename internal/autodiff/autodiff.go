// Package autodiff records numeric functions into an expression graph,
// evaluates the graph and differentiates it symbolically.
//
// Architecture:
//   - Store: append-only arena owning every node of one worker's recording,
//     plus the evaluator memo and the derivative memo
//   - Session: exclusive right to record into a Store, creates input variables
//   - Term: copyable handle to a node, composed with Add/Mul/Sin/...
//   - Evaluate: iterative explicit-stack evaluation with optional memo reuse
//   - Differentiate: memoized symbolic partial derivative, new nodes in the same Store
//
// Usage:
//
//	store := autodiff.NewStore()
//	sess, err := store.Record(2)
//	if err != nil { ... }
//	x := sess.X()
//	f := x[0].Mul(x[1]).Add(autodiff.Sin(x[0]))
//	sess.Close()
//
//	f.Eval([]float64{2, 3}, autodiff.Invalidate) // 6 + sin(2)
//	df := f.Differentiate(0)                      // x[1] + cos(x[0]), as nodes
//
// A Store is not safe for concurrent use. Give every goroutine its own.
package autodiff

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/born-ml/fncas/internal/autodiff/ops"
	"github.com/born-ml/fncas/internal/observability"
)

// Store is the node arena for one worker.
//
// Node indices are stable until the next Record call, which resets the store
// and invalidates every NodeRef, Term and recorded function issued before.
type Store struct {
	id         uuid.UUID
	generation uint64 // Bumped by every reset
	dim        int    // Dimension of the current recording, 0 if none yet

	nodes []Node

	values   []float64 // Evaluator memo, indexed like nodes
	computed []uint64  // computed[i] == epoch means values[i] is fresh
	epoch    uint64

	derivs [][]NodeRef // derivs[variable][node], NoRef if unknown

	zero, one NodeRef // Shared derivative leaves

	session *Session // Current claim, nil if no session is open

	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		id:      uuid.New(),
		epoch:   1,
		zero:    NoRef,
		one:     NoRef,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the unique identifier of the store.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Generation returns how many times the store has been reset.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Dimension returns the number of input variables of the current recording.
func (s *Store) Dimension() int {
	return s.dim
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Node returns the node at ref.
func (s *Store) Node(ref NodeRef) Node {
	s.checkRef(ref)
	return s.nodes[ref]
}

// Recording reports whether a session currently holds the store.
func (s *Store) Recording() bool {
	return s.session != nil
}

// reset drops every node and cache. Called once per Record.
func (s *Store) reset() {
	s.generation++
	s.dim = 0
	s.nodes = s.nodes[:0]
	s.values = s.values[:0]
	s.computed = s.computed[:0]
	s.epoch = 1
	s.derivs = nil
	s.zero = NoRef
	s.one = NoRef
}

// allocate appends one node and returns its index.
func (s *Store) allocate(n Node) NodeRef {
	if len(s.nodes) >= math.MaxInt32 {
		panic(malformed(NoRef, "node store exhausted at %d nodes", len(s.nodes)))
	}
	s.nodes = append(s.nodes, n)
	return NodeRef(len(s.nodes) - 1)
}

func (s *Store) checkRef(ref NodeRef) {
	if ref < 0 || int(ref) >= len(s.nodes) {
		panic(malformed(ref, "index outside store bounds [0, %d)", len(s.nodes)))
	}
}

// Constant allocates a constant node.
func (s *Store) Constant(v float64) NodeRef {
	return s.allocate(Node{Kind: KindConstant, Value: v, LHS: NoRef, RHS: NoRef})
}

// Variable allocates a node reading input slot k.
func (s *Store) Variable(k int) NodeRef {
	if k < 0 || k >= s.dim {
		panic(malformed(NoRef, "variable %d outside [0, %d)", k, s.dim))
	}
	return s.allocate(Node{Kind: KindVariable, Variable: int32(k), LHS: NoRef, RHS: NoRef})
}

// Operation allocates a binary operation node.
func (s *Store) Operation(o ops.Op, lhs, rhs NodeRef) NodeRef {
	if !o.Valid() {
		panic(malformed(NoRef, "unknown operation %d", o))
	}
	s.checkRef(lhs)
	s.checkRef(rhs)
	return s.allocate(Node{Kind: KindOperation, Op: o, LHS: lhs, RHS: rhs})
}

// Function allocates a math function node.
func (s *Store) Function(f ops.Func, arg NodeRef) NodeRef {
	if !f.Valid() {
		panic(malformed(NoRef, "unknown function %d", f))
	}
	s.checkRef(arg)
	return s.allocate(Node{Kind: KindFunction, Func: f, LHS: arg, RHS: NoRef})
}

// Compile-time interface check.
var _ ops.Builder = (*Store)(nil)

func (s *Store) zeroConst() NodeRef {
	if s.zero == NoRef {
		s.zero = s.Constant(0)
	}
	return s.zero
}

func (s *Store) oneConst() NodeRef {
	if s.one == NoRef {
		s.one = s.Constant(1)
	}
	return s.one
}

// growCaches extends the evaluator memo to cover n nodes.
func (s *Store) growCaches(n int) {
	if d := n - len(s.values); d > 0 {
		s.values = append(s.values, make([]float64, d)...)
	}
	if d := n - len(s.computed); d > 0 {
		s.computed = append(s.computed, make([]uint64, d)...)
	}
}

// derivative returns the memoized derivative of node w.r.t. variable, or NoRef.
func (s *Store) derivative(variable int, node NodeRef) NodeRef {
	if variable >= len(s.derivs) || int(node) >= len(s.derivs[variable]) {
		return NoRef
	}
	return s.derivs[variable][node]
}

// setDerivative stores a memo entry, growing the table with NoRef as needed.
func (s *Store) setDerivative(variable int, node, d NodeRef) {
	for len(s.derivs) <= variable {
		s.derivs = append(s.derivs, nil)
	}
	row := s.derivs[variable]
	for len(row) <= int(node) {
		row = append(row, NoRef)
	}
	row[node] = d
	s.derivs[variable] = row
}
