package function

import (
	"fmt"

	"github.com/born-ml/fncas/internal/autodiff"
)

// Recorded evaluates a node of a recorded graph.
//
// A Recorded stays valid after its recording session closes, until the next
// Record call on the same store resets it. After that every method returns
// autodiff.ErrStaleGraph.
type Recorded struct {
	store *autodiff.Store
	gen   uint64
	root  autodiff.NodeRef
	dim   int
}

// NewRecorded wraps the node behind t.
func NewRecorded(t autodiff.Term) (*Recorded, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("recorded function: %w", autodiff.ErrStaleGraph)
	}
	return &Recorded{
		store: t.Store(),
		gen:   t.Generation(),
		root:  t.Ref(),
		dim:   t.Store().Dimension(),
	}, nil
}

// Record opens a session of dim variables on store, builds the graph with
// build and closes the session.
//
// Returns autodiff.ErrConcurrentRecording if the store is busy.
func Record(store *autodiff.Store, dim int, build func(x []autodiff.Term) autodiff.Term) (*Recorded, error) {
	sess, err := store.Record(dim)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	defer sess.Close()

	return NewRecorded(build(sess.X()))
}

func (r *Recorded) live() error {
	if r.store.Generation() != r.gen {
		return autodiff.ErrStaleGraph
	}
	return nil
}

// Evaluate computes the function at x, discarding memoized values first.
func (r *Recorded) Evaluate(x []float64) (float64, error) {
	return r.EvaluateMode(x, autodiff.Invalidate)
}

// EvaluateMode computes the function at x with an explicit memo mode.
// Pass autodiff.Reuse only when the previous evaluation on this store used the same x.
func (r *Recorded) EvaluateMode(x []float64, mode autodiff.ReuseMode) (float64, error) {
	if err := checkDimension(r.dim, x); err != nil {
		return 0, err
	}
	if err := r.live(); err != nil {
		return 0, err
	}
	return r.store.Evaluate(r.root, x, mode), nil
}

// Dimension returns the number of input variables recorded with the root.
func (r *Recorded) Dimension() int {
	return r.dim
}

// ScratchSize returns root+1: operands always precede their users, so
// nodes [0, root] cover everything the root depends on.
func (r *Recorded) ScratchSize() int {
	return int(r.root) + 1
}

// Root returns the wrapped node.
func (r *Recorded) Root() autodiff.NodeRef {
	return r.root
}

// Store returns the store holding the graph.
func (r *Recorded) Store() *autodiff.Store {
	return r.store
}

// Differentiate returns ∂f/∂x[variable] as a new recorded function of the same dimension.
func (r *Recorded) Differentiate(variable int) (*Recorded, error) {
	if variable < 0 || variable >= r.dim {
		return nil, fmt.Errorf("differentiate: %w: %d outside [0, %d)", autodiff.ErrVariableOutOfRange, variable, r.dim)
	}
	if err := r.live(); err != nil {
		return nil, err
	}
	return &Recorded{
		store: r.store,
		gen:   r.gen,
		root:  r.store.Differentiate(r.root, variable),
		dim:   r.dim,
	}, nil
}

// Snapshot exports the nodes a compiled backend needs to implement r.
func (r *Recorded) Snapshot() (autodiff.Snapshot, error) {
	if err := r.live(); err != nil {
		return autodiff.Snapshot{}, err
	}
	return r.store.SnapshotUpTo(r.root), nil
}

// String renders the expression, or "<stale>" once the store has been reset.
func (r *Recorded) String() string {
	if r.live() != nil {
		return "<stale>"
	}
	return r.store.Format(r.root)
}
