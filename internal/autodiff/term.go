package autodiff

import "github.com/born-ml/fncas/internal/autodiff/ops"

// Term is a handle to one node of a recorded expression.
//
// Terms are plain values: copying one copies the reference, not the graph.
// Every arithmetic method allocates exactly one new node and leaves both
// operands untouched, so `a = a.Add(b)` is the compound-assignment form.
//
// The zero Term is invalid.
type Term struct {
	store *Store
	gen   uint64
	ref   NodeRef
}

// Ref returns the node index.
func (t Term) Ref() NodeRef {
	return t.ref
}

// Store returns the store holding the node.
func (t Term) Store() *Store {
	return t.store
}

// Generation returns the store generation the term was built in.
func (t Term) Generation() uint64 {
	return t.gen
}

// Valid reports whether the term refers to a live node.
func (t Term) Valid() bool {
	return t.store != nil && t.gen == t.store.generation && int(t.ref) < len(t.store.nodes) && t.ref >= 0
}

// check panics unless t refers to a live node.
func (t Term) check() {
	if t.store == nil {
		panic(malformed(t.ref, "use of zero Term"))
	}
	t.store.checkGeneration(t.gen)
	t.store.checkRef(t.ref)
}

func (t Term) with(ref NodeRef) Term {
	return Term{store: t.store, gen: t.gen, ref: ref}
}

func (t Term) binary(o ops.Op, rhs Term) Term {
	t.check()
	rhs.check()
	if t.store != rhs.store {
		panic(malformed(rhs.ref, "operands belong to different stores %s and %s", t.store.id, rhs.store.id))
	}
	return t.with(t.store.Operation(o, t.ref, rhs.ref))
}

// Const returns a constant term in the same store as t.
func (t Term) Const(v float64) Term {
	t.check()
	return t.with(t.store.Constant(v))
}

// Add returns t + rhs.
func (t Term) Add(rhs Term) Term { return t.binary(ops.Add, rhs) }

// Sub returns t - rhs.
func (t Term) Sub(rhs Term) Term { return t.binary(ops.Sub, rhs) }

// Mul returns t * rhs.
func (t Term) Mul(rhs Term) Term { return t.binary(ops.Mul, rhs) }

// Div returns t / rhs.
func (t Term) Div(rhs Term) Term { return t.binary(ops.Div, rhs) }

// AddConst returns t + v.
func (t Term) AddConst(v float64) Term { return t.Add(t.Const(v)) }

// SubConst returns t - v.
func (t Term) SubConst(v float64) Term { return t.Sub(t.Const(v)) }

// MulConst returns t * v.
func (t Term) MulConst(v float64) Term { return t.Mul(t.Const(v)) }

// DivConst returns t / v.
func (t Term) DivConst(v float64) Term { return t.Div(t.Const(v)) }

// Neg returns -t, recorded as 0 - t.
func (t Term) Neg() Term {
	return t.Const(0).Sub(t)
}

// Plus returns t unchanged.
func (t Term) Plus() Term {
	t.check()
	return t
}

// Eval evaluates t at x. See Store.Evaluate for the meaning of mode.
func (t Term) Eval(x []float64, mode ReuseMode) float64 {
	t.check()
	return t.store.Evaluate(t.ref, x, mode)
}

// Differentiate returns the partial derivative of t with respect to x[variable].
func (t Term) Differentiate(variable int) Term {
	t.check()
	return t.with(t.store.Differentiate(t.ref, variable))
}

// String renders the expression, e.g. "((x[0]*x[1])+sin(x[0]))".
func (t Term) String() string {
	if !t.Valid() {
		return "<invalid>"
	}
	return t.store.Format(t.ref)
}
