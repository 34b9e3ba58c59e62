// Package parse records arithmetic expressions written as text, such as
//
//	x[0] * x[1] + sin(x[0])
//
// into an expression graph. The grammar is HCL's expression syntax restricted
// to numbers, the four arithmetic operators, unary minus, parentheses, calls to
// the math functions known to package ops and references to input variables.
//
// Inputs are referenced as x[i] with a constant index, or by name when names
// are supplied with WithVariables.
package parse

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/autodiff/ops"
	"github.com/born-ml/fncas/internal/function"
)

// Errors.
var (
	ErrUnsupported  = errors.New("unsupported expression")
	ErrReservedName = errors.New("variable name is reserved")
)

// VectorName is the root name of the input vector.
const VectorName = "x"

type options struct {
	names map[string]int
	err   error
}

// Option configures parsing.
type Option func(*options)

// WithVariables allows names[i] as an alias for x[i].
// VectorName itself cannot be used as an alias.
func WithVariables(names ...string) Option {
	return func(o *options) {
		for i, n := range names {
			if err := CheckName(n); err != nil && o.err == nil {
				o.err = err
			}
			o.names[n] = i
		}
	}
}

// CheckName reports whether name can alias an input variable.
func CheckName(name string) error {
	if name == VectorName {
		return fmt.Errorf("%w: %q refers to the input vector, index it as %s[i]", ErrReservedName, name, VectorName)
	}
	return nil
}

// Expression parses src and records it into sess.
func Expression(sess *autodiff.Session, src string, opts ...Option) (autodiff.Term, error) {
	o := options{names: make(map[string]int)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return autodiff.Term{}, o.err
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.InitialPos)
	if diags.HasErrors() {
		return autodiff.Term{}, fmt.Errorf("parse expression: %w", diags)
	}

	r := recorder{sess: sess, names: o.names}
	return r.record(expr)
}

// Record opens a session of dim variables on store, records src and closes the session.
func Record(store *autodiff.Store, dim int, src string, opts ...Option) (*function.Recorded, error) {
	sess, err := store.Record(dim)
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	defer sess.Close()

	t, err := Expression(sess, src, opts...)
	if err != nil {
		return nil, err
	}
	return function.NewRecorded(t)
}

type recorder struct {
	sess  *autodiff.Session
	names map[string]int
}

// record walks the syntax tree. Its depth is bounded by the parser's own
// nesting, unlike graph traversals which must not recurse.
func (r *recorder) record(expr hclsyntax.Expression) (autodiff.Term, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		v, err := number(e.Val, e.SrcRange)
		if err != nil {
			return autodiff.Term{}, err
		}
		return r.sess.Const(v), nil

	case *hclsyntax.ParenthesesExpr:
		return r.record(e.Expression)

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return autodiff.Term{}, fmt.Errorf("%s: %w: unary operator", e.SrcRange, ErrUnsupported)
		}
		v, err := r.record(e.Val)
		if err != nil {
			return autodiff.Term{}, err
		}
		return v.Neg(), nil

	case *hclsyntax.BinaryOpExpr:
		return r.binary(e)

	case *hclsyntax.FunctionCallExpr:
		return r.call(e)

	case *hclsyntax.ScopeTraversalExpr:
		return r.traversal(e.Traversal, e.SrcRange)

	case *hclsyntax.IndexExpr:
		return r.index(e)

	default:
		return autodiff.Term{}, fmt.Errorf("%s: %w: %T", expr.Range(), ErrUnsupported, expr)
	}
}

func (r *recorder) binary(e *hclsyntax.BinaryOpExpr) (autodiff.Term, error) {
	lhs, err := r.record(e.LHS)
	if err != nil {
		return autodiff.Term{}, err
	}
	rhs, err := r.record(e.RHS)
	if err != nil {
		return autodiff.Term{}, err
	}
	switch e.Op {
	case hclsyntax.OpAdd:
		return lhs.Add(rhs), nil
	case hclsyntax.OpSubtract:
		return lhs.Sub(rhs), nil
	case hclsyntax.OpMultiply:
		return lhs.Mul(rhs), nil
	case hclsyntax.OpDivide:
		return lhs.Div(rhs), nil
	default:
		return autodiff.Term{}, fmt.Errorf("%s: %w: binary operator", e.SrcRange, ErrUnsupported)
	}
}

func (r *recorder) call(e *hclsyntax.FunctionCallExpr) (autodiff.Term, error) {
	fn, ok := ops.ParseFunc(e.Name)
	if !ok {
		return autodiff.Term{}, fmt.Errorf("%s: %w: unknown function %q", e.NameRange, ErrUnsupported, e.Name)
	}
	if len(e.Args) != 1 || e.ExpandFinal {
		return autodiff.Term{}, fmt.Errorf("%s: %s takes exactly one argument", e.Range(), e.Name)
	}
	arg, err := r.record(e.Args[0])
	if err != nil {
		return autodiff.Term{}, err
	}
	return autodiff.Apply(fn, arg), nil
}

func (r *recorder) traversal(tr hcl.Traversal, rng hcl.Range) (autodiff.Term, error) {
	root := tr.RootName()
	switch {
	case len(tr) == 1 && root != VectorName:
		i, ok := r.names[root]
		if !ok {
			return autodiff.Term{}, fmt.Errorf("%s: unknown variable %q", rng, root)
		}
		return r.variable(i, rng)

	case len(tr) == 2 && root == VectorName:
		step, ok := tr[1].(hcl.TraverseIndex)
		if !ok {
			return autodiff.Term{}, fmt.Errorf("%s: %w: %s must be indexed as %s[i]", rng, ErrUnsupported, VectorName, VectorName)
		}
		i, err := index(step.Key, rng)
		if err != nil {
			return autodiff.Term{}, err
		}
		return r.variable(i, rng)

	default:
		return autodiff.Term{}, fmt.Errorf("%s: %w: reference", rng, ErrUnsupported)
	}
}

// index handles x[k] where k is a constant expression such as 1+1.
func (r *recorder) index(e *hclsyntax.IndexExpr) (autodiff.Term, error) {
	coll, ok := e.Collection.(*hclsyntax.ScopeTraversalExpr)
	if !ok || len(coll.Traversal) != 1 || coll.Traversal.RootName() != VectorName {
		return autodiff.Term{}, fmt.Errorf("%s: %w: only %s can be indexed", e.SrcRange, ErrUnsupported, VectorName)
	}
	key, diags := e.Key.Value(nil)
	if diags.HasErrors() {
		return autodiff.Term{}, fmt.Errorf("%s: index must be constant: %w", e.Key.Range(), diags)
	}
	i, err := index(key, e.SrcRange)
	if err != nil {
		return autodiff.Term{}, err
	}
	return r.variable(i, e.SrcRange)
}

func (r *recorder) variable(i int, rng hcl.Range) (autodiff.Term, error) {
	x := r.sess.X()
	if i < 0 || i >= len(x) {
		return autodiff.Term{}, fmt.Errorf("%s: %w: %d outside [0, %d)", rng, autodiff.ErrVariableOutOfRange, i, len(x))
	}
	return x[i], nil
}

func number(v cty.Value, rng hcl.Range) (float64, error) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return 0, fmt.Errorf("%s: %w: literal of type %s", rng, ErrUnsupported, v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}

func index(v cty.Value, rng hcl.Range) (int, error) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return 0, fmt.Errorf("%s: index must be a number", rng)
	}
	var i int
	if err := gocty.FromCtyValue(v, &i); err != nil {
		return 0, fmt.Errorf("%s: index must be a whole number: %w", rng, err)
	}
	return i, nil
}
