// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff records numeric functions into an expression graph,
// evaluates them cheaply and differentiates them symbolically.
//
// Example:
//
//	import "github.com/born-ml/fncas/autodiff"
//
//	func main() {
//	    store := autodiff.NewStore()
//
//	    f, err := autodiff.Record(store, 2, func(x []autodiff.Term) autodiff.Term {
//	        return x[0].Mul(x[1]).Add(autodiff.Sin(x[0]))
//	    })
//	    if err != nil { ... }
//
//	    v, _ := f.Evaluate([]float64{2, 3})   // 6 + sin(2)
//	    df, _ := f.Differentiate(0)
//	    d, _ := df.Evaluate([]float64{2, 3})  // 3 + cos(2)
//	}
//
// One Store per goroutine: a Store and everything recorded in it must only be
// used by the goroutine that owns it.
package autodiff

import (
	"context"

	"github.com/born-ml/fncas/internal/autodiff"
	"github.com/born-ml/fncas/internal/autodiff/ops"
	"github.com/born-ml/fncas/internal/function"
	"github.com/born-ml/fncas/internal/parse"
)

// Store is the per-goroutine node arena.
type Store = autodiff.Store

// Option configures a Store.
type Option = autodiff.Option

// Session is the exclusive right to record into a Store.
type Session = autodiff.Session

// Term is a handle to a recorded expression node.
type Term = autodiff.Term

// NodeRef is an index into a Store.
type NodeRef = autodiff.NodeRef

// Node is one recorded node.
type Node = autodiff.Node

// Snapshot is the exported node list of a Store.
type Snapshot = autodiff.Snapshot

// ReuseMode selects whether evaluation keeps memoized values.
type ReuseMode = autodiff.ReuseMode

// Evaluation modes.
const (
	Invalidate = autodiff.Invalidate
	Reuse      = autodiff.Reuse
)

// Function is a scalar function of a vector.
type Function = function.Function

// Native wraps a Go callback as a Function.
type Native = function.Native

// Recorded is a Function backed by a recorded graph.
type Recorded = function.Recorded

// Gradient is a recorded function with all of its partial derivatives.
type Gradient = function.Gradient

// Func is a math function tag.
type Func = ops.Func

// Errors.
var (
	ErrConcurrentRecording = autodiff.ErrConcurrentRecording
	ErrInvalidDimension    = autodiff.ErrInvalidDimension
	ErrDimensionMismatch   = autodiff.ErrDimensionMismatch
	ErrStaleGraph          = autodiff.ErrStaleGraph
	ErrVariableOutOfRange  = autodiff.ErrVariableOutOfRange
)

// DimensionMismatchError reports a wrong-length input vector.
type DimensionMismatchError = autodiff.DimensionMismatchError

// MalformedGraphError is the panic value for violated graph invariants.
type MalformedGraphError = autodiff.MalformedGraphError

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	return autodiff.NewStore(opts...)
}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return autodiff.NewContext(ctx, s)
}

// FromContext returns the store carried by ctx.
func FromContext(ctx context.Context) (*Store, bool) {
	return autodiff.FromContext(ctx)
}

// Record opens a session on store, records build and closes the session.
func Record(store *Store, dim int, build func(x []Term) Term) (*Recorded, error) {
	return function.Record(store, dim, build)
}

// Parse records a text expression such as "x[0]*x[1] + sin(x[0])".
// vars optionally names x[0], x[1], ... so they can be written as plain identifiers.
func Parse(store *Store, dim int, src string, vars ...string) (*Recorded, error) {
	return parse.Record(store, dim, src, parse.WithVariables(vars...))
}

// NewNative wraps fn as a Function of dim variables.
func NewNative(fn func(x []float64) float64, dim int) (*Native, error) {
	return function.NewNative(fn, dim)
}

// NewGradient differentiates f by every variable.
func NewGradient(f *Recorded) (*Gradient, error) {
	return function.NewGradient(f)
}

// Math functions.
var (
	Sqr      = autodiff.Sqr
	Sqrt     = autodiff.Sqrt
	Exp      = autodiff.Exp
	Log      = autodiff.Log
	Sin      = autodiff.Sin
	Cos      = autodiff.Cos
	Tan      = autodiff.Tan
	Asin     = autodiff.Asin
	Acos     = autodiff.Acos
	Atan     = autodiff.Atan
	UnitStep = autodiff.UnitStep
	Ramp     = autodiff.Ramp
)

// Store options.
var (
	WithLogger  = autodiff.WithLogger
	WithMetrics = autodiff.WithMetrics
)
