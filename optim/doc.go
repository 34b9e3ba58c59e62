// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order optimizers for recorded functions.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize: runs an optimizer on a recorded gradient
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/fncas/autodiff"
//	    "github.com/born-ml/fncas/optim"
//	)
//
//	func main() {
//	    store := autodiff.NewStore()
//	    f, _ := autodiff.Parse(store, 2, "sqr(1 - a) + 100 * sqr(b - sqr(a))", "a", "b")
//	    g, _ := autodiff.NewGradient(f)
//
//	    res, err := optim.Minimize(context.Background(), g, []float64{-1.2, 1},
//	        optim.NewAdam(optim.AdamConfig{LR: 0.01}),
//	        optim.MinimizeConfig{MaxIterations: 20000},
//	    )
//	    ...
//	}
//
// Optimizers keep per-coordinate state sized on the first Step. Call Reset
// before reusing one on a problem of a different dimension.
package optim
