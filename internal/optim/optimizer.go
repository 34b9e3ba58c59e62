// Package optim implements first-order optimizers driven by recorded gradients.
//
// This package provides:
//   - Optimizer interface: one update step on a point given its gradient
//   - SGD: gradient descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize: the loop tying a Gradient and an Optimizer together
//
// Example usage:
//
//	f, _ := function.Record(store, 2, rosenbrock)
//	g, _ := function.NewGradient(f)
//
//	res, err := optim.Minimize(ctx, g, []float64{-1.2, 1},
//	    optim.NewAdam(optim.AdamConfig{LR: 0.01}),
//	    optim.MinimizeConfig{MaxIterations: 5000, Tolerance: 1e-8},
//	)
package optim

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply one update to x in place
//   - Reset: Clear accumulated state before optimizing a new problem
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step moves x against grad. len(grad) must equal len(x).
	Step(x, grad []float64)

	// Reset clears momentum buffers and step counters.
	Reset()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 `json:"lr" yaml:"lr"` // Learning rate
}

// grow returns buf resized to n, zeroed when it had to be reallocated.
func grow(buf []float64, n int) []float64 {
	if len(buf) != n {
		return make([]float64, n)
	}
	return buf
}
