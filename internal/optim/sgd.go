package optim

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	x = x - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	x = x - lr * velocity
type SGD struct {
	lr       float64
	momentum float64
	velocity []float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 `json:"lr" yaml:"lr"`             // Learning rate (default: 0.01)
	Momentum float64 `json:"momentum" yaml:"momentum"` // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{lr: config.LR, momentum: config.Momentum}
}

// Step performs a single optimization step.
func (s *SGD) Step(x, grad []float64) {
	if s.momentum == 0 {
		for i, g := range grad {
			x[i] -= s.lr * g
		}
		return
	}

	s.velocity = grow(s.velocity, len(x))
	for i, g := range grad {
		s.velocity[i] = s.momentum*s.velocity[i] + g
		x[i] -= s.lr * s.velocity[i]
	}
}

// Reset clears the velocity buffer.
func (s *SGD) Reset() {
	s.velocity = nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
