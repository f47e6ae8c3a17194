package coach

import "math"

// Optimizer updates network parameters
type Optimizer interface {
	step(params []*matrix, grads []*matrix)
	setLR(lr float64)
	lr() float64
	name() string
}

// SGDOptimizer - Stochastic Gradient Descent with momentum
type SGDOptimizer struct {
	LR          float64
	Momentum    float64
	WeightDecay float64
	Nesterov    bool
	velocities  []*matrix
	initialized bool
}

type SGDConfig struct {
	LR          float64
	Momentum    float64
	WeightDecay float64
	Nesterov    bool
}

func SGD(config SGDConfig) Optimizer {
	return &SGDOptimizer{
		LR:          config.LR,
		Momentum:    config.Momentum,
		WeightDecay: config.WeightDecay,
		Nesterov:    config.Nesterov,
	}
}

func (s *SGDOptimizer) init(params []*matrix) {
	s.velocities = make([]*matrix, len(params))
	for i, p := range params {
		s.velocities[i] = newMatrix(p.rows, p.cols)
	}
	s.initialized = true
}

func (s *SGDOptimizer) step(params []*matrix, grads []*matrix) {
	if !s.initialized {
		s.init(params)
	}
	for i, p := range params {
		g := grads[i]
		v := s.velocities[i]

		for j := range p.data {
			grad := g.data[j]
			if s.WeightDecay != 0 {
				grad += s.WeightDecay * p.data[j]
			}
			if s.Momentum != 0 {
				v.data[j] = s.Momentum*v.data[j] + grad
				if s.Nesterov {
					grad = grad + s.Momentum*v.data[j]
				} else {
					grad = v.data[j]
				}
			}
			p.data[j] -= s.LR * grad
		}
	}
}

func (s *SGDOptimizer) setLR(lr float64) { s.LR = lr }
func (s *SGDOptimizer) lr() float64      { return s.LR }
func (s *SGDOptimizer) name() string     { return "sgd" }

// AdamOptimizer - Adaptive Moment Estimation
type AdamOptimizer struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Epsilon     float64
	WeightDecay float64
	m           []*matrix
	v           []*matrix
	t           int
	initialized bool
}

type AdamConfig struct {
	LR          float64
	Beta1       float64
	Beta2       float64
	Epsilon     float64
	WeightDecay float64
}

func Adam(config AdamConfig) Optimizer {
	return &AdamOptimizer{
		LR:          config.LR,
		Beta1:       config.Beta1,
		Beta2:       config.Beta2,
		Epsilon:     config.Epsilon,
		WeightDecay: config.WeightDecay,
	}
}

func (a *AdamOptimizer) init(params []*matrix) {
	a.m = make([]*matrix, len(params))
	a.v = make([]*matrix, len(params))
	for i, p := range params {
		a.m[i] = newMatrix(p.rows, p.cols)
		a.v[i] = newMatrix(p.rows, p.cols)
	}
	a.t = 0
	a.initialized = true
}

func (a *AdamOptimizer) step(params []*matrix, grads []*matrix) {
	if !a.initialized {
		a.init(params)
	}
	a.t++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.t))

	for i, p := range params {
		g := grads[i]
		m := a.m[i]
		v := a.v[i]

		for j := range p.data {
			grad := g.data[j]
			if a.WeightDecay != 0 {
				grad += a.WeightDecay * p.data[j]
			}
			m.data[j] = a.Beta1*m.data[j] + (1-a.Beta1)*grad
			v.data[j] = a.Beta2*v.data[j] + (1-a.Beta2)*grad*grad

			mHat := m.data[j] / bc1
			vHat := v.data[j] / bc2

			p.data[j] -= a.LR * mHat / (math.Sqrt(vHat) + a.Epsilon)
		}
	}
}

// clipGradients rescales all gradients so their global L2 norm does not
// exceed maxNorm.
func clipGradients(grads []*matrix, maxNorm float64) {
	sumSq := 0.0
	for _, g := range grads {
		for _, v := range g.data {
			sumSq += v * v
		}
	}
	norm := math.Sqrt(sumSq)
	if norm <= maxNorm || norm == 0 {
		return
	}
	scale := maxNorm / norm
	for _, g := range grads {
		for i := range g.data {
			g.data[i] *= scale
		}
	}
}

func (a *AdamOptimizer) setLR(lr float64) { a.LR = lr }
func (a *AdamOptimizer) lr() float64      { return a.LR }
func (a *AdamOptimizer) name() string     { return "adam" }
