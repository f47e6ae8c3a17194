package coach

import (
	"errors"
	"math/rand"
)

// Layer is the base interface for all layers
type Layer interface {
	build(inputDim int, rng *rand.Rand) error
	forward(input *matrix, training bool) (*matrix, error)
	backward(gradOut *matrix) (*matrix, error)
	parameters() []*matrix
	gradients() []*matrix
	outputDim() int
	name() string
}

// DenseLayer - fully connected layer
type DenseLayer struct {
	units       int
	activation  Activation
	initializer Initializer
	biasInit    Initializer
	useBias     bool
	weights     *matrix // inputDim x units
	bias        *matrix // 1 x units
	input       *matrix
	preAct      *matrix
	gradW       *matrix
	gradB       *matrix
	inputDim    int
	built       bool
}

// DenseBuilder for fluent API
type DenseBuilder struct {
	layer *DenseLayer
}

func Dense(units int) *DenseBuilder {
	return &DenseBuilder{
		layer: &DenseLayer{
			units: units,
		},
	}
}

func (b *DenseBuilder) WithActivation(act Activation) *DenseBuilder {
	b.layer.activation = act
	return b
}

func (b *DenseBuilder) WithInitializer(init Initializer) *DenseBuilder {
	b.layer.initializer = init
	return b
}

func (b *DenseBuilder) WithBiasInitializer(init Initializer) *DenseBuilder {
	b.layer.biasInit = init
	return b
}

func (b *DenseBuilder) WithBias(useBias bool) *DenseBuilder {
	b.layer.useBias = useBias
	return b
}

func (b *DenseBuilder) Build() Layer {
	return b.layer
}

func (d *DenseLayer) build(inputDim int, rng *rand.Rand) error {
	if inputDim <= 0 {
		return errors.New("coach: DenseLayer requires inputDim > 0")
	}
	if d.units <= 0 {
		return errors.New("coach: DenseLayer requires units > 0")
	}
	if d.activation == nil {
		return errors.New("coach: DenseLayer requires activation - use WithActivation()")
	}
	if d.initializer == nil {
		return errors.New("coach: DenseLayer requires initializer - use WithInitializer()")
	}
	if d.useBias && d.biasInit == nil {
		return errors.New("coach: DenseLayer with bias requires bias initializer - use WithBiasInitializer()")
	}

	d.inputDim = inputDim
	d.weights = newMatrix(inputDim, d.units)
	d.initializer.initialize(d.weights, inputDim, d.units, rng)
	d.gradW = newMatrix(inputDim, d.units)

	if d.useBias {
		d.bias = newMatrix(1, d.units)
		d.biasInit.initialize(d.bias, inputDim, d.units, rng)
		d.gradB = newMatrix(1, d.units)
	}

	d.built = true
	return nil
}

func (d *DenseLayer) forward(input *matrix, training bool) (*matrix, error) {
	if !d.built {
		return nil, errors.New("coach: layer not built - call build() first")
	}
	if input.cols != d.inputDim {
		return nil, errorf("DenseLayer expects %d features, got %d", d.inputDim, input.cols)
	}

	z := newMatrix(input.rows, d.units)
	matmul(input, d.weights, z)
	if d.useBias {
		addRowVec(z, d.bias)
	}

	out := newMatrix(input.rows, d.units)
	d.activation.forward(z, out)

	if training {
		d.input = input
		d.preAct = z
	}
	return out, nil
}

func (d *DenseLayer) backward(gradOut *matrix) (*matrix, error) {
	if d.input == nil {
		return nil, errors.New("coach: backward called before forward")
	}

	gradZ := newMatrix(gradOut.rows, gradOut.cols)
	d.activation.backward(d.preAct, gradOut, gradZ)

	matmulTransA(d.input, gradZ, d.gradW)
	if d.useBias {
		sumRows(gradZ, d.gradB)
	}

	gradIn := newMatrix(gradZ.rows, d.inputDim)
	matmulTransB(gradZ, d.weights, gradIn)
	return gradIn, nil
}

func (d *DenseLayer) parameters() []*matrix {
	if d.useBias {
		return []*matrix{d.weights, d.bias}
	}
	return []*matrix{d.weights}
}

func (d *DenseLayer) gradients() []*matrix {
	if d.useBias {
		return []*matrix{d.gradW, d.gradB}
	}
	return []*matrix{d.gradW}
}

func (d *DenseLayer) outputDim() int { return d.units }

func (d *DenseLayer) name() string { return "dense" }
