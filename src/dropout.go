package coach

import "math/rand"

// DropoutLayer zeroes a random fraction of activations during training
// and rescales the survivors (inverted dropout), so inference needs no
// adjustment. It carries no parameters.
type DropoutLayer struct {
	rate float64

	dim  int
	rng  *rand.Rand
	mask []float64
	out  *matrix
}

type DropoutBuilder struct {
	layer *DropoutLayer
}

func Dropout(rate float64) *DropoutBuilder {
	return &DropoutBuilder{layer: &DropoutLayer{rate: rate}}
}

func (b *DropoutBuilder) Build() Layer {
	return b.layer
}

func (d *DropoutLayer) build(inputDim int, rng *rand.Rand) error {
	if d.rate < 0 || d.rate >= 1 {
		return errorf("DropoutLayer rate must be in [0, 1), got %f", d.rate)
	}
	d.dim = inputDim
	d.rng = rng
	return nil
}

func (d *DropoutLayer) forward(input *matrix, training bool) (*matrix, error) {
	if input.cols != d.dim {
		return nil, errorf("DropoutLayer expects %d features, got %d", d.dim, input.cols)
	}
	if !training || d.rate == 0 {
		return input, nil
	}

	if d.out == nil || d.out.rows != input.rows {
		d.out = newMatrix(input.rows, input.cols)
		d.mask = make([]float64, len(input.data))
	}

	scale := 1 / (1 - d.rate)
	for i, v := range input.data {
		if d.rng.Float64() < d.rate {
			d.mask[i] = 0
			d.out.data[i] = 0
		} else {
			d.mask[i] = scale
			d.out.data[i] = v * scale
		}
	}
	return d.out, nil
}

func (d *DropoutLayer) backward(gradOut *matrix) (*matrix, error) {
	if d.mask == nil {
		return gradOut, nil
	}
	gradIn := newMatrix(gradOut.rows, gradOut.cols)
	for i, g := range gradOut.data {
		gradIn.data[i] = g * d.mask[i]
	}
	return gradIn, nil
}

func (d *DropoutLayer) parameters() []*matrix { return nil }
func (d *DropoutLayer) gradients() []*matrix  { return nil }
func (d *DropoutLayer) outputDim() int        { return d.dim }
func (d *DropoutLayer) name() string          { return "dropout" }
