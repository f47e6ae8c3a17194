package coach

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenseLayerForwardShape(t *testing.T) {
	layer := Dense(3).
		WithActivation(Linear()).
		WithInitializer(XavierNormal(1.0)).
		WithBiasInitializer(Zeros()).
		WithBias(true).
		Build()

	rng := rand.New(rand.NewSource(1))
	require.NoError(t, layer.build(2, rng))
	assert.Equal(t, 3, layer.outputDim())

	out, err := layer.forward(fromRows([][]float64{{1, 2}, {3, 4}}), false)
	require.NoError(t, err)
	assert.Equal(t, 2, out.rows)
	assert.Equal(t, 3, out.cols)
}

func TestDenseLayerBuildErrors(t *testing.T) {
	layer := Dense(3).WithActivation(ReLU()).Build()
	rng := rand.New(rand.NewSource(1))
	assert.Error(t, layer.build(2, rng)) // missing initializer

	layer = Dense(0).WithActivation(ReLU()).WithInitializer(XavierNormal(1.0)).Build()
	assert.Error(t, layer.build(2, rng))
}
