package coach

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropoutLayer(t *testing.T) {
	layer := Dropout(0.5).Build()
	rng := rand.New(rand.NewSource(1))
	require.NoError(t, layer.build(4, rng))

	input := fromRows([][]float64{{1, 1, 1, 1}, {2, 2, 2, 2}})

	// inference passes through untouched
	out, err := layer.forward(input, false)
	require.NoError(t, err)
	assert.Same(t, input, out)

	out, err = layer.forward(input, true)
	require.NoError(t, err)
	for _, v := range out.data {
		assert.True(t, v == 0 || v == 2 || v == 4)
	}

	grad := fromRows([][]float64{{1, 1, 1, 1}, {1, 1, 1, 1}})
	gradIn, err := layer.backward(grad)
	require.NoError(t, err)
	for i, v := range gradIn.data {
		if out.data[i] == 0 {
			assert.Equal(t, 0.0, v)
		} else {
			assert.Equal(t, 2.0, v)
		}
	}
}

func TestDropoutRateValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Error(t, Dropout(1.0).Build().build(4, rng))
	assert.Error(t, Dropout(-0.1).Build().build(4, rng))
}
