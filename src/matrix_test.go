package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatmul(t *testing.T) {
	a := fromRows([][]float64{{1, 2}, {3, 4}})
	b := fromRows([][]float64{{5, 6}, {7, 8}})
	out := newMatrix(2, 2)

	matmul(a, b, out)
	assert.Equal(t, []float64{19, 22, 43, 50}, out.data)
}

func TestMatmulTransA(t *testing.T) {
	a := fromRows([][]float64{{1, 2}, {3, 4}, {5, 6}}) // 3x2
	b := fromRows([][]float64{{1, 0}, {0, 1}, {1, 1}}) // 3x2
	out := newMatrix(2, 2)

	matmulTransA(a, b, out) // aT (2x3) * b (3x2)
	assert.Equal(t, []float64{6, 8, 8, 10}, out.data)
}

func TestMatmulTransB(t *testing.T) {
	a := fromRows([][]float64{{1, 2, 3}})            // 1x3
	b := fromRows([][]float64{{4, 5, 6}, {1, 1, 1}}) // 2x3
	out := newMatrix(1, 2)

	matmulTransB(a, b, out) // a (1x3) * bT (3x2)
	assert.Equal(t, []float64{32, 6}, out.data)
}

func TestAddRowVec(t *testing.T) {
	m := fromRows([][]float64{{1, 2}, {3, 4}})
	bias := fromRows([][]float64{{10, 20}})

	addRowVec(m, bias)
	assert.Equal(t, []float64{11, 22, 13, 24}, m.data)
}

func TestSumRows(t *testing.T) {
	m := fromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	out := newMatrix(1, 2)

	sumRows(m, out)
	assert.Equal(t, []float64{9, 12}, out.data)
}

func TestArgmaxRow(t *testing.T) {
	assert.Equal(t, 2, argmaxRow([]float64{0.1, 0.3, 0.6}))
	assert.Equal(t, 0, argmaxRow([]float64{0.5, 0.5}))
	assert.Equal(t, 0, argmaxRow([]float64{1}))
}

func TestFromRowsCopies(t *testing.T) {
	rows := [][]float64{{1, 2}}
	m := fromRows(rows)
	rows[0][0] = 99

	assert.Equal(t, 1.0, m.at(0, 0))
}

func TestFromRowsEmpty(t *testing.T) {
	m := fromRows(nil)
	assert.Equal(t, 0, m.rows)
	assert.Equal(t, 0, m.cols)
	assert.Empty(t, m.data)
}

func TestMatrixCloneAndZero(t *testing.T) {
	m := fromRows([][]float64{{1, 2}})
	c := m.clone()
	c.set(0, 0, 7)
	assert.Equal(t, 1.0, m.at(0, 0))

	m.zero()
	assert.Equal(t, []float64{0, 0}, m.data)
}
