package coach

import (
	"math/rand"
)

// matrix is the internal 2D storage for activations and parameters.
// Row-major, dense. Not exposed to users.
type matrix struct {
	rows int
	cols int
	data []float64
}

func newMatrix(rows, cols int) *matrix {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	return &matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

func (m *matrix) at(i, j int) float64 {
	return m.data[i*m.cols+j]
}

func (m *matrix) set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

func (m *matrix) row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *matrix) fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

func (m *matrix) fillRandNorm(mean, std float64, rng *rand.Rand) {
	for i := range m.data {
		m.data[i] = rng.NormFloat64()*std + mean
	}
}

func (m *matrix) fillRandUniform(low, high float64, rng *rand.Rand) {
	for i := range m.data {
		m.data[i] = rng.Float64()*(high-low) + low
	}
}

func (m *matrix) clone() *matrix {
	nm := newMatrix(m.rows, m.cols)
	copy(nm.data, m.data)
	return nm
}

func (m *matrix) zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// fromRows copies a [][]float64 into a fresh matrix. All rows must have
// the same width as the first one.
func fromRows(rows [][]float64) *matrix {
	if len(rows) == 0 {
		return newMatrix(0, 0)
	}
	n := len(rows)
	cols := len(rows[0])
	m := newMatrix(n, cols)
	for i, r := range rows {
		copy(m.row(i), r)
	}
	return m
}

// Matrix operations - hot loops, no bounds checking beyond the slices' own.

func matmul(a, b, out *matrix) {
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			sum := 0.0
			for l := 0; l < a.cols; l++ {
				sum += a.data[i*a.cols+l] * b.data[l*b.cols+j]
			}
			out.data[i*b.cols+j] = sum
		}
	}
}

// matmulTransA computes aᵀ·b.
func matmulTransA(a, b, out *matrix) {
	for i := 0; i < a.cols; i++ {
		for j := 0; j < b.cols; j++ {
			sum := 0.0
			for l := 0; l < a.rows; l++ {
				sum += a.data[l*a.cols+i] * b.data[l*b.cols+j]
			}
			out.data[i*b.cols+j] = sum
		}
	}
}

// matmulTransB computes a·bᵀ.
func matmulTransB(a, b, out *matrix) {
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.rows; j++ {
			sum := 0.0
			for l := 0; l < a.cols; l++ {
				sum += a.data[i*a.cols+l] * b.data[j*b.cols+l]
			}
			out.data[i*b.rows+j] = sum
		}
	}
}

// addRowVec adds bias (1×cols) to every row of m.
func addRowVec(m, bias *matrix) {
	for i := 0; i < m.rows; i++ {
		row := m.row(i)
		for j := range row {
			row[j] += bias.data[j]
		}
	}
}

// sumRows accumulates every row of m into out (1×cols).
func sumRows(m, out *matrix) {
	for j := 0; j < m.cols; j++ {
		sum := 0.0
		for i := 0; i < m.rows; i++ {
			sum += m.data[i*m.cols+j]
		}
		out.data[j] = sum
	}
}

func argmaxRow(row []float64) int {
	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] > row[best] {
			best = j
		}
	}
	return best
}
