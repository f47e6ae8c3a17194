package coach

import (
	"math/rand"
	"sort"
)

// Dataset is row access over training inputs.
type Dataset interface {
	Len() int
	Row(i int) []float64
}

// LabeledDataset additionally exposes the target vector, which a
// stratified split needs.
type LabeledDataset interface {
	Dataset
	Targets() []int
}

// ArrayData wraps parallel X/y slices.
type ArrayData struct {
	X [][]float64
	Y []int
}

func NewArrayData(X [][]float64, y []int) (*ArrayData, error) {
	if len(X) == 0 {
		return nil, errorf("ArrayData requires at least one sample")
	}
	if len(X) != len(y) {
		return nil, errorf("ArrayData X and y must have same length, got %d and %d", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return nil, errorf("ArrayData row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return &ArrayData{X: X, Y: y}, nil
}

func (a *ArrayData) Len() int            { return len(a.X) }
func (a *ArrayData) Row(i int) []float64 { return a.X[i] }
func (a *ArrayData) Targets() []int      { return a.Y }

// SliceDict is an ordered collection of named feature blocks sharing one
// row count. It exists for models whose input arrives as several named
// arrays; Row concatenates the blocks in insertion order so the wrapper
// can feed them to a flat dense module. It carries no targets, which is
// exactly the case where a stratified split must be given y explicitly.
type SliceDict struct {
	keys   []string
	blocks map[string][][]float64
	rows   int
}

func NewSliceDict() *SliceDict {
	return &SliceDict{blocks: make(map[string][][]float64)}
}

// Set adds or replaces a named block. Every block must have the same
// number of rows as the first one set.
func (s *SliceDict) Set(key string, values [][]float64) error {
	if len(values) == 0 {
		return errorf("SliceDict block %q must not be empty", key)
	}
	width := len(values[0])
	for i, row := range values {
		if len(row) != width {
			return errorf("SliceDict block %q row %d has %d features, expected %d", key, i, len(row), width)
		}
	}
	if len(s.keys) > 0 && len(values) != s.rows {
		return errorf("SliceDict block %q has %d rows, expected %d", key, len(values), s.rows)
	}

	if _, exists := s.blocks[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.blocks[key] = values
	s.rows = len(values)
	return nil
}

// Keys returns block names in insertion order.
func (s *SliceDict) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Get returns the block stored under key.
func (s *SliceDict) Get(key string) ([][]float64, bool) {
	block, ok := s.blocks[key]
	return block, ok
}

func (s *SliceDict) Len() int { return s.rows }

// Row concatenates the i-th row of every block, in insertion order.
func (s *SliceDict) Row(i int) []float64 {
	var out []float64
	for _, key := range s.keys {
		out = append(out, s.blocks[key][i]...)
	}
	return out
}

// Slice returns a new SliceDict restricted to the given row indices.
func (s *SliceDict) Slice(indices []int) (*SliceDict, error) {
	out := NewSliceDict()
	for _, key := range s.keys {
		block := s.blocks[key]
		rows := make([][]float64, len(indices))
		for i, idx := range indices {
			if idx < 0 || idx >= s.rows {
				return nil, errorf("SliceDict index %d out of range [0, %d)", idx, s.rows)
			}
			rows[i] = block[idx]
		}
		if err := out.Set(key, rows); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// plainSplit shuffles indices and holds out the tail fraction.
func plainSplit(n int, fraction float64, rng *rand.Rand) ([]int, []int) {
	indices := rng.Perm(n)
	validSize := int(float64(n) * fraction)
	trainSize := n - validSize
	return indices[:trainSize], indices[trainSize:]
}

// stratifiedSplit holds out the given fraction of every class. Classes
// with a single sample stay in the training set.
func stratifiedSplit(y []int, fraction float64, rng *rand.Rand) ([]int, []int, error) {
	if len(y) == 0 {
		return nil, nil, errorf("stratified split requires a non-empty target vector")
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errorf("stratified split fraction must be in (0, 1), got %f", fraction)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	var trainIdx, validIdx []int
	for _, label := range classes {
		indices := byClass[label]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		validSize := int(float64(len(indices)) * fraction)
		if validSize == 0 && len(indices) > 1 {
			validSize = 1
		}
		validIdx = append(validIdx, indices[:validSize]...)
		trainIdx = append(trainIdx, indices[validSize:]...)
	}

	if len(trainIdx) == 0 {
		return nil, nil, errorf("stratified split left no training samples")
	}
	return trainIdx, validIdx, nil
}

// StratifiedSplit holds out a per-class proportional validation fraction
// and returns train and validation index slices.
func StratifiedSplit(y []int, fraction float64, seed int64) ([]int, []int, error) {
	return stratifiedSplit(y, fraction, rand.New(rand.NewSource(seed)))
}

// stratifiedKFold deals every class's shuffled indices round-robin into
// k folds and returns the test indices of each fold.
func stratifiedKFold(y []int, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, errorf("k-fold requires k >= 2, got %d", k)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	for _, label := range classes {
		indices := byClass[label]
		if len(indices) < k {
			return nil, errorf("class %d has %d samples, fewer than %d folds", label, len(indices), k)
		}
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for i, idx := range indices {
			folds[i%k] = append(folds[i%k], idx)
		}
	}
	return folds, nil
}

// MakeClassification generates a gaussian-blob classification problem:
// one cluster center per class, unit-variance noise around it.
func MakeClassification(samples, features, classes int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))

	centers := make([][]float64, classes)
	for c := range centers {
		centers[c] = make([]float64, features)
		for f := range centers[c] {
			centers[c][f] = rng.Float64()*8 - 4
		}
	}

	X := make([][]float64, samples)
	y := make([]int, samples)
	for i := range X {
		label := i % classes
		y[i] = label
		X[i] = make([]float64, features)
		for f := range X[i] {
			X[i][f] = centers[label][f] + rng.NormFloat64()
		}
	}
	return X, y
}
