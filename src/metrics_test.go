package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracyMetric(t *testing.T) {
	probs := fromRows([][]float64{{0.9, 0.1}, {0.2, 0.8}, {0.6, 0.4}})
	m := Accuracy()
	m.reset()
	m.update(probs, []int{0, 1, 1})
	assert.InDelta(t, 2.0/3.0, m.result(), 1e-12)
}

func TestPrecisionRecallF1(t *testing.T) {
	// predictions: 0, 1, 1, 0; truth: 0, 1, 0, 1
	probs := fromRows([][]float64{{0.9, 0.1}, {0.2, 0.8}, {0.3, 0.7}, {0.8, 0.2}})
	labels := []int{0, 1, 0, 1}

	p := Precision(PrecisionConfig{PositiveClass: 1})
	p.reset()
	p.update(probs, labels)
	assert.InDelta(t, 0.5, p.result(), 1e-12)

	r := Recall(RecallConfig{PositiveClass: 1})
	r.reset()
	r.update(probs, labels)
	assert.InDelta(t, 0.5, r.result(), 1e-12)

	f := F1Score(F1Config{PositiveClass: 1})
	f.reset()
	f.update(probs, labels)
	assert.InDelta(t, 0.5, f.result(), 1e-12)
}
