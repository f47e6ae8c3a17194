package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendNumbersEpochs(t *testing.T) {
	h := newHistory()
	assert.Equal(t, 0, h.Len())

	h.append(map[string]float64{"train_loss": 1.5})
	h.append(map[string]float64{"train_loss": 1.2})
	h.append(map[string]float64{"train_loss": 0.9})

	require.Equal(t, 3, h.Len())
	for i := 1; i <= 3; i++ {
		rec, ok := h.At(i)
		require.True(t, ok)
		assert.Equal(t, i, rec.Epoch)
	}
}

func TestHistoryAtOutOfRange(t *testing.T) {
	h := newHistory()
	h.append(map[string]float64{"train_loss": 1.0})

	_, ok := h.At(0)
	assert.False(t, ok)
	_, ok = h.At(2)
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)
}

func TestHistoryLatest(t *testing.T) {
	h := newHistory()
	_, ok := h.Latest()
	assert.False(t, ok)

	h.append(map[string]float64{"train_loss": 1.0})
	h.append(map[string]float64{"train_loss": 0.5})

	rec, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 2, rec.Epoch)
	assert.Equal(t, 0.5, rec.Metrics["train_loss"])
}

func TestHistoryColumn(t *testing.T) {
	h := newHistory()
	h.append(map[string]float64{"valid_accuracy": 0.5, "train_loss": 1.0})
	h.append(map[string]float64{"train_loss": 0.8})
	h.append(map[string]float64{"valid_accuracy": 0.8, "train_loss": 0.6})

	col := h.Column("valid_accuracy")
	assert.Equal(t, []float64{0.5, 0.8}, col)
	assert.Len(t, h.Column("train_loss"), 3)
	assert.Empty(t, h.Column("missing"))
}

func TestHistoryAppendCopiesMetrics(t *testing.T) {
	h := newHistory()
	metrics := map[string]float64{"train_loss": 1.0}
	h.append(metrics)
	metrics["train_loss"] = 99.0

	rec, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, 1.0, rec.Metrics["train_loss"])
}

func TestHistoryResetChangesRunID(t *testing.T) {
	h := newHistory()
	h.append(map[string]float64{"train_loss": 1.0})
	first := h.RunID()
	require.NotEmpty(t, first)

	h.reset()
	assert.Equal(t, 0, h.Len())
	assert.NotEqual(t, first, h.RunID())
}
