package coach

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HistoryStoreCallback {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	h := newHistory()
	store.OnTrainBegin(h)
	h.append(map[string]float64{"train_loss": 1.0, "valid_accuracy": 0.5})
	store.OnEpochEnd(h)
	h.append(map[string]float64{"train_loss": 0.8, "valid_accuracy": 0.6})
	store.OnEpochEnd(h)
	store.OnTrainEnd(h)
	require.NoError(t, store.Err())

	records, err := store.LoadRun(h.RunID())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Epoch)
	assert.Equal(t, 1.0, records[0].Metrics["train_loss"])
	assert.Equal(t, 2, records[1].Epoch)
	assert.Equal(t, 0.6, records[1].Metrics["valid_accuracy"])
}

func TestHistoryStoreWarmStartSingleRun(t *testing.T) {
	store := newTestStore(t)

	h := newHistory()
	store.OnTrainBegin(h)
	h.append(map[string]float64{"train_loss": 1.0})
	store.OnEpochEnd(h)
	store.OnTrainEnd(h)

	// second fit call on the same run keeps appending
	store.OnTrainBegin(h)
	h.append(map[string]float64{"train_loss": 0.7})
	store.OnEpochEnd(h)
	store.OnTrainEnd(h)
	require.NoError(t, store.Err())

	runs, err := store.Runs()
	require.NoError(t, err)
	assert.Equal(t, []string{h.RunID()}, runs)

	records, err := store.LoadRun(h.RunID())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestHistoryStoreSeparateRuns(t *testing.T) {
	store := newTestStore(t)

	h := newHistory()
	store.OnTrainBegin(h)
	h.append(map[string]float64{"train_loss": 1.0})
	store.OnEpochEnd(h)
	store.OnTrainEnd(h)
	first := h.RunID()

	h.reset()
	store.OnTrainBegin(h)
	h.append(map[string]float64{"train_loss": 0.9})
	store.OnEpochEnd(h)
	store.OnTrainEnd(h)

	runs, err := store.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.NotEqual(t, first, h.RunID())
}

func TestHistoryStoreLoadUnknownRun(t *testing.T) {
	store := newTestStore(t)
	records, err := store.LoadRun("missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryStoreAttachedToClassifier(t *testing.T) {
	store := newTestStore(t)

	X, y := MakeClassification(80, 4, 2, 1)
	cfg := testConfig()
	cfg.MaxEpochs = 4
	clf := NewClassifier(cfg)
	require.NoError(t, clf.AddCallback("history_store", store))

	require.NoError(t, clf.Fit(X, y))
	require.NoError(t, store.Err())

	records, err := store.LoadRun(clf.History().RunID())
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Contains(t, records[0].Metrics, "train_loss")
}
