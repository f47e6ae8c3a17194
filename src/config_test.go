package coach

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExperiment(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExperimentDefaults(t *testing.T) {
	path := writeExperiment(t, "train:\n  seed: 7\n")

	cfg, err := LoadExperiment(path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Train.Seed)
	assert.Equal(t, 20, cfg.Model.InputDim)
	assert.Equal(t, 0.1, cfg.Train.LR)
	assert.Equal(t, 0.7, cfg.Callbacks.MinAccuracy)
	assert.Equal(t, 1000, cfg.Data.Samples)
}

func TestLoadExperimentOverrides(t *testing.T) {
	path := writeExperiment(t, `
model:
  input_dim: 8
  hidden_units: 32
  num_classes: 3
train:
  optimizer: adam
  lr: 0.01
  max_epochs: 50
callbacks:
  min_accuracy: 0.9
data:
  samples: 300
  features: 8
  classes: 3
search:
  folds: 5
  grid:
    lr: [0.1, 0.01]
`)

	cfg, err := LoadExperiment(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Model.InputDim)
	assert.Equal(t, "adam", cfg.Train.Optimizer)
	assert.Equal(t, 0.9, cfg.Callbacks.MinAccuracy)
	assert.Equal(t, 5, cfg.Search.Folds)
	assert.Len(t, cfg.Search.Grid["lr"], 2)
}

func TestLoadExperimentMissingFile(t *testing.T) {
	_, err := LoadExperiment(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadExperimentBadYAML(t *testing.T) {
	path := writeExperiment(t, "train: [not a map")
	_, err := LoadExperiment(path)
	assert.Error(t, err)
}

func TestLoadExperimentValidation(t *testing.T) {
	// data shape disagrees with the model
	path := writeExperiment(t, "data:\n  features: 5\n")
	_, err := LoadExperiment(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input_dim")

	path = writeExperiment(t, "callbacks:\n  min_accuracy: 1.5\n")
	_, err = LoadExperiment(path)
	assert.Error(t, err)

	path = writeExperiment(t, "search:\n  folds: 1\n  grid:\n    lr: [0.1]\n")
	_, err = LoadExperiment(path)
	assert.Error(t, err)
}

func TestExperimentNewClassifierAttachesCallbacks(t *testing.T) {
	cfg := DefaultExperiment()
	cfg.Callbacks.Monitor = true

	clf := cfg.NewClassifier()
	names := clf.Callbacks().Names()
	assert.Contains(t, names, "print_log")
	assert.Contains(t, names, "accuracy_threshold")
	assert.Contains(t, names, "resource_monitor")

	cfg.Callbacks.MinAccuracy = 0
	cfg.Callbacks.Monitor = false
	cfg.Train.Verbose = 0
	clf = cfg.NewClassifier()
	assert.Empty(t, clf.Callbacks().Names())
}

func TestExperimentBuildWithStore(t *testing.T) {
	cfg := DefaultExperiment()
	cfg.Callbacks.HistoryDB = filepath.Join(t.TempDir(), "history.db")

	clf, store, err := cfg.Build()
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	_, ok := clf.Callbacks().Get("history_store")
	assert.True(t, ok)
}

func TestExperimentBuildWithoutStore(t *testing.T) {
	cfg := DefaultExperiment()
	clf, store, err := cfg.Build()
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NotNil(t, clf)
}

func TestExperimentMakeData(t *testing.T) {
	cfg := DefaultExperiment()
	cfg.Data.Samples = 50

	X, y := cfg.MakeData()
	assert.Len(t, X, 50)
	assert.Len(t, y, 50)
	for _, row := range X {
		assert.Len(t, row, cfg.Data.Features)
	}
}
