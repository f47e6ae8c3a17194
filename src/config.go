package coach

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExperimentConfig is the YAML description of a full experiment: the
// model, the training hyperparameters, which callbacks to attach, the
// synthetic data to generate, and an optional parameter grid.
type ExperimentConfig struct {
	Model struct {
		InputDim    int `yaml:"input_dim"`
		HiddenUnits int `yaml:"hidden_units"`
		NumClasses  int `yaml:"num_classes"`
	} `yaml:"model"`

	Train struct {
		Optimizer  string  `yaml:"optimizer"`
		LR         float64 `yaml:"lr"`
		Momentum   float64 `yaml:"momentum"`
		ClipNorm   float64 `yaml:"clip_norm"`
		Loss       string  `yaml:"loss"`
		MaxEpochs  int     `yaml:"max_epochs"`
		BatchSize  int     `yaml:"batch_size"`
		Shuffle    bool    `yaml:"shuffle"`
		ValidSplit float64 `yaml:"valid_split"`
		Stratified bool    `yaml:"stratified"`
		WarmStart  bool    `yaml:"warm_start"`
		Verbose    int     `yaml:"verbose"`
		Seed       int64   `yaml:"seed"`
	} `yaml:"train"`

	Callbacks struct {
		MinAccuracy float64 `yaml:"min_accuracy"` // 0 disables the threshold callback
		Monitor     bool    `yaml:"monitor"`      // attach the resource monitor
		HistoryDB   string  `yaml:"history_db"`   // sqlite path, "" disables persistence
	} `yaml:"callbacks"`

	Data struct {
		Samples  int   `yaml:"samples"`
		Features int   `yaml:"features"`
		Classes  int   `yaml:"classes"`
		Seed     int64 `yaml:"seed"`
	} `yaml:"data"`

	Search struct {
		Folds int              `yaml:"folds"`
		Refit bool             `yaml:"refit"`
		Grid  map[string][]any `yaml:"grid"`
	} `yaml:"search"`
}

// DefaultExperiment mirrors the two-class toy problem the library is
// typically demonstrated on.
func DefaultExperiment() *ExperimentConfig {
	cfg := &ExperimentConfig{}
	cfg.Model.InputDim = 20
	cfg.Model.HiddenUnits = 10
	cfg.Model.NumClasses = 2
	cfg.Train.Optimizer = "sgd"
	cfg.Train.LR = 0.1
	cfg.Train.Momentum = 0.9
	cfg.Train.Loss = "cross_entropy"
	cfg.Train.MaxEpochs = 20
	cfg.Train.BatchSize = 32
	cfg.Train.Shuffle = true
	cfg.Train.ValidSplit = 0.2
	cfg.Train.Stratified = true
	cfg.Train.Verbose = 1
	cfg.Train.Seed = 0
	cfg.Callbacks.MinAccuracy = 0.7
	cfg.Data.Samples = 1000
	cfg.Data.Features = 20
	cfg.Data.Classes = 2
	cfg.Data.Seed = 0
	cfg.Search.Folds = 3
	cfg.Search.Refit = true
	return cfg
}

// LoadExperiment reads and validates an experiment file. Fields the file
// omits keep their defaults.
func LoadExperiment(path string) (*ExperimentConfig, error) {
	cfg := DefaultExperiment()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse experiment file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment validation failed: %w", err)
	}
	return cfg, nil
}

func (c *ExperimentConfig) Validate() error {
	if c.Data.Samples <= 0 {
		return errorf("data.samples must be > 0, got %d", c.Data.Samples)
	}
	if c.Data.Features != c.Model.InputDim {
		return errorf("data.features (%d) must match model.input_dim (%d)", c.Data.Features, c.Model.InputDim)
	}
	if c.Data.Classes != c.Model.NumClasses {
		return errorf("data.classes (%d) must match model.num_classes (%d)", c.Data.Classes, c.Model.NumClasses)
	}
	if c.Callbacks.MinAccuracy < 0 || c.Callbacks.MinAccuracy > 1 {
		return errorf("callbacks.min_accuracy must be in [0, 1], got %f", c.Callbacks.MinAccuracy)
	}
	if len(c.Search.Grid) > 0 && c.Search.Folds < 2 {
		return errorf("search.folds must be >= 2 when a grid is given, got %d", c.Search.Folds)
	}
	return ValidateClassifierConfig(c.classifierConfig())
}

func (c *ExperimentConfig) classifierConfig() ClassifierConfig {
	return ClassifierConfig{
		InputDim:    c.Model.InputDim,
		HiddenUnits: c.Model.HiddenUnits,
		NumClasses:  c.Model.NumClasses,
		Optimizer:   c.Train.Optimizer,
		LR:          c.Train.LR,
		Momentum:    c.Train.Momentum,
		ClipNorm:    c.Train.ClipNorm,
		Loss:        c.Train.Loss,
		MaxEpochs:   c.Train.MaxEpochs,
		BatchSize:   c.Train.BatchSize,
		Shuffle:     c.Train.Shuffle,
		ValidSplit:  c.Train.ValidSplit,
		Stratified:  c.Train.Stratified,
		WarmStart:   c.Train.WarmStart,
		Verbose:     c.Train.Verbose,
		Seed:        c.Train.Seed,
	}
}

// NewClassifier builds a classifier from the config without persistence,
// suitable as a GridSearch factory.
func (c *ExperimentConfig) NewClassifier() *Classifier {
	clf := NewClassifier(c.classifierConfig())
	if c.Callbacks.MinAccuracy > 0 {
		_ = clf.AddCallback("accuracy_threshold", AccuracyThreshold(AccuracyThresholdConfig{
			MinAccuracy: c.Callbacks.MinAccuracy,
		}))
	}
	if c.Callbacks.Monitor {
		_ = clf.AddCallback("resource_monitor", ResourceMonitor(ResourceMonitorConfig{}))
	}
	return clf
}

// Build constructs the classifier plus, when configured, its SQLite
// history store. The caller owns the store and must Close it; store is
// nil when persistence is disabled.
func (c *ExperimentConfig) Build() (*Classifier, *HistoryStoreCallback, error) {
	clf := c.NewClassifier()
	if c.Callbacks.HistoryDB == "" {
		return clf, nil, nil
	}

	store, err := NewHistoryStore(c.Callbacks.HistoryDB)
	if err != nil {
		return nil, nil, err
	}
	if err := clf.AddCallback("history_store", store); err != nil {
		store.Close()
		return nil, nil, err
	}
	return clf, store, nil
}

// MakeData generates the experiment's synthetic dataset.
func (c *ExperimentConfig) MakeData() ([][]float64, []int) {
	return MakeClassification(c.Data.Samples, c.Data.Features, c.Data.Classes, c.Data.Seed)
}
