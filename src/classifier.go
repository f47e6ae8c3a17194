package coach

import (
	"errors"
	"math/rand"
	"sort"
	"time"
)

// ClassifierConfig holds all hyperparameters for a Classifier. Zero
// values are not filled in silently; Validate rejects incomplete configs.
type ClassifierConfig struct {
	InputDim    int
	HiddenUnits int
	NumClasses  int

	// Module optionally supplies custom layers; it is called on every
	// (re)initialization so each run starts from fresh parameters. When
	// nil, a default dense module is built from HiddenUnits/NumClasses.
	Module func() []Layer

	Optimizer string // "sgd" or "adam"
	LR        float64
	Momentum  float64 // sgd only

	Loss string // "cross_entropy" or "mse"

	ClipNorm float64 // max global gradient norm, 0 disables clipping

	MaxEpochs  int
	BatchSize  int
	Shuffle    bool
	ValidSplit float64 // fraction held out for validation, 0 disables
	Stratified bool    // per-class proportional validation split
	WarmStart  bool    // successive Fit calls continue instead of re-initializing
	Verbose    int
	Seed       int64

	Scheduler Scheduler // optional learning rate schedule
}

// ValidateClassifierConfig checks all required fields are set
func ValidateClassifierConfig(cfg ClassifierConfig) error {
	if cfg.InputDim <= 0 {
		return errorf("InputDim must be > 0, got %d", cfg.InputDim)
	}
	if cfg.Module == nil {
		if cfg.HiddenUnits <= 0 {
			return errorf("HiddenUnits must be > 0, got %d", cfg.HiddenUnits)
		}
		if cfg.NumClasses < 2 {
			return errorf("NumClasses must be >= 2, got %d", cfg.NumClasses)
		}
	}
	switch cfg.Optimizer {
	case "", "sgd", "adam":
	default:
		return errorf("Optimizer must be 'sgd' or 'adam', got %q", cfg.Optimizer)
	}
	switch cfg.Loss {
	case "", "cross_entropy", "mse":
	default:
		return errorf("Loss must be 'cross_entropy' or 'mse', got %q", cfg.Loss)
	}
	if cfg.Loss == "mse" && cfg.Module == nil {
		return errorf("Loss 'mse' needs a custom Module with a linear or sigmoid output - the default module ends in softmax, whose backward pass only matches the cross-entropy gradient")
	}
	if cfg.LR <= 0 {
		return errorf("LR must be > 0, got %f", cfg.LR)
	}
	if cfg.MaxEpochs <= 0 {
		return errorf("MaxEpochs must be > 0, got %d", cfg.MaxEpochs)
	}
	if cfg.BatchSize <= 0 {
		return errorf("BatchSize must be > 0, got %d", cfg.BatchSize)
	}
	if cfg.ClipNorm < 0 {
		return errorf("ClipNorm must be >= 0, got %f", cfg.ClipNorm)
	}
	if cfg.ValidSplit < 0 || cfg.ValidSplit >= 1 {
		return errorf("ValidSplit must be in [0, 1), got %f", cfg.ValidSplit)
	}
	return nil
}

// Classifier is a scikit-style wrapper around a dense network: fit,
// predict, score, per-epoch history and named lifecycle callbacks.
type Classifier struct {
	cfg       ClassifierConfig
	layers    []Layer
	optimizer Optimizer
	loss      Loss
	history   *History
	callbacks *CallbackRegistry
	rng       *rand.Rand
	currentLR float64

	initialized bool
}

// NewClassifier creates an unfitted classifier. Configuration problems
// surface when Initialize or Fit is called.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	c := &Classifier{
		cfg:       cfg,
		history:   newHistory(),
		callbacks: newCallbackRegistry(),
	}
	if cfg.Verbose >= 1 {
		// registry is empty at this point, Add cannot fail
		_ = c.callbacks.Add("print_log", PrintLog(PrintLogConfig{Every: 1}))
	}
	return c
}

// AddCallback registers a lifecycle callback under a unique name. The
// name is the first segment after "callbacks" in SetParams paths.
func (c *Classifier) AddCallback(name string, cb Callback) error {
	return c.callbacks.Add(name, cb)
}

// Callbacks exposes the registry for lookups.
func (c *Classifier) Callbacks() *CallbackRegistry {
	return c.callbacks
}

// History returns the training log for the current session.
func (c *Classifier) History() *History {
	return c.history
}

// Initialized reports whether the network has been built.
func (c *Classifier) Initialized() bool {
	return c.initialized
}

func (c *Classifier) module() []Layer {
	if c.cfg.Module != nil {
		return c.cfg.Module()
	}
	return []Layer{
		Dense(c.cfg.HiddenUnits).
			WithActivation(ReLU()).
			WithInitializer(XavierNormal(1.0)).
			WithBiasInitializer(Zeros()).
			WithBias(true).
			Build(),
		Dense(c.cfg.HiddenUnits).
			WithActivation(ReLU()).
			WithInitializer(XavierNormal(1.0)).
			WithBiasInitializer(Zeros()).
			WithBias(true).
			Build(),
		Dense(c.cfg.NumClasses).
			WithActivation(Softmax()).
			WithInitializer(XavierNormal(1.0)).
			WithBiasInitializer(Zeros()).
			WithBias(true).
			Build(),
	}
}

func (c *Classifier) buildOptimizer() Optimizer {
	if c.cfg.Optimizer == "adam" {
		return Adam(AdamConfig{
			LR:      c.cfg.LR,
			Beta1:   0.9,
			Beta2:   0.999,
			Epsilon: 1e-8,
		})
	}
	return SGD(SGDConfig{
		LR:       c.cfg.LR,
		Momentum: c.cfg.Momentum,
	})
}

func (c *Classifier) buildLoss() Loss {
	if c.cfg.Loss == "mse" {
		return MSE()
	}
	return CrossEntropy(CrossEntropyConfig{})
}

// Initialize (re)builds the network from the current config, resets the
// history to a fresh run, and fires OnInitialize on every callback.
// Fit calls it implicitly unless WarmStart is set and the classifier is
// already initialized.
func (c *Classifier) Initialize() error {
	if err := ValidateClassifierConfig(c.cfg); err != nil {
		return err
	}

	c.rng = rand.New(rand.NewSource(c.cfg.Seed))
	c.layers = c.module()

	dim := c.cfg.InputDim
	for i, layer := range c.layers {
		if err := layer.build(dim, c.rng); err != nil {
			return errorf("layer %d (%s): %v", i, layer.name(), err)
		}
		dim = layer.outputDim()
	}

	c.optimizer = c.buildOptimizer()
	c.currentLR = c.cfg.LR
	c.loss = c.buildLoss()
	c.history.reset()
	c.callbacks.initialize()
	c.initialized = true
	return nil
}

// Fit trains the classifier on X and integer labels y. Without WarmStart
// every call re-initializes; with WarmStart subsequent calls continue
// from the current parameters and keep appending to the same history.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	if !c.initialized || !c.cfg.WarmStart {
		if err := c.Initialize(); err != nil {
			return err
		}
	}
	return c.fitLoop(X, y)
}

// PartialFit trains without re-initializing, regardless of WarmStart.
// The first call initializes if needed.
func (c *Classifier) PartialFit(X [][]float64, y []int) error {
	if !c.initialized {
		if err := c.Initialize(); err != nil {
			return err
		}
	}
	return c.fitLoop(X, y)
}

// FitDataset trains from a Dataset. When y is nil the dataset must
// implement LabeledDataset; a stratified validation split cannot be
// derived without an explicit target vector.
func (c *Classifier) FitDataset(ds Dataset, y []int) error {
	if y == nil {
		ld, ok := ds.(LabeledDataset)
		if !ok {
			if c.cfg.Stratified && c.cfg.ValidSplit > 0 {
				return errors.New("coach: stratified split requires an explicit target vector - dataset does not expose targets")
			}
			return errors.New("coach: no targets - pass y or use a LabeledDataset")
		}
		y = ld.Targets()
	}

	X := make([][]float64, ds.Len())
	for i := range X {
		X[i] = ds.Row(i)
	}
	return c.Fit(X, y)
}

func (c *Classifier) numClasses() int {
	return c.layers[len(c.layers)-1].outputDim()
}

func (c *Classifier) validateData(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("coach: no training data provided")
	}
	if len(X) != len(y) {
		return errorf("X and y must have same length, got %d and %d", len(X), len(y))
	}
	for i, row := range X {
		if len(row) != c.cfg.InputDim {
			return errorf("sample %d has %d features, expected %d", i, len(row), c.cfg.InputDim)
		}
	}
	nClasses := c.numClasses()
	for i, label := range y {
		if label < 0 || label >= nClasses {
			return errorf("label %d at index %d out of range [0, %d)", label, i, nClasses)
		}
	}
	return nil
}

func (c *Classifier) forward(m *matrix, training bool) (*matrix, error) {
	out := m
	var err error
	for _, layer := range c.layers {
		out, err = layer.forward(out, training)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func selectRows(X [][]float64, y []int, indices []int) (*matrix, []int) {
	rows := make([][]float64, len(indices))
	labels := make([]int, len(indices))
	for i, idx := range indices {
		rows[i] = X[idx]
		labels[i] = y[idx]
	}
	return fromRows(rows), labels
}

// fitLoop runs MaxEpochs epochs, appending one record per epoch and
// dispatching callbacks in strict order. Exactly one OnTrainEnd fires
// per call, after the loop completes or a callback stops it.
func (c *Classifier) fitLoop(X [][]float64, y []int) error {
	if err := c.validateData(X, y); err != nil {
		return err
	}

	var trainIdx, validIdx []int
	var err error
	if c.cfg.ValidSplit > 0 {
		if c.cfg.Stratified {
			trainIdx, validIdx, err = stratifiedSplit(y, c.cfg.ValidSplit, c.rng)
		} else {
			trainIdx, validIdx = plainSplit(len(y), c.cfg.ValidSplit, c.rng)
		}
		if err != nil {
			return err
		}
	} else {
		trainIdx = make([]int, len(y))
		for i := range trainIdx {
			trainIdx[i] = i
		}
	}

	trainX, trainY := selectRows(X, y, trainIdx)
	var validX *matrix
	var validY []int
	if len(validIdx) > 0 {
		validX, validY = selectRows(X, y, validIdx)
	}

	var params, grads []*matrix
	for _, layer := range c.layers {
		params = append(params, layer.parameters()...)
		grads = append(grads, layer.gradients()...)
	}

	accuracy := Accuracy()

	c.callbacks.trainBegin(c.history)

	order := make([]int, trainX.rows)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < c.cfg.MaxEpochs; epoch++ {
		if c.cfg.Scheduler != nil {
			c.currentLR = c.cfg.Scheduler.step(epoch, c.currentLR)
			c.optimizer.setLR(c.currentLR)
		}

		c.callbacks.epochBegin(c.history)
		start := time.Now()

		if c.cfg.Shuffle {
			c.rng.Shuffle(len(order), func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
		}

		epochLoss := 0.0
		numBatches := 0
		for b := 0; b < len(order); b += c.cfg.BatchSize {
			end := b + c.cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			batchRows := make([][]float64, 0, end-b)
			batchLabels := make([]int, 0, end-b)
			for _, idx := range order[b:end] {
				batchRows = append(batchRows, trainX.row(idx))
				batchLabels = append(batchLabels, trainY[idx])
			}
			batchX := fromRows(batchRows)

			output, err := c.forward(batchX, true)
			if err != nil {
				return err
			}

			epochLoss += c.loss.compute(output, batchLabels)
			numBatches++

			gradOut := newMatrix(output.rows, output.cols)
			c.loss.gradient(output, batchLabels, gradOut)
			for i := len(c.layers) - 1; i >= 0; i-- {
				gradOut, err = c.layers[i].backward(gradOut)
				if err != nil {
					return err
				}
			}

			if c.cfg.ClipNorm > 0 {
				clipGradients(grads, c.cfg.ClipNorm)
			}
			c.optimizer.step(params, grads)
		}

		rec := map[string]float64{
			"train_loss": epochLoss / float64(numBatches),
			"dur":        time.Since(start).Seconds(),
		}
		if c.cfg.Scheduler != nil {
			rec["lr"] = c.currentLR
		}

		if validX != nil {
			validOut, err := c.forward(validX, false)
			if err != nil {
				return err
			}
			rec["valid_loss"] = c.loss.compute(validOut, validY)
			accuracy.reset()
			accuracy.update(validOut, validY)
			rec["valid_accuracy"] = accuracy.result()
		}

		c.history.append(rec)

		if c.callbacks.epochEnd(c.history) {
			break
		}
	}

	c.callbacks.trainEnd(c.history)
	return nil
}

// PredictProba returns class probabilities for each input row.
func (c *Classifier) PredictProba(X [][]float64) ([][]float64, error) {
	if !c.initialized {
		return nil, errors.New("coach: classifier must be fitted before prediction")
	}
	if len(X) == 0 {
		return [][]float64{}, nil
	}
	for i, row := range X {
		if len(row) != c.cfg.InputDim {
			return nil, errorf("sample %d has %d features, expected %d", i, len(row), c.cfg.InputDim)
		}
	}

	out, err := c.forward(fromRows(X), false)
	if err != nil {
		return nil, err
	}

	probs := make([][]float64, out.rows)
	for i := range probs {
		probs[i] = make([]float64, out.cols)
		copy(probs[i], out.row(i))
	}
	return probs, nil
}

// Predict returns the most likely class for each input row.
func (c *Classifier) Predict(X [][]float64) ([]int, error) {
	probs, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(probs))
	for i, p := range probs {
		labels[i] = argmaxRow(p)
	}
	return labels, nil
}

// Score returns classification accuracy on X against y.
func (c *Classifier) Score(X [][]float64, y []int) (float64, error) {
	if len(X) != len(y) {
		return 0, errorf("X and y must have same length, got %d and %d", len(X), len(y))
	}
	if len(y) == 0 {
		return 0, errorf("no samples to score")
	}
	pred, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i, p := range pred {
		if p == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y)), nil
}

// SetParams applies double-underscore parameter overrides. Top-level
// hyperparameters use their snake_case name ("lr", "max_epochs", ...);
// callback parameters use callbacks__<name>__<param>. Changes to
// structural parameters take effect on the next initialization; lr also
// applies to the live optimizer so warm-start continuations pick it up.
func (c *Classifier) SetParams(params map[string]any) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		if err := c.setParam(path, params[path]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Classifier) setParam(path string, value any) error {
	segs := splitParamPath(path)

	if segs[0] == "callbacks" {
		if len(segs) != 3 {
			return &ParamError{
				Path:     path,
				Value:    value,
				Expected: "callbacks__<name>__<param>",
				Cause:    "malformed callback path",
			}
		}
		return c.callbacks.setParam(segs[1], segs[2], value)
	}

	if len(segs) != 1 {
		return &ParamError{Path: path, Value: value, Cause: "unknown parameter path"}
	}

	wrongType := func(expected string) error {
		return &ParamError{Path: path, Value: value, Expected: expected, Cause: "wrong type"}
	}

	switch segs[0] {
	case "lr":
		f, ok := toFloat(value)
		if !ok {
			return wrongType("number")
		}
		c.cfg.LR = f
		if c.initialized {
			c.currentLR = f
			c.optimizer.setLR(f)
		}
	case "momentum":
		f, ok := toFloat(value)
		if !ok {
			return wrongType("number")
		}
		c.cfg.Momentum = f
	case "clip_norm":
		f, ok := toFloat(value)
		if !ok {
			return wrongType("number")
		}
		c.cfg.ClipNorm = f
	case "max_epochs":
		n, ok := toInt(value)
		if !ok {
			return wrongType("integer")
		}
		c.cfg.MaxEpochs = n
	case "batch_size":
		n, ok := toInt(value)
		if !ok {
			return wrongType("integer")
		}
		c.cfg.BatchSize = n
	case "hidden_units":
		n, ok := toInt(value)
		if !ok {
			return wrongType("integer")
		}
		c.cfg.HiddenUnits = n
	case "valid_split":
		f, ok := toFloat(value)
		if !ok {
			return wrongType("number")
		}
		c.cfg.ValidSplit = f
	case "stratified":
		b, ok := value.(bool)
		if !ok {
			return wrongType("bool")
		}
		c.cfg.Stratified = b
	case "warm_start":
		b, ok := value.(bool)
		if !ok {
			return wrongType("bool")
		}
		c.cfg.WarmStart = b
	case "shuffle":
		b, ok := value.(bool)
		if !ok {
			return wrongType("bool")
		}
		c.cfg.Shuffle = b
	case "seed":
		n, ok := toInt(value)
		if !ok {
			return wrongType("integer")
		}
		c.cfg.Seed = int64(n)
	case "optimizer":
		s, ok := value.(string)
		if !ok {
			return wrongType("string")
		}
		c.cfg.Optimizer = s
	case "loss":
		s, ok := value.(string)
		if !ok {
			return wrongType("string")
		}
		c.cfg.Loss = s
	default:
		return &ParamError{Path: path, Value: value, Cause: "unknown parameter"}
	}
	return nil
}

// GetParams returns the current top-level hyperparameters keyed by their
// SetParams names.
func (c *Classifier) GetParams() map[string]any {
	return map[string]any{
		"lr":           c.cfg.LR,
		"momentum":     c.cfg.Momentum,
		"clip_norm":    c.cfg.ClipNorm,
		"max_epochs":   c.cfg.MaxEpochs,
		"batch_size":   c.cfg.BatchSize,
		"hidden_units": c.cfg.HiddenUnits,
		"valid_split":  c.cfg.ValidSplit,
		"stratified":   c.cfg.Stratified,
		"warm_start":   c.cfg.WarmStart,
		"shuffle":      c.cfg.Shuffle,
		"seed":         c.cfg.Seed,
		"optimizer":    c.cfg.Optimizer,
		"loss":         c.cfg.Loss,
	}
}
