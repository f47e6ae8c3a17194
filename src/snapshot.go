package coach

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// ModelState is the serialized form of the network parameters.
type ModelState struct {
	Weights [][]float64 `json:"weights"`
	Rows    []int       `json:"rows"`
	Cols    []int       `json:"cols"`
}

// SaveWeights writes the current parameters to a JSON file.
func (c *Classifier) SaveWeights(path string) error {
	if !c.initialized {
		return errorf("classifier must be initialized before saving")
	}

	state := ModelState{}
	for _, layer := range c.layers {
		for _, p := range layer.parameters() {
			data := make([]float64, len(p.data))
			copy(data, p.data)
			state.Weights = append(state.Weights, data)
			state.Rows = append(state.Rows, p.rows)
			state.Cols = append(state.Cols, p.cols)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(state)
}

// LoadWeights restores parameters saved by SaveWeights into an
// initialized classifier with a matching architecture.
func (c *Classifier) LoadWeights(path string) error {
	if !c.initialized {
		return errorf("classifier must be initialized before loading")
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var state ModelState
	if err := json.NewDecoder(file).Decode(&state); err != nil {
		return err
	}

	idx := 0
	for _, layer := range c.layers {
		for _, p := range layer.parameters() {
			if idx >= len(state.Weights) {
				return errorf("weight count mismatch")
			}
			if state.Rows[idx] != p.rows || state.Cols[idx] != p.cols {
				return errorf("weight %d shape mismatch: saved %dx%d, model %dx%d",
					idx, state.Rows[idx], state.Cols[idx], p.rows, p.cols)
			}
			copy(p.data, state.Weights[idx])
			idx++
		}
	}
	if idx != len(state.Weights) {
		return errorf("weight count mismatch")
	}
	return nil
}

// Summary describes the network architecture
func (c *Classifier) Summary() string {
	var b strings.Builder
	b.WriteString("Coach Classifier Summary\n")
	b.WriteString("========================\n")

	totalParams := 0
	for i, layer := range c.layers {
		layerParams := 0
		for _, p := range layer.parameters() {
			layerParams += len(p.data)
		}
		totalParams += layerParams
		fmt.Fprintf(&b, "Layer %d: %s - %d params\n", i+1, layer.name(), layerParams)
	}
	b.WriteString("========================\n")
	fmt.Fprintf(&b, "Total parameters: %d\n", totalParams)
	return b.String()
}

// CheckpointCallback snapshots the classifier's weights whenever the
// monitored metric improves. Holds a reference to its owner, so register
// it after construction with the classifier it snapshots.
type CheckpointCallback struct {
	Monitor string
	Mode    string // "min" or "max"
	Path    string

	owner     *Classifier
	bestValue float64
	saves     int
}

type CheckpointConfig struct {
	Monitor string // defaults to "valid_loss"
	Mode    string // defaults to "min"
	Path    string
}

func Checkpoint(owner *Classifier, config CheckpointConfig) *CheckpointCallback {
	monitor := config.Monitor
	if monitor == "" {
		monitor = "valid_loss"
	}
	mode := config.Mode
	if mode == "" {
		mode = "min"
	}
	cp := &CheckpointCallback{
		Monitor: monitor,
		Mode:    mode,
		Path:    config.Path,
		owner:   owner,
	}
	cp.OnInitialize()
	return cp
}

func (cp *CheckpointCallback) OnInitialize() {
	cp.saves = 0
	if cp.Mode == "max" {
		cp.bestValue = math.Inf(-1)
	} else {
		cp.bestValue = math.Inf(1)
	}
}

func (cp *CheckpointCallback) OnTrainBegin(h *History) {}
func (cp *CheckpointCallback) OnEpochBegin(h *History) {}

func (cp *CheckpointCallback) OnEpochEnd(h *History) bool {
	rec, ok := h.Latest()
	if !ok {
		return false
	}
	current, ok := rec.Metrics[cp.Monitor]
	if !ok {
		return false
	}

	improved := false
	if cp.Mode == "max" {
		improved = current > cp.bestValue
	} else {
		improved = current < cp.bestValue
	}
	if !improved {
		return false
	}

	cp.bestValue = current
	if err := cp.owner.SaveWeights(cp.Path); err == nil {
		cp.saves++
	}
	return false
}

func (cp *CheckpointCallback) OnTrainEnd(h *History) {}
func (cp *CheckpointCallback) Name() string { return "checkpoint" }

// Saves reports how many snapshots were written this session.
func (cp *CheckpointCallback) Saves() int { return cp.saves }
