package coach

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// AccuracyThresholdCallback watches validation accuracy and remembers the
// first epoch that reaches a configured threshold. The latch survives
// warm-start continuations: a second fit call without re-initialization
// keeps the previously recorded epoch, so a long incremental session
// reports the first crossing across all of its fit calls. On run
// completion it writes a single notification to its sink.
type AccuracyThresholdCallback struct {
	MinAccuracy float64
	Monitor     string
	Sink        io.Writer

	criticalEpoch int // 0 = threshold not reached yet
}

type AccuracyThresholdConfig struct {
	MinAccuracy float64
	Monitor     string    // metric to watch, defaults to "valid_accuracy"
	Sink        io.Writer // defaults to os.Stdout
}

func AccuracyThreshold(config AccuracyThresholdConfig) *AccuracyThresholdCallback {
	monitor := config.Monitor
	if monitor == "" {
		monitor = "valid_accuracy"
	}
	sink := config.Sink
	if sink == nil {
		sink = os.Stdout
	}
	return &AccuracyThresholdCallback{
		MinAccuracy: config.MinAccuracy,
		Monitor:     monitor,
		Sink:        sink,
	}
}

// OnInitialize clears the latch. The owning Classifier calls this on
// every re-initialization, not on warm-start continuations.
func (a *AccuracyThresholdCallback) OnInitialize() {
	a.criticalEpoch = 0
}

func (a *AccuracyThresholdCallback) OnTrainBegin(h *History) {}
func (a *AccuracyThresholdCallback) OnEpochBegin(h *History) {}

// OnEpochEnd latches the current epoch count the first time the monitored
// metric reaches MinAccuracy. Comparison is inclusive. Once latched,
// later epochs are ignored.
func (a *AccuracyThresholdCallback) OnEpochEnd(h *History) bool {
	if a.criticalEpoch != 0 {
		return false
	}
	rec, ok := h.Latest()
	if !ok {
		return false
	}
	if v, ok := rec.Metrics[a.Monitor]; ok && v >= a.MinAccuracy {
		a.criticalEpoch = h.Len()
	}
	return false
}

// OnTrainEnd emits exactly one notification per run completion.
func (a *AccuracyThresholdCallback) OnTrainEnd(h *History) {
	threshold := strconv.FormatFloat(a.MinAccuracy, 'g', -1, 64)
	if a.criticalEpoch == 0 {
		fmt.Fprintf(a.Sink, "Accuracy never reached %s\n", threshold)
		return
	}
	fmt.Fprintf(a.Sink, "Accuracy reached %s at epoch %d\n", threshold, a.criticalEpoch)
}

func (a *AccuracyThresholdCallback) Name() string { return "accuracy_threshold" }

// CriticalEpoch reports the latched epoch, ok=false while unset.
func (a *AccuracyThresholdCallback) CriticalEpoch() (int, bool) {
	return a.criticalEpoch, a.criticalEpoch != 0
}

func (a *AccuracyThresholdCallback) SetParam(param string, value any) error {
	switch param {
	case "min_accuracy":
		f, ok := toFloat(value)
		if !ok {
			return &ParamError{Path: param, Value: value, Expected: "number in [0,1]", Cause: "wrong type"}
		}
		if f < 0 || f > 1 {
			return &ParamError{Path: param, Value: value, Expected: "number in [0,1]", Cause: "out of range"}
		}
		a.MinAccuracy = f
	case "monitor":
		s, ok := value.(string)
		if !ok {
			return &ParamError{Path: param, Value: value, Expected: "string", Cause: "wrong type"}
		}
		a.Monitor = s
	default:
		return &ParamError{Path: param, Value: value, Cause: "unknown accuracy_threshold parameter"}
	}
	return nil
}
