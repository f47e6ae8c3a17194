package coach

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// Callback hooks into the Classifier lifecycle. Hooks run in-line on the
// training goroutine, in strict order: OnInitialize once per
// (re)initialization, OnEpochBegin/OnEpochEnd once per epoch,
// OnTrainBegin/OnTrainEnd once per fit call. The History argument is
// read-only from the callback's point of view.
type Callback interface {
	OnInitialize()
	OnTrainBegin(h *History)
	OnEpochBegin(h *History)
	OnEpochEnd(h *History) bool // return true to stop training
	OnTrainEnd(h *History)
	Name() string
}

// ParamSetter is implemented by callbacks whose parameters can be
// overridden after construction through SetParams paths of the form
// callbacks__<name>__<param>.
type ParamSetter interface {
	SetParam(param string, value any) error
}

// CallbackRegistry maps names to callback instances, preserving
// registration order for dispatch.
type CallbackRegistry struct {
	order  []string
	byName map[string]Callback
}

func newCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{byName: make(map[string]Callback)}
}

// Add registers a callback under a unique name.
func (r *CallbackRegistry) Add(name string, cb Callback) error {
	if name == "" {
		name = cb.Name()
	}
	if _, exists := r.byName[name]; exists {
		return errorf("callback %q already registered", name)
	}
	r.order = append(r.order, name)
	r.byName[name] = cb
	return nil
}

// Get looks up a callback by its registered name.
func (r *CallbackRegistry) Get(name string) (Callback, bool) {
	cb, ok := r.byName[name]
	return cb, ok
}

// Names returns registered names in registration order.
func (r *CallbackRegistry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// setParam routes a callbacks__<name>__<param> override to the named
// instance's SetParam.
func (r *CallbackRegistry) setParam(name, param string, value any) error {
	cb, ok := r.byName[name]
	if !ok {
		return &ParamError{
			Path:  "callbacks__" + name + "__" + param,
			Value: value,
			Cause: fmt.Sprintf("no callback registered under %q", name),
		}
	}
	setter, ok := cb.(ParamSetter)
	if !ok {
		return &ParamError{
			Path:  "callbacks__" + name + "__" + param,
			Value: value,
			Cause: fmt.Sprintf("callback %q does not accept parameter overrides", name),
		}
	}
	return setter.SetParam(param, value)
}

func (r *CallbackRegistry) initialize() {
	for _, name := range r.order {
		r.byName[name].OnInitialize()
	}
}

func (r *CallbackRegistry) trainBegin(h *History) {
	for _, name := range r.order {
		r.byName[name].OnTrainBegin(h)
	}
}

func (r *CallbackRegistry) epochBegin(h *History) {
	for _, name := range r.order {
		r.byName[name].OnEpochBegin(h)
	}
}

func (r *CallbackRegistry) epochEnd(h *History) bool {
	stop := false
	for _, name := range r.order {
		if r.byName[name].OnEpochEnd(h) {
			stop = true
		}
	}
	return stop
}

func (r *CallbackRegistry) trainEnd(h *History) {
	for _, name := range r.order {
		r.byName[name].OnTrainEnd(h)
	}
}

// PrintLogCallback prints one line per epoch with the recorded metrics.
type PrintLogCallback struct {
	Every int
	Sink  io.Writer
}

type PrintLogConfig struct {
	Every int       // print every N epochs, 0 means every epoch
	Sink  io.Writer // defaults to os.Stdout
}

func PrintLog(config PrintLogConfig) *PrintLogCallback {
	every := config.Every
	if every <= 0 {
		every = 1
	}
	sink := config.Sink
	if sink == nil {
		sink = os.Stdout
	}
	return &PrintLogCallback{Every: every, Sink: sink}
}

func (p *PrintLogCallback) OnInitialize()           {}
func (p *PrintLogCallback) OnTrainBegin(h *History) {}
func (p *PrintLogCallback) OnEpochBegin(h *History) {}

func (p *PrintLogCallback) OnEpochEnd(h *History) bool {
	rec, ok := h.Latest()
	if !ok || rec.Epoch%p.Every != 0 {
		return false
	}
	fmt.Fprintf(p.Sink, "epoch %d:", rec.Epoch)
	keys := make([]string, 0, len(rec.Metrics))
	for k := range rec.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.Sink, " %s=%.4f", k, rec.Metrics[k])
	}
	fmt.Fprintln(p.Sink)
	return false
}

func (p *PrintLogCallback) OnTrainEnd(h *History) {}
func (p *PrintLogCallback) Name() string { return "print_log" }

// EarlyStoppingCallback stops training when a monitored metric stops
// improving.
type EarlyStoppingCallback struct {
	Monitor  string
	MinDelta float64
	Patience int
	Mode     string // "min" or "max"

	bestValue    float64
	wait         int
	stoppedEpoch int
}

type EarlyStoppingConfig struct {
	Monitor  string
	MinDelta float64
	Patience int
	Mode     string
}

func EarlyStopping(config EarlyStoppingConfig) *EarlyStoppingCallback {
	e := &EarlyStoppingCallback{
		Monitor:  config.Monitor,
		MinDelta: config.MinDelta,
		Patience: config.Patience,
		Mode:     config.Mode,
	}
	e.OnInitialize()
	return e
}

func (e *EarlyStoppingCallback) OnInitialize() {
	e.wait = 0
	e.stoppedEpoch = 0
	if e.Mode == "max" {
		e.bestValue = math.Inf(-1)
	} else {
		e.bestValue = math.Inf(1)
	}
}

func (e *EarlyStoppingCallback) OnTrainBegin(h *History) {}
func (e *EarlyStoppingCallback) OnEpochBegin(h *History) {}

func (e *EarlyStoppingCallback) OnEpochEnd(h *History) bool {
	rec, ok := h.Latest()
	if !ok {
		return false
	}
	current, ok := rec.Metrics[e.Monitor]
	if !ok {
		return false
	}

	improved := false
	if e.Mode == "max" {
		improved = current > e.bestValue+e.MinDelta
	} else {
		improved = current < e.bestValue-e.MinDelta
	}

	if improved {
		e.bestValue = current
		e.wait = 0
	} else {
		e.wait++
		if e.wait >= e.Patience {
			e.stoppedEpoch = rec.Epoch
			return true
		}
	}
	return false
}

func (e *EarlyStoppingCallback) OnTrainEnd(h *History) {}
func (e *EarlyStoppingCallback) Name() string { return "early_stopping" }

// StoppedEpoch reports the epoch that triggered the stop, 0 if none.
func (e *EarlyStoppingCallback) StoppedEpoch() int { return e.stoppedEpoch }

func (e *EarlyStoppingCallback) SetParam(param string, value any) error {
	switch param {
	case "monitor":
		s, ok := value.(string)
		if !ok {
			return &ParamError{Path: param, Value: value, Expected: "string", Cause: "wrong type"}
		}
		e.Monitor = s
	case "min_delta":
		f, ok := toFloat(value)
		if !ok {
			return &ParamError{Path: param, Value: value, Expected: "number", Cause: "wrong type"}
		}
		e.MinDelta = f
	case "patience":
		n, ok := toInt(value)
		if !ok {
			return &ParamError{Path: param, Value: value, Expected: "integer", Cause: "wrong type"}
		}
		e.Patience = n
	default:
		return &ParamError{Path: param, Value: value, Cause: "unknown early_stopping parameter"}
	}
	return nil
}

// toFloat converts the numeric types a YAML grid or literal map may carry.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}
