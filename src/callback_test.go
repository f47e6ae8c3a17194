package coach

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackRegistryAdd(t *testing.T) {
	r := newCallbackRegistry()
	require.NoError(t, r.Add("", PrintLog(PrintLogConfig{})))
	require.NoError(t, r.Add("stop", EarlyStopping(EarlyStoppingConfig{Monitor: "valid_loss", Patience: 3})))

	assert.Equal(t, []string{"print_log", "stop"}, r.Names())

	cb, ok := r.Get("stop")
	require.True(t, ok)
	assert.Equal(t, "early_stopping", cb.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestCallbackRegistryRejectsDuplicates(t *testing.T) {
	r := newCallbackRegistry()
	require.NoError(t, r.Add("log", PrintLog(PrintLogConfig{})))
	err := r.Add("log", PrintLog(PrintLogConfig{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestCallbackRegistrySetParam(t *testing.T) {
	r := newCallbackRegistry()
	th := AccuracyThreshold(AccuracyThresholdConfig{MinAccuracy: 0.7})
	require.NoError(t, r.Add("accuracy_threshold", th))

	require.NoError(t, r.setParam("accuracy_threshold", "min_accuracy", 0.85))
	assert.Equal(t, 0.85, th.MinAccuracy)
}

func TestCallbackRegistrySetParamUnknownName(t *testing.T) {
	r := newCallbackRegistry()
	err := r.setParam("ghost", "min_accuracy", 0.5)
	require.Error(t, err)

	var perr *ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "callbacks__ghost__min_accuracy", perr.Path)
}

func TestCallbackRegistrySetParamNotSettable(t *testing.T) {
	r := newCallbackRegistry()
	require.NoError(t, r.Add("log", PrintLog(PrintLogConfig{})))

	err := r.setParam("log", "every", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept parameter overrides")
}

func TestPrintLogEveryN(t *testing.T) {
	var out bytes.Buffer
	cb := PrintLog(PrintLogConfig{Every: 2, Sink: &out})

	h := newHistory()
	for i := 0; i < 4; i++ {
		h.append(map[string]float64{"train_loss": 1.0 - float64(i)*0.1})
		cb.OnEpochEnd(h)
	}

	assert.Equal(t, "epoch 2: train_loss=0.9000\nepoch 4: train_loss=0.7000\n", out.String())
}

func TestEarlyStoppingStopsAfterPatience(t *testing.T) {
	cb := EarlyStopping(EarlyStoppingConfig{Monitor: "valid_loss", Patience: 2})

	h := newHistory()
	losses := []float64{1.0, 0.8, 0.9, 0.85, 0.81}
	var stopped int
	for i, l := range losses {
		h.append(map[string]float64{"valid_loss": l})
		if cb.OnEpochEnd(h) {
			stopped = i + 1
			break
		}
	}

	assert.Equal(t, 4, stopped)
	assert.Equal(t, 4, cb.StoppedEpoch())
}

func TestEarlyStoppingMaxMode(t *testing.T) {
	cb := EarlyStopping(EarlyStoppingConfig{Monitor: "valid_accuracy", Patience: 1, Mode: "max"})

	h := newHistory()
	h.append(map[string]float64{"valid_accuracy": 0.5})
	assert.False(t, cb.OnEpochEnd(h))
	h.append(map[string]float64{"valid_accuracy": 0.7})
	assert.False(t, cb.OnEpochEnd(h))
	h.append(map[string]float64{"valid_accuracy": 0.6})
	assert.True(t, cb.OnEpochEnd(h))
}

func TestEarlyStoppingReinitializeResets(t *testing.T) {
	cb := EarlyStopping(EarlyStoppingConfig{Monitor: "valid_loss", Patience: 1})

	h := newHistory()
	h.append(map[string]float64{"valid_loss": 1.0})
	cb.OnEpochEnd(h)
	h.append(map[string]float64{"valid_loss": 1.5})
	require.True(t, cb.OnEpochEnd(h))

	cb.OnInitialize()
	assert.Equal(t, 0, cb.StoppedEpoch())

	h.reset()
	h.append(map[string]float64{"valid_loss": 2.0})
	assert.False(t, cb.OnEpochEnd(h))
}

func TestToFloatAndToInt(t *testing.T) {
	f, ok := toFloat(int64(3))
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = toFloat("3")
	assert.False(t, ok)

	n, ok := toInt(4.0)
	require.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = toInt(4.5)
	assert.False(t, ok)
}
