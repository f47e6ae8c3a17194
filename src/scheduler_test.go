package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepDecaySchedule(t *testing.T) {
	s := StepDecay(StepDecayConfig{StepSize: 2, Gamma: 0.5})

	lr := 1.0
	var got []float64
	for epoch := 0; epoch < 5; epoch++ {
		lr = s.step(epoch, lr)
		got = append(got, lr)
	}
	assert.Equal(t, []float64{1.0, 1.0, 0.5, 0.5, 0.25}, got)
}

func TestExponentialDecaySchedule(t *testing.T) {
	s := ExponentialDecay(ExponentialDecayConfig{Gamma: 0.9})
	assert.Equal(t, 1.0, s.step(0, 1.0))
	assert.InDelta(t, 0.9, s.step(1, 1.0), 1e-12)
}

func TestCosineAnnealingEndpoints(t *testing.T) {
	s := CosineAnnealing(CosineAnnealingConfig{TMax: 10, EtaMin: 0.01, EtaMax: 1.0})
	assert.InDelta(t, 1.0, s.step(0, 0), 1e-12)
	assert.InDelta(t, 0.01, s.step(10, 0), 1e-12)
}
