package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGDStepMovesAgainstGradient(t *testing.T) {
	param := fromRows([][]float64{{1.0}})
	grad := fromRows([][]float64{{0.5}})

	opt := SGD(SGDConfig{LR: 0.1})
	opt.step([]*matrix{param}, []*matrix{grad})

	assert.InDelta(t, 0.95, param.at(0, 0), 1e-12)
}

func TestAdamStepMovesAgainstGradient(t *testing.T) {
	param := fromRows([][]float64{{1.0}})
	grad := fromRows([][]float64{{0.5}})

	opt := Adam(AdamConfig{LR: 0.1, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8})
	opt.step([]*matrix{param}, []*matrix{grad})

	assert.Less(t, param.at(0, 0), 1.0)
}

func TestClipGradients(t *testing.T) {
	g := fromRows([][]float64{{3, 4}}) // norm 5

	clipGradients([]*matrix{g}, 1.0)
	assert.InDelta(t, 0.6, g.at(0, 0), 1e-12)
	assert.InDelta(t, 0.8, g.at(0, 1), 1e-12)

	// already inside the bound: untouched
	clipGradients([]*matrix{g}, 10.0)
	assert.InDelta(t, 0.6, g.at(0, 0), 1e-12)
}

func TestOptimizerSetLR(t *testing.T) {
	opt := SGD(SGDConfig{LR: 0.1})
	opt.setLR(0.01)
	assert.Equal(t, 0.01, opt.lr())
}
