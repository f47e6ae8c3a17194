package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorfPrefix(t *testing.T) {
	err := errorf("bad value %d", 7)
	assert.Equal(t, "coach: bad value 7", err.Error())
}

func TestParamErrorMessage(t *testing.T) {
	err := &ParamError{Path: "lr", Value: "fast", Expected: "number", Cause: "wrong type"}
	msg := err.Error()
	assert.Contains(t, msg, "lr")
	assert.Contains(t, msg, "wrong type")
}

func TestSplitParamPath(t *testing.T) {
	assert.Equal(t, []string{"lr"}, splitParamPath("lr"))
	assert.Equal(t, []string{"callbacks", "accuracy_threshold", "min_accuracy"},
		splitParamPath("callbacks__accuracy_threshold__min_accuracy"))
}
