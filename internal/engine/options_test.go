package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/eclat/internal/matrix"
	"github.com/roach88/eclat/internal/tidset"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()

	assert.Equal(t, 0.01, o.MinSupport)
	assert.True(t, o.UseMatrix)
	assert.Equal(t, matrix.KindAuto, o.MatrixKind)
	assert.Equal(t, tidset.KindAuto, o.TidsetKind)
	assert.Equal(t, 1, o.Workers)
	assert.NoError(t, o.Validate())
}

func TestOptions_ValidateAcceptsBounds(t *testing.T) {
	for _, ratio := range []float64{1e-9, 0.5, 1} {
		o := DefaultOptions()
		o.MinSupport = ratio
		assert.NoError(t, o.Validate(), ratio)
	}

	o := DefaultOptions()
	o.MatrixKind = ""
	o.TidsetKind = ""
	o.Workers = 0
	assert.NoError(t, o.Validate(), "empty kinds mean auto, zero workers means sequential")
}

func TestConfigError_Error(t *testing.T) {
	err := newConfigError(ErrCodeInvalidMinSupport, "min_support", "got %v", 0)
	assert.Equal(t, "INVALID_MIN_SUPPORT: got 0 (min_support)", err.Error())

	err = &ConfigError{Code: ErrCodeMissingInput, Message: "no sink"}
	assert.Equal(t, "MISSING_INPUT: no sink", err.Error())

	wrapped := fmt.Errorf("mine: %w", err)
	assert.True(t, IsConfigError(wrapped))
	assert.False(t, IsInvalidMinSupport(wrapped))
	assert.False(t, IsConfigError(fmt.Errorf("plain")))
}
