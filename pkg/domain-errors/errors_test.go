package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("plain error is internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("wrapped domain error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeCapExceeded, "cap reached"))
		assert.Equal(t, CodeCapExceeded, CodeOf(err))
		assert.True(t, HasCode(err, CodeCapExceeded))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("wrap exposes cause", func(t *testing.T) {
		cause := errors.New("insufficient balance")
		err := Wrap(cause, CodeTransferFailed, "fee transfer failed")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "fee transfer failed: insufficient balance", err.Error())
	})
}
