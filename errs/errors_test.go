package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMalformedError(t *testing.T) {
	t.Run("Text input with expectation", func(t *testing.T) {
		err := &MalformedError{Line: 4, Text: "xmax 2", Expected: "xmax = ", Reason: "missing prefix"}

		require.ErrorIs(t, err, ErrMalformedInput)
		require.Contains(t, err.Error(), "line 4")
		require.Contains(t, err.Error(), `"xmax = "`)
	})

	t.Run("Binary input", func(t *testing.T) {
		err := &MalformedError{Offset: 12, Reason: "truncated"}

		require.ErrorIs(t, err, ErrMalformedInput)
		require.Equal(t, "malformed input at offset 12: truncated", err.Error())
	})

	t.Run("Survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("decode tier 2: %w", &MalformedError{Line: 9, Reason: "bad number", Text: "x"})

		var me *MalformedError
		require.ErrorAs(t, wrapped, &me)
		require.Equal(t, 9, me.Line)
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Tier: "words", Index: 1, Reason: "overlapping intervals"}

	require.ErrorIs(t, err, ErrValidation)
	require.False(t, errors.Is(err, ErrMalformedInput))
	require.Contains(t, err.Error(), `tier "words" element 1`)

	docErr := &ValidationError{Index: -1, Reason: "xmin must be less than xmax"}
	require.Equal(t, "validation failure: xmin must be less than xmax", docErr.Error())
}

func TestIO(t *testing.T) {
	require.NoError(t, IO(nil))

	err := IO(io.ErrShortWrite)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, io.ErrShortWrite)
}
