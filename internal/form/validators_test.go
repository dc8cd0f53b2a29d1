// internal/form/validators_test.go
package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonEmpty(t *testing.T) {
	v := NonEmpty(2, "too short")

	got, err := v("Dune")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got)

	// Length is counted in runes, not bytes.
	got, err = v("کت")
	require.NoError(t, err)
	assert.Equal(t, "کت", got)

	for _, raw := range []string{"", "a"} {
		_, err := v(raw)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), "input %q", raw)
		assert.Equal(t, "too short", ve.Message)
	}
}

func TestID(t *testing.T) {
	v := ID("must be a number")

	got, err := v("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	for _, raw := range []string{"", "abc", "-3", "0", "1.5"} {
		_, err := v(raw)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "input %q", raw)
	}
}

func TestIntOrDefault(t *testing.T) {
	v := IntOrDefault(14, 1)

	tests := []struct {
		raw  string
		want int
	}{
		{"7", 7},
		{"1", 1},
		{"", 14},
		{"abc", 14},
		{"0", 14},
		{"-2", 14},
	}
	for _, tt := range tests {
		got, err := v(tt.raw)
		require.NoError(t, err, "input %q", tt.raw)
		assert.Equal(t, tt.want, got, "input %q", tt.raw)
	}
}

func TestOptionalText(t *testing.T) {
	v := OptionalText()

	got, err := v("-")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = v("0912-000000")
	require.NoError(t, err)
	assert.Equal(t, "0912-000000", got)
}

func TestOptionalYear(t *testing.T) {
	v := OptionalYear()

	got, err := v("1965")
	require.NoError(t, err)
	assert.Equal(t, 1965, got)

	got, err = v("unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}
