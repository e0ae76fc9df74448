package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNormalizeDuration(t *testing.T) {
	got, err := NormalizeDuration(ModeOpen, intPtr(30))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = NormalizeDuration(ModeHard, intPtr(75))
	require.NoError(t, err)
	assert.Equal(t, 75, *got)

	_, err = NormalizeDuration(ModeHard, intPtr(20))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NormalizeDuration(ModeSoft, nil)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	got, err = NormalizeDuration(ModeCustom, intPtr(21))
	require.NoError(t, err)
	assert.Equal(t, 21, *got)

	_, err = NormalizeDuration(ModeCustom, intPtr(0))
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Hard ")
	require.NoError(t, err)
	assert.Equal(t, ModeHard, m)

	_, err = ParseMode("extreme")
	assert.Error(t, err)
}
