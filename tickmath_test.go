package clmm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSqrtRatioAtTick_Zero(t *testing.T) {
	got, err := GetSqrtRatioAtTick(0)
	require.NoError(t, err)
	want := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	assert.Equal(t, want.String(), got.String())
}

func TestGetSqrtRatioAtTick_One(t *testing.T) {
	got, err := GetSqrtRatioAtTick(1)
	require.NoError(t, err)
	want := uint256.MustFromDecimal("79232123823359799118286999568")
	assert.Equal(t, want.String(), got.String())
}

func TestGetSqrtRatioAtTick_NearMaxTick(t *testing.T) {
	got, err := GetSqrtRatioAtTick(MaxTick - 1)
	require.NoError(t, err)
	want := uint256.MustFromDecimal("1461373636630004318706518188784493106690254656249")
	assert.Equal(t, want.String(), got.String())
}

func TestGetSqrtRatioAtTick_NearMinTick(t *testing.T) {
	got, err := GetSqrtRatioAtTick(MinTick + 1)
	require.NoError(t, err)
	want := uint256.MustFromDecimal("4295343490")
	assert.Equal(t, want.String(), got.String())
}

func TestGetSqrtRatioAtTick_OutOfBounds(t *testing.T) {
	_, err := GetSqrtRatioAtTick(MaxTick + 1)
	assert.ErrorIs(t, err, ErrInvalidTick)

	_, err = GetSqrtRatioAtTick(MinTick - 1)
	assert.ErrorIs(t, err, ErrInvalidTick)
}

func TestGetTickAtSqrtRatio_RoundTripsAtZero(t *testing.T) {
	sqrtAtZero, err := GetSqrtRatioAtTick(0)
	require.NoError(t, err)
	tick, err := GetTickAtSqrtRatio(sqrtAtZero)
	require.NoError(t, err)
	assert.Equal(t, int32(0), tick)
}
