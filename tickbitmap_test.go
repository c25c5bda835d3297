package clmm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress(t *testing.T) {
	assert.Equal(t, int32(2), Compress(25, 10))
	assert.Equal(t, int32(-3), Compress(-25, 10))
	assert.Equal(t, int32(0), Compress(0, 10))
	assert.Equal(t, int32(-1), Compress(-1, 10))
}

func TestFlipTickTogglesBit(t *testing.T) {
	word := new(uint256.Int)
	flipped, err := FlipTick(word, 0, 10)
	require.NoError(t, err)
	assert.False(t, flipped.IsZero())

	back, err := FlipTick(flipped, 0, 10)
	require.NoError(t, err)
	assert.True(t, back.IsZero())
}

func TestFlipTickRejectsMisalignedTick(t *testing.T) {
	_, err := FlipTick(new(uint256.Int), 5, 10)
	assert.ErrorIs(t, err, ErrTickNotAlignedWithTickSpacing)
}

func TestNextInitializedTickWithinOneWord_LteNoneFound(t *testing.T) {
	word := new(uint256.Int)
	next, initialized := NextInitializedTickWithinOneWord(word, 50, 10, true)
	assert.False(t, initialized)
	assert.Equal(t, int32(0), next)
}

func TestNextInitializedTickWithinOneWord_FindsFlippedTick(t *testing.T) {
	word := new(uint256.Int)
	word, err := FlipTick(word, 20, 10)
	require.NoError(t, err)

	next, initialized := NextInitializedTickWithinOneWord(word, 50, 10, true)
	assert.True(t, initialized)
	assert.Equal(t, int32(20), next)
}
