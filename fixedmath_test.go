package clmm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv_Basic(t *testing.T) {
	a := uint256.NewInt(100)
	b := uint256.NewInt(200)
	d := uint256.NewInt(4)
	got, err := MulDiv(a, b, d)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(5000).String(), got.String())
}

func TestMulDiv_DivisionByZero(t *testing.T) {
	_, err := MulDiv(uint256.NewInt(1), uint256.NewInt(1), new(uint256.Int))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMulDivCeil_RoundsUp(t *testing.T) {
	a := uint256.NewInt(7)
	b := uint256.NewInt(1)
	d := uint256.NewInt(2)
	got, err := MulDivCeil(a, b, d)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(4).String(), got.String())
}

func TestDivCeil(t *testing.T) {
	assert.Equal(t, uint256.NewInt(4).String(), DivCeil(uint256.NewInt(7), uint256.NewInt(2)).String())
	assert.Equal(t, uint256.NewInt(3).String(), DivCeil(uint256.NewInt(6), uint256.NewInt(2)).String())
}

func TestAbsDiff(t *testing.T) {
	assert.Equal(t, uint256.NewInt(5).String(), AbsDiff(uint256.NewInt(10), uint256.NewInt(15)).String())
	assert.Equal(t, uint256.NewInt(5).String(), AbsDiff(uint256.NewInt(15), uint256.NewInt(10)).String())
}

func TestMSBAndLSB(t *testing.T) {
	v := uint256.NewInt(0b1010_0000)
	assert.Equal(t, 7, MSB(v))
	assert.Equal(t, 5, LSB(v))
}
