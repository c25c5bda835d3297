package clmm

import "github.com/holiman/uint256"

// Tick bounds. Mirrors the canonical Uniswap v3 range; byte-identical to the
// reference so positions minted against this engine map to the same ticks
// as any other implementation of the same curve.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

// PipsDenominator represents 100% in hundredths of a basis point.
const PipsDenominator uint32 = 1_000_000

// MaxProtocolFeePips caps the protocol's cut of the swap fee.
const MaxProtocolFeePips uint16 = 1000

// MaxSwapPathHops and MinSwapPathHops bound a multi-hop swap path.
const (
	MaxSwapPathHops = 4
	MinSwapPathHops = 1
)

var (
	// MinSqrtRatio is the sqrt price (Q64.96) at MinTick.
	MinSqrtRatio = uint256.MustFromDecimal("4295128739")
	// MaxSqrtRatio is the sqrt price (Q64.96) at MaxTick.
	MaxSqrtRatio = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	// Q96 = 2^96, Q128 = 2^128. Shared fixed-point resolutions.
	Q96  = new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	Q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

	// u160Max bounds a sqrt price: the curve never produces a price that
	// does not fit in 160 bits.
	u160Max = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))
)

// FeeTickSpacings is the configured fee-to-tick-spacing table seeded at
// init. Fee is in pips (hundredths of a bip); spacing is the minimum
// distance between usable ticks for pools created at that fee tier.
var FeeTickSpacings = map[uint32]int32{
	100:   1,
	500:   10,
	1000:  20,
	3000:  60,
	10000: 200,
}
