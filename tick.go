package clmm

import "github.com/holiman/uint256"

// TickKey addresses a single tick's accumulator state within a pool.
type TickKey struct {
	PoolID PoolId `cbor:"0,keyasint"`
	Tick   int32  `cbor:"1,keyasint"`
}

// TickInfo holds the per-tick accounting needed to track liquidity
// entering and leaving at this boundary and to checkpoint the fee growth
// accrued on the far side of it.
type TickInfo struct {
	LiquidityGross    uint128     `cbor:"0,keyasint"`
	LiquidityNet      int128      `cbor:"1,keyasint"`
	FeeGrowthOutside0 uint256.Int `cbor:"2,keyasint"`
	FeeGrowthOutside1 uint256.Int `cbor:"3,keyasint"`
}

// TickSpacingToMaxLiquidityPerTick returns the largest liquidity_gross a
// single tick may hold at the given spacing: every usable tick in the
// full range evenly shares the 128-bit liquidity budget.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int32) uint128 {
	// truncating (toward zero) division, not Compress's floor, matching
	// the reference's (MIN_TICK / spacing) * spacing.
	minUsable := (MinTick / tickSpacing) * tickSpacing
	maxUsable := (MaxTick / tickSpacing) * tickSpacing
	numTicks := uint64((maxUsable-minUsable)/tickSpacing) + 1
	return uint128{v: new(uint256.Int).Div(maxUint128, uint256.NewInt(numTicks))}
}

// GetFeeGrowthInside returns the fee growth accrued strictly inside
// [tickLower, tickUpper] for each token, derived from the tick's
// recorded "outside" accumulators and the pool's global accumulators.
// Below/above are computed relative to the current tick: a boundary at or
// below tickCurrent reports its outside value directly as the growth
// below it; one above tickCurrent reports global-minus-outside instead,
// since "outside" always tracks the side away from the current price.
func GetFeeGrowthInside(lowerInfo, upperInfo TickInfo, tickLower, tickUpper, tickCurrent int32, feeGrowthGlobal0, feeGrowthGlobal1 *uint256.Int) (inside0, inside1 *uint256.Int) {
	var below0, below1 *uint256.Int
	if tickCurrent >= tickLower {
		below0 = new(uint256.Int).Set(&lowerInfo.FeeGrowthOutside0)
		below1 = new(uint256.Int).Set(&lowerInfo.FeeGrowthOutside1)
	} else {
		below0 = new(uint256.Int).Sub(feeGrowthGlobal0, &lowerInfo.FeeGrowthOutside0)
		below1 = new(uint256.Int).Sub(feeGrowthGlobal1, &lowerInfo.FeeGrowthOutside1)
	}

	var above0, above1 *uint256.Int
	if tickCurrent < tickUpper {
		above0 = new(uint256.Int).Set(&upperInfo.FeeGrowthOutside0)
		above1 = new(uint256.Int).Set(&upperInfo.FeeGrowthOutside1)
	} else {
		above0 = new(uint256.Int).Sub(feeGrowthGlobal0, &upperInfo.FeeGrowthOutside0)
		above1 = new(uint256.Int).Sub(feeGrowthGlobal1, &upperInfo.FeeGrowthOutside1)
	}

	inside0 = new(uint256.Int).Sub(new(uint256.Int).Sub(feeGrowthGlobal0, below0), above0)
	inside1 = new(uint256.Int).Sub(new(uint256.Int).Sub(feeGrowthGlobal1, below1), above1)
	return inside0, inside1
}

// UpdateTickResult reports the outcome of UpdateTick so the caller can
// decide whether to flip the tick's bitmap bit and what to persist.
type UpdateTickResult struct {
	Flipped           bool
	LiquidityGrossNow uint128
	Info              TickInfo
}

// UpdateTick applies a liquidity delta to one boundary of a position,
// returning the tick's updated accumulator state. upper distinguishes
// whether this tick is the upper bound of the position (liquidity_net
// flips sign relative to a lower bound). When the tick was not
// previously initialized (liquidity_gross was zero) and tickCurrent is on
// the far side of it from genesis, its fee growth outside accumulators
// are seeded from the global ones, per the convention that "outside"
// always starts measured from whichever side is away from the price at
// the moment the tick becomes active.
func UpdateTick(info TickInfo, tickCurrent, tick int32, liquidityDelta int128, feeGrowthGlobal0, feeGrowthGlobal1 *uint256.Int, upper bool, maxLiquidityPerTick uint128) (UpdateTickResult, error) {
	liquidityGrossBefore := info.LiquidityGross
	liquidityGrossAfter, err := liquidityGrossBefore.AddDelta(liquidityDelta)
	if err != nil {
		return UpdateTickResult{}, err
	}
	if liquidityGrossAfter.Cmp(maxLiquidityPerTick) > 0 {
		return UpdateTickResult{}, ErrTickLiquidityOverflow
	}

	flipped := liquidityGrossBefore.IsZero() != liquidityGrossAfter.IsZero()

	next := info
	if liquidityGrossBefore.IsZero() {
		if tick <= tickCurrent {
			next.FeeGrowthOutside0 = *feeGrowthGlobal0
			next.FeeGrowthOutside1 = *feeGrowthGlobal1
		}
	}
	next.LiquidityGross = liquidityGrossAfter

	netDelta := liquidityDelta
	if upper {
		netDelta = liquidityDelta.Neg()
	}
	newNet, err := next.LiquidityNet.Add(netDelta)
	if err != nil {
		return UpdateTickResult{}, err
	}
	next.LiquidityNet = newNet

	return UpdateTickResult{Flipped: flipped, LiquidityGrossNow: liquidityGrossAfter, Info: next}, nil
}

// CrossTick flips a tick's fee growth outside accumulators to reflect the
// price crossing it, and returns the liquidity_net to apply to the pool's
// active liquidity counter.
func CrossTick(info TickInfo, feeGrowthGlobal0, feeGrowthGlobal1 *uint256.Int) (updated TickInfo, liquidityNet int128) {
	updated = info
	updated.FeeGrowthOutside0 = *new(uint256.Int).Sub(feeGrowthGlobal0, &info.FeeGrowthOutside0)
	updated.FeeGrowthOutside1 = *new(uint256.Int).Sub(feeGrowthGlobal1, &info.FeeGrowthOutside1)
	return updated, info.LiquidityNet
}
