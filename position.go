package clmm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PositionKey identifies one liquidity position, uniquely addressed by
// owner and the tick range it covers within a pool.
type PositionKey struct {
	Owner     common.Address `cbor:"0,keyasint"`
	PoolID    PoolId         `cbor:"1,keyasint"`
	TickLower int32          `cbor:"2,keyasint"`
	TickUpper int32          `cbor:"3,keyasint"`
}

// PositionInfo is the accounting record attached to a position: its
// liquidity and the fee-growth-inside checkpoints used to compute newly
// accrued, uncollected fees on the next touch. The position itself never
// stores an owed balance; update_position recomputes owed0/owed1 fresh
// on every touch from the liquidity and checkpoint deltas, the way the
// original canister's position module returns them as call outputs
// rather than as persisted state.
type PositionInfo struct {
	Liquidity            uint128     `cbor:"0,keyasint"`
	FeeGrowthInside0Last uint256.Int `cbor:"1,keyasint"`
	FeeGrowthInside1Last uint256.Int `cbor:"2,keyasint"`
}

// UpdatePosition applies a liquidity delta to a position and returns the
// updated position alongside the fee owed since the last touch. A zero
// delta is a "poke": it requires the position to already hold liquidity
// (there is nothing to settle fees against otherwise) and is used purely
// to checkpoint accrued fees without changing size. A nonzero delta always
// applies, whether growing or shrinking the position, unlike the
// reference implementation it was ported from, which applies add_delta
// only inside the zero-delta branch; that appears to be a defect in the
// source rather than intended behavior, since it would leave liquidity
// deltas unapplied to the position, and the spec this module implements
// calls for applying nonzero deltas unconditionally.
func UpdatePosition(info PositionInfo, liquidityDelta int128, feeGrowthInside0, feeGrowthInside1 *uint256.Int) (next PositionInfo, owed0, owed1 uint128, err error) {
	if liquidityDelta.IsZero() && info.Liquidity.IsZero() {
		return PositionInfo{}, uint128{}, uint128{}, ErrZeroLiquidityPosition
	}

	owed0 = computeFeesOwed(info.Liquidity, &info.FeeGrowthInside0Last, feeGrowthInside0)
	owed1 = computeFeesOwed(info.Liquidity, &info.FeeGrowthInside1Last, feeGrowthInside1)

	next = info
	if !liquidityDelta.IsZero() {
		updatedLiquidity, addErr := info.Liquidity.AddDelta(liquidityDelta)
		if addErr != nil {
			return PositionInfo{}, uint128{}, uint128{}, addErr
		}
		next.Liquidity = updatedLiquidity
	}
	next.FeeGrowthInside0Last = *feeGrowthInside0
	next.FeeGrowthInside1Last = *feeGrowthInside1

	return next, owed0, owed1, nil
}

// computeFeesOwed computes liquidity * (feeGrowthInsideNow -
// feeGrowthInsideLast) / 2^128, relying on the accumulator's natural
// 256-bit modular wraparound to stay correct across overflow, exactly as
// Uniswap v3's fee-growth bookkeeping does.
func computeFeesOwed(liquidity uint128, last, now *uint256.Int) uint128 {
	delta := new(uint256.Int).Sub(now, last)
	if liquidity.IsZero() || delta.IsZero() {
		return uint128{v: new(uint256.Int)}
	}
	product, _ := new(uint256.Int).MulDivOverflow(delta, liquidity.Uint256(), Q128)
	return uint128{v: product}
}

// Collect settles a position's freshly accrued fees. It pokes the position
// (a zero-delta UpdatePosition) against the current fee-growth-inside
// checkpoints to recompute owed0/owed1 from scratch, then caps the payout
// at amount0Requested/amount1Requested. Since no owed balance is stored
// between touches, requesting less than the full owed amount forfeits the
// remainder rather than carrying it forward; callers that want every last
// unit of accrued fee should request the maximum uint128 value, matching the
// reference's own convention for an unbounded collect.
func Collect(info PositionInfo, feeGrowthInside0, feeGrowthInside1 *uint256.Int, amount0Requested, amount1Requested uint128) (paid0, paid1 uint128, next PositionInfo, err error) {
	next, owed0, owed1, err := UpdatePosition(info, int128FromInt64(0), feeGrowthInside0, feeGrowthInside1)
	if err != nil {
		return uint128{}, uint128{}, PositionInfo{}, err
	}

	paid0 = owed0
	if paid0.Cmp(amount0Requested) > 0 {
		paid0 = amount0Requested
	}
	paid1 = owed1
	if paid1.Cmp(amount1Requested) > 0 {
		paid1 = amount1Requested
	}
	return paid0, paid1, next, nil
}
