package clmm

import "github.com/holiman/uint256"

// GetAmount0Delta returns the amount of token0 required to move liquidity
// between two sqrt prices, rounding up when roundUp is true (the direction
// needed when a caller will be paying this amount in). Grounded in the
// reference's get_amount_0_delta: amount0 = L * (1/sqrtLower - 1/sqrtUpper)
// rearranged to avoid a fractional intermediate.
func GetAmount0Delta(sqrtA, sqrtB *uint256.Int, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	lo, hi := sqrtA, sqrtB
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	if lo.IsZero() {
		return nil, ErrInvalidPriceOrLiquidity
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(hi, lo)

	if roundUp {
		inner, err := MulDivCeil(numerator1, numerator2, hi)
		if err != nil {
			return nil, err
		}
		return DivCeil(inner, lo), nil
	}
	inner, err := MulDiv(numerator1, numerator2, hi)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(inner, lo), nil
}

// GetAmount1Delta returns the amount of token1 required to move liquidity
// between two sqrt prices. amount1 = L * (sqrtUpper - sqrtLower) / 2^96.
func GetAmount1Delta(sqrtA, sqrtB *uint256.Int, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	lo, hi := sqrtA, sqrtB
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	diff := new(uint256.Int).Sub(hi, lo)
	if roundUp {
		return MulDivCeil(liquidity, diff, Q96)
	}
	return MulDiv(liquidity, diff, Q96)
}

// GetAmount0DeltaSigned returns the signed amount0 delta for a liquidity
// change of liquidityDelta between the two prices: positive when
// liquidity is being added (caller owes token0, rounded up), negative when
// removed (caller is owed token0, rounded down).
func GetAmount0DeltaSigned(sqrtA, sqrtB *uint256.Int, liquidityDelta int128) (*int256, error) {
	if liquidityDelta.Sign() >= 0 {
		amt, err := GetAmount0Delta(sqrtA, sqrtB, liquidityDelta.Abs().Uint256(), true)
		if err != nil {
			return nil, err
		}
		return newInt256FromUint256(amt, false), nil
	}
	amt, err := GetAmount0Delta(sqrtA, sqrtB, liquidityDelta.Abs().Uint256(), false)
	if err != nil {
		return nil, err
	}
	return newInt256FromUint256(amt, true), nil
}

// GetAmount1DeltaSigned mirrors GetAmount0DeltaSigned for token1.
func GetAmount1DeltaSigned(sqrtA, sqrtB *uint256.Int, liquidityDelta int128) (*int256, error) {
	if liquidityDelta.Sign() >= 0 {
		amt, err := GetAmount1Delta(sqrtA, sqrtB, liquidityDelta.Abs().Uint256(), true)
		if err != nil {
			return nil, err
		}
		return newInt256FromUint256(amt, false), nil
	}
	amt, err := GetAmount1Delta(sqrtA, sqrtB, liquidityDelta.Abs().Uint256(), false)
	if err != nil {
		return nil, err
	}
	return newInt256FromUint256(amt, true), nil
}
