package clmm

import "github.com/holiman/uint256"

// GetLiquidityForAmount0 returns the liquidity that amount0 of token0 buys
// between two sqrt prices.
func GetLiquidityForAmount0(sqrtA, sqrtB *uint256.Int, amount0 *uint256.Int) (*uint256.Int, error) {
	lo, hi := sqrtA, sqrtB
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	intermediate, err := MulDiv(lo, hi, Q96)
	if err != nil {
		return nil, err
	}
	diff := new(uint256.Int).Sub(hi, lo)
	return MulDiv(amount0, intermediate, diff)
}

// GetLiquidityForAmount1 returns the liquidity that amount1 of token1 buys
// between two sqrt prices.
func GetLiquidityForAmount1(sqrtA, sqrtB *uint256.Int, amount1 *uint256.Int) (*uint256.Int, error) {
	lo, hi := sqrtA, sqrtB
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}
	diff := new(uint256.Int).Sub(hi, lo)
	return MulDiv(amount1, Q96, diff)
}

// GetLiquidityForAmounts returns the maximum liquidity that can be minted
// from the given token0/token1 amounts at the current price for a range
// [sqrtLower, sqrtUpper]. When the current price sits inside the range,
// both amounts constrain the result and the tighter of the two wins; when
// it sits outside, only the token that would actually be deposited at
// that price constrains it.
func GetLiquidityForAmounts(sqrtCurrent, sqrtLower, sqrtUpper *uint256.Int, amount0, amount1 *uint256.Int) (*uint256.Int, error) {
	lo, hi := sqrtLower, sqrtUpper
	if lo.Cmp(hi) > 0 {
		lo, hi = hi, lo
	}

	switch {
	case sqrtCurrent.Cmp(lo) <= 0:
		return GetLiquidityForAmount0(lo, hi, amount0)
	case sqrtCurrent.Cmp(hi) < 0:
		liq0, err := GetLiquidityForAmount0(sqrtCurrent, hi, amount0)
		if err != nil {
			return nil, err
		}
		liq1, err := GetLiquidityForAmount1(lo, sqrtCurrent, amount1)
		if err != nil {
			return nil, err
		}
		if liq0.Cmp(liq1) < 0 {
			return liq0, nil
		}
		return liq1, nil
	default:
		return GetLiquidityForAmount1(lo, hi, amount1)
	}
}
