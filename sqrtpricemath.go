package clmm

import "github.com/holiman/uint256"

// GetNextSqrtPriceFromAmount0RoundingUp computes the sqrt price after
// adding (add=true) or removing (add=false) amount0 of token0 liquidity,
// rounding up so that the pool never gives away more token1 than the true
// curve implies. Mirrors the reference's overflow-avoidance fallback: the
// direct formula liquidity*sqrtPX96 / (liquidity + amount*sqrtPX96/2^96)
// is used when it doesn't overflow; otherwise the equivalent
// liquidity / (liquidity/sqrtPX96 + amount) form is used.
func GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96 *uint256.Int, liquidity *uint256.Int, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return new(uint256.Int).Set(sqrtPX96), nil
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)

	if add {
		product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
		if !overflow {
			denominator, dOverflow := new(uint256.Int).AddOverflow(numerator1, product)
			if !dOverflow && denominator.Cmp(numerator1) >= 0 {
				result, err := MulDivCeil(numerator1, sqrtPX96, denominator)
				if err == nil {
					return result, nil
				}
			}
		}
		denom := new(uint256.Int).Add(new(uint256.Int).Div(numerator1, sqrtPX96), amount)
		return DivCeil(numerator1, denom), nil
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
	if overflow || numerator1.Cmp(product) <= 0 {
		return nil, ErrNotEnoughLiquidity
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	return MulDivCeil(numerator1, sqrtPX96, denominator)
}

// GetNextSqrtPriceFromAmount1RoundingDown computes the sqrt price after
// adding or removing amount1 of token1 liquidity, rounding down so the
// pool never gives away more token0 than the true curve implies.
func GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96 *uint256.Int, liquidity *uint256.Int, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		quotient, err := quotientAmount1(amount, liquidity)
		if err != nil {
			return nil, err
		}
		result, overflow := new(uint256.Int).AddOverflow(sqrtPX96, quotient)
		if overflow {
			return nil, ErrPriceOverflow
		}
		return result, nil
	}

	quotient, err := MulDivCeil(amount, Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, ErrNotEnoughLiquidity
	}
	return new(uint256.Int).Sub(sqrtPX96, quotient), nil
}

func quotientAmount1(amount, liquidity *uint256.Int) (*uint256.Int, error) {
	return MulDiv(amount, Q96, liquidity)
}

// GetNextSqrtPriceFromInput computes the sqrt price after swapping
// amountIn, holding liquidity constant. zeroForOne selects which token is
// being sold: token0 moves the price down via amount0's formula, token1
// moves it up via amount1's.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() || liquidity.IsZero() {
		return nil, ErrInvalidPriceOrLiquidity
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput computes the sqrt price after paying out
// amountOut, holding liquidity constant.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() || liquidity.IsZero() {
		return nil, ErrInvalidPriceOrLiquidity
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}
