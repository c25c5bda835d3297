package clmm

import "github.com/holiman/uint256"

// MaxSwapFee is the fee denominator's unit: a fee of MaxSwapFee pips is
// 100%, which ComputeSwapStep rejects for an exact-output swap since no
// amount of output could ever be paid for.
const MaxSwapFee uint32 = PipsDenominator

// GetSqrtPriceTarget clamps the caller's sqrt price limit against the
// boundary implied by the next initialized tick in the swap's direction,
// so a single swap step never targets a price past a tick it hasn't
// crossed yet.
func GetSqrtPriceTarget(zeroForOne bool, sqrtPriceNextTick, sqrtPriceLimit *uint256.Int) *uint256.Int {
	if zeroForOne {
		if sqrtPriceNextTick.Cmp(sqrtPriceLimit) < 0 {
			return sqrtPriceLimit
		}
		return sqrtPriceNextTick
	}
	if sqrtPriceNextTick.Cmp(sqrtPriceLimit) > 0 {
		return sqrtPriceLimit
	}
	return sqrtPriceNextTick
}

// SwapStepResult is the outcome of advancing the price by one step toward
// sqrtPriceTarget, consuming up to amountRemaining of input or output.
type SwapStepResult struct {
	SqrtPriceNext *uint256.Int
	AmountIn      *uint256.Int
	AmountOut     *uint256.Int
	FeeAmount     *uint256.Int
}

// ComputeSwapStep advances the price from sqrtPriceCurrent toward
// sqrtPriceTarget given the liquidity available in this range, consuming
// up to |amountRemaining| of input (negative, exact-in) or output
// (positive, exact-out), and charging feePips of whatever is taken as
// input. If the full remaining amount would cross past the target price,
// the step stops exactly at the target and reports the partial
// amount consumed; otherwise it reports the full remaining amount with
// the price landing wherever that amount implies.
func ComputeSwapStep(sqrtPriceCurrent, sqrtPriceTarget *uint256.Int, liquidity *uint256.Int, amountRemaining *int256, feePips uint32) (SwapStepResult, error) {
	zeroForOne := sqrtPriceCurrent.Cmp(sqrtPriceTarget) >= 0
	exactIn := amountRemaining.Sign() <= 0

	if !exactIn && feePips >= MaxSwapFee {
		return SwapStepResult{}, ErrInvalidFeeForExactOutput
	}

	var amountIn, amountOut *uint256.Int
	var err error

	if exactIn {
		amountRemainingLessFee, err2 := amountAfterFee(amountRemaining.Abs(), feePips)
		if err2 != nil {
			return SwapStepResult{}, err2
		}
		if zeroForOne {
			amountIn, err = GetAmount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, true)
		} else {
			amountIn, err = GetAmount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, true)
		}
		if err != nil {
			return SwapStepResult{}, err
		}
		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			// reaches (or exceeds) the target: the whole range is consumed.
			sqrtPriceNext := sqrtPriceTarget
			if zeroForOne {
				amountOut, err = GetAmount1Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, false)
			} else {
				amountOut, err = GetAmount0Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, false)
			}
			if err != nil {
				return SwapStepResult{}, err
			}
			feeAmount := computeStepFee(amountIn, feePips)
			return SwapStepResult{SqrtPriceNext: sqrtPriceNext, AmountIn: amountIn, AmountOut: amountOut, FeeAmount: feeAmount}, nil
		}

		var sqrtPriceNext *uint256.Int
		sqrtPriceNext, err = GetNextSqrtPriceFromInput(sqrtPriceCurrent, liquidity, amountRemainingLessFee, zeroForOne)
		if err != nil {
			return SwapStepResult{}, err
		}
		if zeroForOne {
			amountOut, err = GetAmount1Delta(sqrtPriceNext, sqrtPriceCurrent, liquidity, false)
		} else {
			amountOut, err = GetAmount0Delta(sqrtPriceCurrent, sqrtPriceNext, liquidity, false)
		}
		if err != nil {
			return SwapStepResult{}, err
		}
		feeAmount := new(uint256.Int).Sub(amountRemaining.Abs(), amountRemainingLessFee)
		return SwapStepResult{SqrtPriceNext: sqrtPriceNext, AmountIn: amountRemainingLessFee, AmountOut: amountOut, FeeAmount: feeAmount}, nil
	}

	// exact-out: amountRemaining.Abs() is the amount of output desired.
	if zeroForOne {
		amountOut, err = GetAmount1Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, false)
	} else {
		amountOut, err = GetAmount0Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, false)
	}
	if err != nil {
		return SwapStepResult{}, err
	}

	if amountRemaining.Abs().Cmp(amountOut) >= 0 {
		sqrtPriceNext := sqrtPriceTarget
		if zeroForOne {
			amountIn, err = GetAmount0Delta(sqrtPriceTarget, sqrtPriceCurrent, liquidity, true)
		} else {
			amountIn, err = GetAmount1Delta(sqrtPriceCurrent, sqrtPriceTarget, liquidity, true)
		}
		if err != nil {
			return SwapStepResult{}, err
		}
		feeAmount := computeStepFee(amountIn, feePips)
		return SwapStepResult{SqrtPriceNext: sqrtPriceNext, AmountIn: amountIn, AmountOut: amountOut, FeeAmount: feeAmount}, nil
	}

	var sqrtPriceNext *uint256.Int
	sqrtPriceNext, err = GetNextSqrtPriceFromOutput(sqrtPriceCurrent, liquidity, amountRemaining.Abs(), zeroForOne)
	if err != nil {
		return SwapStepResult{}, err
	}
	if zeroForOne {
		amountIn, err = GetAmount0Delta(sqrtPriceNext, sqrtPriceCurrent, liquidity, true)
	} else {
		amountIn, err = GetAmount1Delta(sqrtPriceCurrent, sqrtPriceNext, liquidity, true)
	}
	if err != nil {
		return SwapStepResult{}, err
	}
	feeAmount := computeStepFee(amountIn, feePips)
	return SwapStepResult{SqrtPriceNext: sqrtPriceNext, AmountIn: amountIn, AmountOut: amountRemaining.Abs(), FeeAmount: feeAmount}, nil
}

// amountAfterFee returns amount * (1e6 - feePips) / 1e6, i.e. the portion
// of an exact-in amount that remains after the fee is deducted up front.
func amountAfterFee(amount *uint256.Int, feePips uint32) (*uint256.Int, error) {
	numerator := new(uint256.Int).Sub(uint256.NewInt(uint64(PipsDenominator)), uint256.NewInt(uint64(feePips)))
	return MulDiv(amount, numerator, uint256.NewInt(uint64(PipsDenominator)))
}

// computeStepFee returns ceil(amountIn * feePips / (1e6 - feePips)), the
// fee charged on top of amountIn so that amountIn is exactly the post-fee
// input consumed by the step.
func computeStepFee(amountIn *uint256.Int, feePips uint32) *uint256.Int {
	if feePips == 0 {
		return new(uint256.Int)
	}
	denom := PipsDenominator - feePips
	fee, err := MulDivCeil(amountIn, uint256.NewInt(uint64(feePips)), uint256.NewInt(uint64(denom)))
	if err != nil {
		return new(uint256.Int)
	}
	return fee
}
