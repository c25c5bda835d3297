package clmm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// tickMathConstants are the twenty hex magic numbers used to build the
// fixed-point approximation of 1.0001^(tick/2) by binary decomposition of
// |tick|. Each constant already carries the contribution of one bit, so
// GetSqrtRatioAtTick only ever multiplies a running accumulator by the
// constants whose bit is set.
var tickMathConstants = []string{
	"fffcb933bd6fad37aa2d162d1a594001",
	"fff97272373d413259a46990580e213a",
	"fff2e50f5f656932ef12357cf3c7fdcc",
	"ffe5caca7e10e4e61c3624eaa0941cd0",
	"ffcb9843d60f6159c9db58835c926644",
	"ff973b41fa98c081472e6896dfb254c0",
	"ff2ea16466c96a3843ec78b326b52861",
	"fe5dee046a99a2a811c461f1969c3053",
	"fcbe86c7900a88aedcffc83b479aa3a4",
	"f987a7253ac413176f2b074cf7815e54",
	"f3392b0822b70005940c7a398e4b70f3",
	"e7159475a2c29b7443b29c7fa6e889d9",
	"d097f3bdfd2022b8845ad8f792aa5825",
	"a9f746462d870fdf8a65dc1f90e061e5",
	"70d869a156d2a1b890bb3df62baf32f7",
	"31be135f97d08fd981231505542fcfa6",
	"9aa508b5b7a84e1c677de54f3e99bc9",
	"5d6af8dedb81196699c329225ee604",
	"2216e584f5fa1ea926041bedfe98",
	"48a170391f7dc42444e8fa2",
}

var big1 = new(big.Int).SetUint64(1)

// GetSqrtRatioAtTick returns floor(sqrt(1.0001^tick) * 2^96) as a Q64.96
// fixed-point number. Ported bit-for-bit from the reference's
// get_sqrt_ratio_at_tick: the magnitude is decomposed bit by bit, each bit
// of |tick| picking up one precomputed 128-bit constant, and the final
// Q128.128 accumulator (inverted first, by dividing 2^256-1 by it, when
// tick > 0) is shifted down to Q64.96, rounding up whenever any of the
// 32 discarded bits is set.
func GetSqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrInvalidTick
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio, ok := new(big.Int).SetString("100000000000000000000000000000000", 16)
	if !ok {
		panic("clmm: bad literal")
	}
	if absTick&0x1 != 0 {
		ratio, ok = new(big.Int).SetString(tickMathConstants[0], 16)
		if !ok {
			panic("clmm: bad literal")
		}
	}
	for i := 1; i < len(tickMathConstants); i++ {
		if absTick&(1<<uint(i)) != 0 {
			c, ok := new(big.Int).SetString(tickMathConstants[i], 16)
			if !ok {
				panic("clmm: bad literal")
			}
			ratio = shiftedMul(ratio, c)
		}
	}

	if tick > 0 {
		maxU256 := new(big.Int).Lsh(big1, 256)
		maxU256.Sub(maxU256, big1)
		ratio = new(big.Int).Div(maxU256, ratio)
	}

	// ratio is Q128.128; shift down to Q64.96, rounding up if the
	// truncated bits are nonzero.
	shifted := new(big.Int).Rsh(ratio, 32)
	remainder := new(big.Int).Sub(ratio, new(big.Int).Lsh(shifted, 32))
	if remainder.Sign() != 0 {
		shifted.Add(shifted, big1)
	}

	result, overflow := uint256.FromBig(shifted)
	if overflow {
		return nil, ErrPriceOverflow
	}
	return result, nil
}

// shiftedMul multiplies two Q128.128 values and shifts back down to
// Q128.128, as the reference's (a * b) >> 128 step.
func shiftedMul(a, b *big.Int) *big.Int {
	prod := new(big.Int).Mul(a, b)
	return prod.Rsh(prod, 128)
}

const (
	log2CoeffNumerator = "255738958999603826347141"
	tickLowOffset      = "3402992956809132418596140100660247210"
	tickHiOffset       = "291339464771989622907027621153398088495"
)

// GetTickAtSqrtRatio returns the greatest tick whose sqrt ratio does not
// exceed the given Q64.96 price. Grounded in the reference's
// get_tick_at_sqrt_ratio: the price's bit-length gives an integer log2
// estimate (computed relative to the Q64.96 representation, i.e. offset by
// 96 fractional bits), refined by fourteen rounds of fixed-point squaring, and the
// two tick candidates bracketing the estimate are disambiguated by
// re-deriving their sqrt ratios.
func GetTickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) > 0 {
		return 0, ErrPriceLimitOutOfBounds
	}

	ratio := new(big.Int).Lsh(sqrtPriceX96.ToBig(), 32)

	msb := ratio.BitLen() - 1

	var r *big.Int
	if msb >= 128 {
		r = new(big.Int).Rsh(ratio, uint(msb-127))
	} else {
		r = new(big.Int).Lsh(ratio, uint(127-msb))
	}

	log2Int := new(big.Int).Lsh(big.NewInt(int64(msb-128)), 64)

	for i := 0; i < 14; i++ {
		r = new(big.Int).Rsh(new(big.Int).Mul(r, r), 127)
		f := new(big.Int).Rsh(r, 128)
		log2Int.Or(log2Int, new(big.Int).Lsh(f, uint(63-i)))
		r = new(big.Int).Rsh(r, uint(f.Int64()))
	}

	coeff, _ := new(big.Int).SetString(log2CoeffNumerator, 10)
	logSqrt10001 := new(big.Int).Mul(log2Int, coeff)

	lowOffset, _ := new(big.Int).SetString(tickLowOffset, 10)
	hiOffset, _ := new(big.Int).SetString(tickHiOffset, 10)

	tickLowBig := new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, lowOffset), 128)
	tickHiBig := new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, hiOffset), 128)

	tickLow := int32(tickLowBig.Int64())
	tickHi := int32(tickHiBig.Int64())

	if tickLow == tickHi {
		return tickLow, nil
	}
	hiRatio, err := GetSqrtRatioAtTick(tickHi)
	if err != nil {
		return 0, err
	}
	if hiRatio.Cmp(sqrtPriceX96) <= 0 {
		return tickHi, nil
	}
	return tickLow, nil
}
