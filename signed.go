package clmm

import "github.com/holiman/uint256"

// int128 is a signed 128-bit integer, represented as a magnitude plus
// sign, since uint256.Int (and the rest of the ecosystem built on it) has
// no signed counterpart. liquidity deltas and signed amount deltas use
// this instead of reaching for math/big, which would lose the fixed-width
// overflow checks the reference relies on.
type int128 struct {
	neg bool
	mag *uint256.Int
}

var maxUint128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// newInt128 builds a signed 128-bit value from a magnitude and sign.
func newInt128(mag *uint256.Int, neg bool) int128 {
	if mag.Sign() == 0 {
		neg = false
	}
	return int128{neg: neg, mag: mag}
}

func int128FromInt64(v int64) int128 {
	if v < 0 {
		return newInt128(uint256.NewInt(uint64(-v)), true)
	}
	return newInt128(uint256.NewInt(uint64(v)), false)
}

func (v int128) Sign() int {
	if v.mag.IsZero() {
		return 0
	}
	if v.neg {
		return -1
	}
	return 1
}

func (v int128) Abs() uint128 {
	return uint128{v: new(uint256.Int).Set(v.mag)}
}

func (v int128) IsZero() bool { return v.mag.IsZero() }

// Add returns v + w, erroring if the |result| would not fit in 128 bits.
func (v int128) Add(w int128) (int128, error) {
	if v.neg == w.neg {
		sum := new(uint256.Int).Add(v.mag, w.mag)
		if sum.Cmp(maxUint128) > 0 {
			return int128{}, ErrLiquidityOverflow
		}
		return newInt128(sum, v.neg), nil
	}
	if v.mag.Cmp(w.mag) >= 0 {
		return newInt128(new(uint256.Int).Sub(v.mag, w.mag), v.neg), nil
	}
	return newInt128(new(uint256.Int).Sub(w.mag, v.mag), w.neg), nil
}

func (v int128) Neg() int128 {
	return newInt128(v.mag, !v.neg)
}

// uint128 is an unsigned 128-bit magnitude backed by a uint256.Int,
// carrying its own overflow checks against the 128-bit bound.
type uint128 struct {
	v *uint256.Int
}

func uint128FromUint64(v uint64) uint128 {
	return uint128{v: uint256.NewInt(v)}
}

func (u uint128) Uint256() *uint256.Int { return u.v }
func (u uint128) IsZero() bool          { return u.v.IsZero() }
func (u uint128) Cmp(o uint128) int     { return u.v.Cmp(o.v) }

func (u uint128) Add(o uint128) (uint128, error) {
	sum, overflow := new(uint256.Int).AddOverflow(u.v, o.v)
	if overflow || sum.Cmp(maxUint128) > 0 {
		return uint128{}, ErrLiquidityOverflow
	}
	return uint128{v: sum}, nil
}

func (u uint128) Sub(o uint128) (uint128, error) {
	if u.v.Cmp(o.v) < 0 {
		return uint128{}, ErrLiquidityOverflow
	}
	return uint128{v: new(uint256.Int).Sub(u.v, o.v)}, nil
}

// AddDelta applies a signed liquidity delta to an unsigned liquidity
// magnitude, as the reference's liquidity_math::add_delta.
func (u uint128) AddDelta(delta int128) (uint128, error) {
	if delta.Sign() >= 0 {
		return u.Add(delta.Abs())
	}
	return u.Sub(delta.Abs())
}

// int256 is a signed 256-bit value used for signed amount deltas
// (amount0/amount1 during a swap or liquidity change), which can be
// negative (token owed to the caller) or positive (token owed by the
// caller) and can exceed 128 bits once multiplied through a price ratio.
type int256 struct {
	neg bool
	mag *uint256.Int
}

func newInt256FromUint256(mag *uint256.Int, neg bool) *int256 {
	if mag.IsZero() {
		neg = false
	}
	return &int256{neg: neg, mag: mag}
}

func (v *int256) Sign() int {
	if v.mag.IsZero() {
		return 0
	}
	if v.neg {
		return -1
	}
	return 1
}

func (v *int256) Abs() *uint256.Int { return new(uint256.Int).Set(v.mag) }

func (v *int256) Neg() *int256 { return newInt256FromUint256(v.mag, !v.neg) }

func (v *int256) Add(w *int256) *int256 {
	if v.neg == w.neg {
		return newInt256FromUint256(new(uint256.Int).Add(v.mag, w.mag), v.neg)
	}
	if v.mag.Cmp(w.mag) >= 0 {
		return newInt256FromUint256(new(uint256.Int).Sub(v.mag, w.mag), v.neg)
	}
	return newInt256FromUint256(new(uint256.Int).Sub(w.mag, v.mag), w.neg)
}
