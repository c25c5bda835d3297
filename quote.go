package clmm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// QuoteResult reports the amount the other side of a quoted swap would
// move, along with the resulting price and tick so a caller can reason
// about price impact without touching the store.
type QuoteResult struct {
	AmountIn     *uint256.Int
	AmountOut    *uint256.Int
	SqrtPriceX96 *uint256.Int
	TickAfter    int32
}

// defaultPriceLimit returns the sqrt price limit used when a quote
// doesn't specify one: the curve's full range in the swap's direction.
func defaultPriceLimit(zeroForOne bool) *uint256.Int {
	if zeroForOne {
		return new(uint256.Int).Add(MinSqrtRatio, uint256.NewInt(1))
	}
	return new(uint256.Int).Sub(MaxSqrtRatio, uint256.NewInt(1))
}

// QuoteSingle runs a Swap against a cloned pool and discards the
// resulting buffer, reporting only the amounts and resulting price. It
// never touches the store's committed state, the same no-side-effect
// guarantee the reference's quote module provides by operating over a
// scratch copy of the pool.
func QuoteSingle(pool *PoolState, ticks TickReader, zeroForOne bool, amountSpecified *int256, sqrtPriceLimitX96 *uint256.Int) (*QuoteResult, error) {
	if sqrtPriceLimitX96 == nil {
		sqrtPriceLimitX96 = defaultPriceLimit(zeroForOne)
	}
	scratch := pool.Clone()

	result, err := Swap(scratch, ticks, SwapParams{
		ZeroForOne:        zeroForOne,
		AmountSpecified:   amountSpecified,
		SqrtPriceLimitX96: sqrtPriceLimitX96,
	})
	if err != nil {
		return nil, err
	}

	var amountIn, amountOut *uint256.Int
	if zeroForOne {
		amountIn, amountOut = result.Amount0.Abs(), result.Amount1.Abs()
	} else {
		amountIn, amountOut = result.Amount1.Abs(), result.Amount0.Abs()
	}

	sqrtAfter := scratch.SqrtPriceX96
	if result.Buffer != nil && result.Buffer.sqrtPriceX96 != nil {
		sqrtAfter = *result.Buffer.sqrtPriceX96
	}
	tickAfter := scratch.TickCurrent
	if result.Buffer != nil && result.Buffer.tickCurrent != nil {
		tickAfter = *result.Buffer.tickCurrent
	}

	return &QuoteResult{AmountIn: amountIn, AmountOut: amountOut, SqrtPriceX96: &sqrtAfter, TickAfter: tickAfter}, nil
}

// PoolLookup resolves a PoolId to its current state and tick reader,
// letting a multi-hop quote or swap pull each hop's pool from whatever
// store backs it without quote.go depending on Store directly.
type PoolLookup interface {
	GetPool(id PoolId) (*PoolState, bool)
	TickReader
}

// QuoteExactInputMultiHop walks a resolved path forward, token in to
// token out, quoting each hop in turn and feeding the prior hop's output
// in as the next hop's input.
func QuoteExactInputMultiHop(lookup PoolLookup, tokenIn common.Address, hops []PathKey, amountIn *uint256.Int) (*uint256.Int, error) {
	resolved, err := ResolvePath(tokenIn, hops)
	if err != nil {
		return nil, err
	}

	remaining := amountIn
	for _, hop := range resolved {
		pool, ok := lookup.GetPool(hop.PoolID)
		if !ok {
			return nil, ErrPoolNotInitialized
		}
		res, err := QuoteSingle(pool, lookup, hop.ZeroForOne, newInt256FromUint256(remaining, true), nil)
		if err != nil {
			return nil, err
		}
		remaining = res.AmountOut
	}
	return remaining, nil
}

// QuoteExactOutputMultiHop walks a resolved path backward, starting from
// the final output and discovering how much of the first hop's input
// token would be required, mirroring the reference's
// process_multi_hop_exact_output iterating the path in reverse.
func QuoteExactOutputMultiHop(lookup PoolLookup, tokenIn common.Address, hops []PathKey, amountOut *uint256.Int) (*uint256.Int, error) {
	resolved, err := ResolvePath(tokenIn, hops)
	if err != nil {
		return nil, err
	}

	remaining := amountOut
	for i := len(resolved) - 1; i >= 0; i-- {
		hop := resolved[i]
		pool, ok := lookup.GetPool(hop.PoolID)
		if !ok {
			return nil, ErrPoolNotInitialized
		}
		res, err := QuoteSingle(pool, lookup, hop.ZeroForOne, newInt256FromUint256(remaining, false), nil)
		if err != nil {
			return nil, err
		}
		remaining = res.AmountIn
	}
	return remaining, nil
}
