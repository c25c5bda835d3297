package clmm

import "github.com/ethereum/go-ethereum/common"

// PathKey is one hop of a multi-hop swap path: the next token to land on
// and the fee tier of the pool connecting it to the previous token.
type PathKey struct {
	IntermediaryToken common.Address
	Fee               uint32
}

// GetPoolAndSwapDirection resolves which pool a hop trades through and
// which direction the swap runs in, given the token the hop is swapping
// from.
func (k PathKey) GetPoolAndSwapDirection(tokenIn common.Address) (PoolId, bool) {
	id, flipped := NewPoolId(tokenIn, k.IntermediaryToken, k.Fee)
	// tokenIn is token0 (a zeroForOne swap) exactly when no flip was needed.
	return id, !flipped
}

// ResolvePath validates and expands a swap path into the ordered list of
// pools and swap directions a multi-hop swap must step through, starting
// from tokenIn. It rejects paths shorter than MinSwapPathHops, longer
// than MaxSwapPathHops, or that would trade back through the same pool
// twice (which would let a path double-count a single pool's liquidity).
type ResolvedHop struct {
	PoolID     PoolId
	ZeroForOne bool
	TokenOut   common.Address
}

func ResolvePath(tokenIn common.Address, hops []PathKey) ([]ResolvedHop, error) {
	if len(hops) < MinSwapPathHops {
		return nil, ErrPathTooShort
	}
	if len(hops) > MaxSwapPathHops {
		return nil, ErrPathTooLong
	}

	seen := make(map[PoolId]bool, len(hops))
	resolved := make([]ResolvedHop, 0, len(hops))

	current := tokenIn
	for _, hop := range hops {
		poolID, zeroForOne := hop.GetPoolAndSwapDirection(current)
		if seen[poolID] {
			return nil, ErrPathDuplicatePool
		}
		seen[poolID] = true
		resolved = append(resolved, ResolvedHop{PoolID: poolID, ZeroForOne: zeroForOne, TokenOut: hop.IntermediaryToken})
		current = hop.IntermediaryToken
	}
	return resolved, nil
}
