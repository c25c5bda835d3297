package clmm

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
)

// guardEntry records one principal's in-flight operation: whether it is a
// swap (which only conflicts with a general operation, never with
// another swap) and, if so, the monotonically increasing swap number
// assigned when it was admitted.
type guardEntry struct {
	isSwap     bool
	swapNumber uint64
}

// PrincipalGuard is the core's single concurrency primitive, ported from
// the dual-lock design found in the reference's guard module (as opposed
// to the single-lock variant kept alongside it there, which this port
// treats as superseded). A general operation (mint, burn, collect,
// create_pool) excludes every other operation against the same
// principal, swap or not; a swap only excludes a concurrent general
// operation, letting independent swaps from the same principal overlap
// as long as none of them touch state a general call is also touching.
type PrincipalGuard struct {
	mu       sync.Mutex
	guarded  map[common.Address]guardEntry
	nextSwap uint64
}

// NewPrincipalGuard returns an empty guard table.
func NewPrincipalGuard() *PrincipalGuard {
	return &PrincipalGuard{guarded: make(map[common.Address]guardEntry)}
}

// Guard is a held lock for one principal; Release must be called exactly
// once, typically via defer immediately after a successful acquire.
type Guard struct {
	g         *PrincipalGuard
	principal common.Address
}

// NewSwapGuard admits a swap-scoped operation for principal, blocked only
// by an existing general guard for that principal. It returns a fresh,
// strictly increasing swap number the caller can use to order concurrent
// swaps from the same principal in logs or event ordering.
func (g *PrincipalGuard) NewSwapGuard(principal common.Address) (*Guard, uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, ok := g.guarded[principal]; ok && !entry.isSwap {
		return nil, 0, ErrAlreadyProcessing
	}

	swapNumber := atomic.AddUint64(&g.nextSwap, 1)
	g.guarded[principal] = guardEntry{isSwap: true, swapNumber: swapNumber}
	return &Guard{g: g, principal: principal}, swapNumber, nil
}

// NewGeneralGuard admits a general operation for principal, blocked by
// any existing guard (swap or general) for that principal.
func (g *PrincipalGuard) NewGeneralGuard(principal common.Address) (*Guard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.guarded[principal]; ok {
		return nil, ErrAlreadyProcessing
	}

	g.guarded[principal] = guardEntry{isSwap: false}
	return &Guard{g: g, principal: principal}, nil
}

// Release removes the principal's guard entry, letting the next blocked
// caller through. Calling it more than once is a no-op.
func (guard *Guard) Release() {
	if guard == nil || guard.g == nil {
		return
	}
	guard.g.mu.Lock()
	delete(guard.g.guarded, guard.principal)
	guard.g.mu.Unlock()
	guard.g = nil
}
