package clmm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Ledger is the external collaborator that actually moves tokens. The
// core never calls it directly: a caller first gets a Buffer back from
// ModifyLiquidity or Swap, then separately asks the ledger to move the
// amounts the buffer implies, and only commits the buffer to the store
// once that succeeds. This mirrors the reference's separation between
// the canister's pool logic and its ICRC ledger client.
type Ledger interface {
	// Deposit moves amount of token from principal into the pool's
	// custody, failing with ErrInsufficientFunds or
	// ErrInsufficientAllowance if the caller can't cover it.
	Deposit(ctx context.Context, token common.Address, principal common.Address, amount *uint256.Int) error

	// Withdraw pays amount of token out of the pool's custody to
	// principal.
	Withdraw(ctx context.Context, token common.Address, principal common.Address, amount *uint256.Int) error

	// TransferFee returns the cached per-transfer fee for token, or
	// ErrFeeUnknown if it has never been fetched. Callers must fold this
	// into their slippage accounting before depositing or withdrawing,
	// since the ledger deducts it independently of the amount requested.
	TransferFee(token common.Address) (*uint256.Int, error)
}

// SlippageCheck validates a swap or liquidity call's resulting amounts
// against the caller's declared bounds, returning ErrAmountOutBelowMinimum
// or ErrAmountInAboveMaximum if violated. The core itself never enforces
// slippage; every quote or swap returns exact amounts and leaves bound
// enforcement to the shell, matching the reference's
// check_slippage helper living outside the pool state machine.
func SlippageCheck(exactInput bool, amountIn, amountOut, limit *uint256.Int) error {
	if exactInput {
		if amountOut.Cmp(limit) < 0 {
			return ErrAmountOutBelowMinimum
		}
		return nil
	}
	if amountIn.Cmp(limit) > 0 {
		return ErrAmountInAboveMaximum
	}
	return nil
}
