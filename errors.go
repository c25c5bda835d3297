package clmm

import "errors"

// Domain / input errors.
var (
	ErrInvalidFeeAmount              = errors.New("clmm: fee amount has no configured tick spacing")
	ErrInvalidSqrtPriceX96           = errors.New("clmm: initial sqrt price out of bounds")
	ErrPoolAlreadyExists             = errors.New("clmm: pool already exists")
	ErrPoolNotInitialized            = errors.New("clmm: pool not initialized")
	ErrInvalidTick                   = errors.New("clmm: tick out of bounds or tick_lower >= tick_upper")
	ErrTickNotAlignedWithTickSpacing = errors.New("clmm: tick not aligned to tick spacing")
	ErrZeroLiquidityPosition         = errors.New("clmm: cannot poke a position with zero liquidity")
	ErrPositionNotFound              = errors.New("clmm: position not found")
	ErrPathTooShort                  = errors.New("clmm: swap path shorter than MinSwapPathHops")
	ErrPathTooLong                   = errors.New("clmm: swap path longer than MaxSwapPathHops")
	ErrPathDuplicatePool             = errors.New("clmm: swap path revisits the same pool")
	ErrInvalidAmount                 = errors.New("clmm: amount must be greater than zero")
	ErrInvalidProtocolFee            = errors.New("clmm: protocol fee exceeds MaxProtocolFeePips")
)

// Capacity errors.
var (
	ErrLiquidityOverflow     = errors.New("clmm: liquidity delta overflows u128")
	ErrTickLiquidityOverflow = errors.New("clmm: tick gross liquidity exceeds max_liquidity_per_tick")
	ErrPositionOverflow      = errors.New("clmm: position liquidity overflow")
	ErrFeeOwedOverflow       = errors.New("clmm: fee owed overflow")
	ErrAmountDeltaOverflow   = errors.New("clmm: amount delta overflow")
)

// Fixed-point / curve errors.
var (
	ErrDivisionByZero         = errors.New("clmm: division by zero")
	ErrMulDivOverflow         = errors.New("clmm: mul_div result exceeds 256 bits")
	ErrInvalidPriceOrLiquidity = errors.New("clmm: zero price or zero liquidity")
	ErrNotEnoughLiquidity     = errors.New("clmm: output would drive price to or below zero")
	ErrPriceOverflow          = errors.New("clmm: resulting sqrt price exceeds the 160-bit bound")
	ErrInvalidFeeForExactOutput = errors.New("clmm: exact-output swap cannot use a 100% fee")
	ErrPriceLimitAlreadyExceeded = errors.New("clmm: sqrt price limit is on the wrong side of the current price")
	ErrPriceLimitOutOfBounds  = errors.New("clmm: sqrt price limit outside [MinSqrtRatio, MaxSqrtRatio]")
	ErrCalculationOverflow    = errors.New("clmm: swap calculation overflow")
	ErrIlliquidPool           = errors.New("clmm: pool has no in-range liquidity")
)

// Slippage errors, surfaced by the shell around a quote or swap.
var (
	ErrAmountOutBelowMinimum = errors.New("clmm: exact-input swap received less than the minimum amount out")
	ErrAmountInAboveMaximum  = errors.New("clmm: exact-output swap required more than the maximum amount in")
)

// External collaborator errors (surfaced, not produced, by the core).
var (
	ErrLedgerUnavailable      = errors.New("clmm: ledger temporarily unavailable")
	ErrInsufficientFunds      = errors.New("clmm: insufficient funds")
	ErrInsufficientAllowance  = errors.New("clmm: insufficient allowance")
	ErrInsufficientBalance    = errors.New("clmm: balance insufficient to satisfy slippage bound")
	ErrBadFee                 = errors.New("clmm: ledger rejected cached transfer fee")
	ErrFeeUnknown             = errors.New("clmm: transfer fee for token is not cached")
)

// Concurrency errors (see guard.go).
var ErrAlreadyProcessing = errors.New("clmm: principal already has an in-flight operation")
