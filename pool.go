package clmm

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PoolId identifies a pool by its canonically ordered token pair and fee
// tier. token0 is always the lexicographically smaller address.
type PoolId struct {
	Token0 common.Address `cbor:"0,keyasint"`
	Token1 common.Address `cbor:"1,keyasint"`
	Fee    uint32          `cbor:"2,keyasint"`
}

// NewPoolId canonically orders the two token addresses and reports
// whether the order had to be flipped (zeroForOne reference point for
// whichever token the caller originally called "token in").
func NewPoolId(tokenA, tokenB common.Address, fee uint32) (id PoolId, flipped bool) {
	if tokenA.Cmp(tokenB) > 0 {
		return PoolId{Token0: tokenB, Token1: tokenA, Fee: fee}, true
	}
	return PoolId{Token0: tokenA, Token1: tokenB, Fee: fee}, false
}

// PoolState is the live, committed state of one concentrated-liquidity
// pool. It carries a gorm.Model so the store can persist it the same way
// the ambient stack persists every other entity.
type PoolState struct {
	gorm.Model
	PoolID               PoolId
	Initialized          bool
	TickSpacing          int32
	MaxLiquidityPerTick  uint128
	SqrtPriceX96         uint256.Int
	TickCurrent          int32
	Liquidity            uint128
	FeeGrowthGlobal0X128 uint256.Int
	FeeGrowthGlobal1X128 uint256.Int

	// ProtocolFeePips is the protocol's cut of every swap fee, expressed
	// in pips of the fee charged (not of the swap amount), bounded by
	// MaxProtocolFeePips. Zero means the protocol takes nothing and the
	// full fee is credited to liquidity providers.
	ProtocolFeePips uint16

	// TransferFee0/TransferFee1 cache the ledger's per-transfer fee for
	// each of the pool's tokens, refreshed via RefreshTransferFees.
	TransferFee0 uint256.Int
	TransferFee1 uint256.Int

	// PoolReserves0/PoolReserves1 track the pool's own accounting of the
	// tokens it custodies, maintained alongside (not derived from) the
	// ledger's actual balances.
	PoolReserves0 uint256.Int
	PoolReserves1 uint256.Int

	// SwapVolume0AllTime/SwapVolume1AllTime accumulate the absolute
	// amount of each token that has ever moved through a swap against
	// this pool, independent of direction.
	SwapVolume0AllTime uint256.Int
	SwapVolume1AllTime uint256.Int
}

// Clone returns a struct copy of the pool state, used to stage speculative
// mutations (quoting, dry runs) without touching the committed state. The
// uint128 fields (Liquidity, MaxLiquidityPerTick) still point at the same
// backing integers as the original's.
func (p *PoolState) Clone() *PoolState {
	clone := *p
	return &clone
}

// CreatePool initializes a brand-new pool at the given fee tier and
// initial price. The fee must have a configured tick spacing; the price
// must land strictly inside [MinSqrtRatio, MaxSqrtRatio].
func CreatePool(tokenA, tokenB common.Address, fee uint32, sqrtPriceX96 *uint256.Int) (*PoolState, bool, error) {
	spacing, ok := FeeTickSpacings[fee]
	if !ok {
		return nil, false, ErrInvalidFeeAmount
	}
	if sqrtPriceX96.Cmp(MinSqrtRatio) <= 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return nil, false, ErrInvalidSqrtPriceX96
	}

	id, flipped := NewPoolId(tokenA, tokenB, fee)
	tick, err := GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return nil, flipped, err
	}

	pool := &PoolState{
		PoolID:               id,
		Initialized:          true,
		TickSpacing:          spacing,
		MaxLiquidityPerTick:  TickSpacingToMaxLiquidityPerTick(spacing),
		SqrtPriceX96:         *sqrtPriceX96,
		TickCurrent:          tick,
		Liquidity:            uint128{v: new(uint256.Int)},
		FeeGrowthGlobal0X128: *new(uint256.Int),
		FeeGrowthGlobal1X128: *new(uint256.Int),
		ProtocolFeePips:      0,
		TransferFee0:         *new(uint256.Int),
		TransferFee1:         *new(uint256.Int),
		PoolReserves0:        *new(uint256.Int),
		PoolReserves1:        *new(uint256.Int),
		SwapVolume0AllTime:   *new(uint256.Int),
		SwapVolume1AllTime:   *new(uint256.Int),
	}

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("created pool %s/%s fee=%d spacing=%d tick=%d sqrtPriceX96=%s",
			id.Token0, id.Token1, fee, spacing, tick, sqrtPriceX96.String())
	}

	return pool, flipped, nil
}

// SetProtocolFee updates the pool's protocol fee cut of every swap fee,
// rejecting anything past MaxProtocolFeePips.
func SetProtocolFee(pool *PoolState, protocolFeePips uint16) error {
	if protocolFeePips > MaxProtocolFeePips {
		return ErrInvalidProtocolFee
	}
	pool.ProtocolFeePips = protocolFeePips
	return nil
}

// RefreshTransferFees re-caches the pool's two tokens' per-transfer fees
// from the ledger, matching the reference's practice of syncing cached
// ICRC transfer fees before they're needed to settle a deposit or
// withdrawal.
func RefreshTransferFees(pool *PoolState, ledger Ledger) error {
	fee0, err := ledger.TransferFee(pool.PoolID.Token0)
	if err != nil {
		return err
	}
	fee1, err := ledger.TransferFee(pool.PoolID.Token1)
	if err != nil {
		return err
	}
	pool.TransferFee0 = *fee0
	pool.TransferFee1 = *fee1
	return nil
}

// ModifyLiquidityParams describes a mint (positive delta) or burn
// (negative delta) against an existing position.
type ModifyLiquidityParams struct {
	Owner          common.Address
	TickLower      int32
	TickUpper      int32
	LiquidityDelta int128
}

// ModifyLiquidityResult reports the token amounts owed by (positive,
// minting) or owed to (negative, burning) the caller, the fee amounts
// freshly accrued to the touched position since its last update, and the
// buffered writes needed to commit the change.
type ModifyLiquidityResult struct {
	Amount0   *int256
	Amount1   *int256
	FeeDelta0 uint128
	FeeDelta1 uint128
	Buffer    *Buffer
}

// ModifyLiquidity applies a liquidity delta to a position, updating both
// tick boundaries, the tick bitmap, the position's accounting, and, if
// the range straddles the current price, the pool's active liquidity. It
// returns a Buffer of the state changes rather than mutating pool
// directly, so a caller can validate slippage before committing.
func ModifyLiquidity(pool *PoolState, ticks TickReader, positions PositionReader, params ModifyLiquidityParams) (*ModifyLiquidityResult, error) {
	if !pool.Initialized {
		return nil, ErrPoolNotInitialized
	}
	if err := checkTicks(params.TickLower, params.TickUpper, pool.TickSpacing); err != nil {
		return nil, err
	}

	buf := NewBuffer(pool.PoolID)

	lowerKey := TickKey{PoolID: pool.PoolID, Tick: params.TickLower}
	upperKey := TickKey{PoolID: pool.PoolID, Tick: params.TickUpper}

	lowerInfo, _ := ticks.GetTick(lowerKey)
	upperInfo, _ := ticks.GetTick(upperKey)

	lowerResult, err := UpdateTick(lowerInfo, pool.TickCurrent, params.TickLower, params.LiquidityDelta,
		&pool.FeeGrowthGlobal0X128, &pool.FeeGrowthGlobal1X128, false, pool.MaxLiquidityPerTick)
	if err != nil {
		return nil, err
	}
	upperResult, err := UpdateTick(upperInfo, pool.TickCurrent, params.TickUpper, params.LiquidityDelta,
		&pool.FeeGrowthGlobal0X128, &pool.FeeGrowthGlobal1X128, true, pool.MaxLiquidityPerTick)
	if err != nil {
		return nil, err
	}

	buf.SetTick(lowerKey, lowerResult.Info)
	buf.SetTick(upperKey, upperResult.Info)

	if lowerResult.Flipped {
		word, wordKey := loadBitmapWord(buf, ticks, pool.PoolID, params.TickLower, pool.TickSpacing)
		flipped, err := FlipTick(word, params.TickLower, pool.TickSpacing)
		if err != nil {
			return nil, err
		}
		buf.SetBitmapWord(wordKey, flipped)
		if params.LiquidityDelta.Sign() < 0 {
			buf.ClearTick(lowerKey)
		}
	}
	if upperResult.Flipped {
		word, wordKey := loadBitmapWord(buf, ticks, pool.PoolID, params.TickUpper, pool.TickSpacing)
		flipped, err := FlipTick(word, params.TickUpper, pool.TickSpacing)
		if err != nil {
			return nil, err
		}
		buf.SetBitmapWord(wordKey, flipped)
		if params.LiquidityDelta.Sign() < 0 {
			buf.ClearTick(upperKey)
		}
	}

	feeGrowthInside0, feeGrowthInside1 := GetFeeGrowthInside(lowerResult.Info, upperResult.Info,
		params.TickLower, params.TickUpper, pool.TickCurrent, &pool.FeeGrowthGlobal0X128, &pool.FeeGrowthGlobal1X128)

	posKey := PositionKey{Owner: params.Owner, PoolID: pool.PoolID, TickLower: params.TickLower, TickUpper: params.TickUpper}
	posInfo, _ := positions.GetPosition(posKey)

	updatedPos, feeDelta0, feeDelta1, err := UpdatePosition(posInfo, params.LiquidityDelta, feeGrowthInside0, feeGrowthInside1)
	if err != nil {
		return nil, err
	}
	buf.SetPosition(posKey, updatedPos)

	var amount0, amount1 *int256
	sqrtCurrent := &pool.SqrtPriceX96
	sqrtLower, err := GetSqrtRatioAtTick(params.TickLower)
	if err != nil {
		return nil, err
	}
	sqrtUpper, err := GetSqrtRatioAtTick(params.TickUpper)
	if err != nil {
		return nil, err
	}

	switch {
	case pool.TickCurrent < params.TickLower:
		amount0, err = GetAmount0DeltaSigned(sqrtLower, sqrtUpper, params.LiquidityDelta)
		amount1 = newInt256FromUint256(new(uint256.Int), false)
	case pool.TickCurrent < params.TickUpper:
		amount0, err = GetAmount0DeltaSigned(sqrtCurrent, sqrtUpper, params.LiquidityDelta)
		if err == nil {
			amount1, err = GetAmount1DeltaSigned(sqrtLower, sqrtCurrent, params.LiquidityDelta)
		}
		if err == nil {
			newLiquidity, addErr := pool.Liquidity.AddDelta(params.LiquidityDelta)
			if addErr != nil {
				err = addErr
			} else {
				buf.SetLiquidity(newLiquidity)
			}
		}
	default:
		amount1, err = GetAmount1DeltaSigned(sqrtLower, sqrtUpper, params.LiquidityDelta)
		amount0 = newInt256FromUint256(new(uint256.Int), false)
	}
	if err != nil {
		return nil, err
	}

	buf.SetPoolReserves0(applySignedDelta(&pool.PoolReserves0, amount0))
	buf.SetPoolReserves1(applySignedDelta(&pool.PoolReserves1, amount1))

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("modified position owner=%s range=[%d,%d] amount0Abs=%s amount1Abs=%s",
			params.Owner, params.TickLower, params.TickUpper, amount0.Abs().String(), amount1.Abs().String())
	}

	return &ModifyLiquidityResult{Amount0: amount0, Amount1: amount1, FeeDelta0: feeDelta0, FeeDelta1: feeDelta1, Buffer: buf}, nil
}

// applySignedDelta adds a signed amount to an unsigned base, clamping at
// zero if the delta would underflow it (which should never happen for a
// correctly accounted pool, but reserves are bookkeeping, not the source
// of truth the ledger holds).
func applySignedDelta(base *uint256.Int, delta *int256) *uint256.Int {
	if delta.Sign() >= 0 {
		return new(uint256.Int).Add(base, delta.Abs())
	}
	abs := delta.Abs()
	if abs.Cmp(base) >= 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(base, abs)
}

func checkTicks(tickLower, tickUpper, tickSpacing int32) error {
	if tickLower >= tickUpper {
		return ErrInvalidTick
	}
	if tickLower < MinTick || tickUpper > MaxTick {
		return ErrInvalidTick
	}
	if tickLower%tickSpacing != 0 || tickUpper%tickSpacing != 0 {
		return ErrTickNotAlignedWithTickSpacing
	}
	return nil
}

// loadBitmapWord reads the bitmap word holding tick through buf's pending
// writes first, so that flipping both boundaries of a range that share a
// word keeps both flips.
func loadBitmapWord(buf *Buffer, ticks TickReader, poolID PoolId, tick, tickSpacing int32) (*uint256.Int, TickBitmapKey) {
	compressed := Compress(tick, tickSpacing)
	wordPos, _ := Position(compressed)
	key := TickBitmapKey{PoolID: poolID, WordPos: wordPos}
	return buf.GetBitmapWordOrLoad(ticks, key), key
}

// swapState tracks the running accumulators of one Swap call as it steps
// across ticks.
type swapState struct {
	amountSpecifiedRemaining *int256
	amountCalculated         *int256
	sqrtPriceX96             *uint256.Int
	tick                     int32
	feeGrowthGlobalX128      *uint256.Int
	liquidity                *uint256.Int
}

// SwapParams describes one single-pool swap.
type SwapParams struct {
	ZeroForOne        bool
	AmountSpecified   *int256 // negative: exact input; positive: exact output
	SqrtPriceLimitX96 *uint256.Int
}

// SwapResult reports the net amounts moved (signed from the pool's
// perspective: positive means the pool received that token, negative
// means it paid it out), the protocol's cut of the swap fee (in whichever
// token was taken as input), and the buffered state changes to commit.
type SwapResult struct {
	Amount0           *int256
	Amount1           *int256
	ProtocolFeeToken  common.Address
	ProtocolFeeAmount *uint256.Int
	Buffer            *Buffer
}

// maxSwapLoopIterations caps how many tick-crossing steps a single swap
// may take, guarding against a pathological pool (thousands of
// initialized ticks one spacing apart) turning a swap into an unbounded
// loop.
const maxSwapLoopIterations = 1000

// Swap executes a single-pool swap against the current price and
// liquidity, stepping tick by tick until the specified amount is
// exhausted or the price limit is reached. It does not mutate pool;
// callers commit the returned Buffer once satisfied with the result.
func Swap(pool *PoolState, ticks TickReader, params SwapParams) (*SwapResult, error) {
	if !pool.Initialized {
		return nil, ErrPoolNotInitialized
	}
	if params.AmountSpecified.IsZero() {
		return nil, ErrInvalidAmount
	}
	if pool.Liquidity.IsZero() {
		return nil, ErrIlliquidPool
	}

	sqrtPriceLimit := params.SqrtPriceLimitX96
	if params.ZeroForOne {
		if sqrtPriceLimit.Cmp(pool.SqrtPriceX96.Clone()) >= 0 {
			return nil, ErrPriceLimitAlreadyExceeded
		}
		if sqrtPriceLimit.Cmp(MinSqrtRatio) <= 0 {
			return nil, ErrPriceLimitOutOfBounds
		}
	} else {
		if sqrtPriceLimit.Cmp(pool.SqrtPriceX96.Clone()) <= 0 {
			return nil, ErrPriceLimitAlreadyExceeded
		}
		if sqrtPriceLimit.Cmp(MaxSqrtRatio) >= 0 {
			return nil, ErrPriceLimitOutOfBounds
		}
	}

	exactInput := params.AmountSpecified.Sign() < 0

	feeGrowthGlobal := new(uint256.Int).Set(&pool.FeeGrowthGlobal0X128)
	if !params.ZeroForOne {
		feeGrowthGlobal = new(uint256.Int).Set(&pool.FeeGrowthGlobal1X128)
	}

	state := &swapState{
		amountSpecifiedRemaining: params.AmountSpecified,
		amountCalculated:         newInt256FromUint256(new(uint256.Int), false),
		sqrtPriceX96:             new(uint256.Int).Set(&pool.SqrtPriceX96),
		tick:                     pool.TickCurrent,
		feeGrowthGlobalX128:      feeGrowthGlobal,
		liquidity:                pool.Liquidity.Uint256(),
	}

	buf := NewBuffer(pool.PoolID)
	protocolFeeAccum := new(uint256.Int)

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap start: zeroForOne=%t exactInput=%t amountSpecified=%s price=%s tick=%d",
			params.ZeroForOne, exactInput, params.AmountSpecified.Abs().String(), state.sqrtPriceX96.String(), state.tick)
	}

	for i := 0; i < maxSwapLoopIterations && !state.amountSpecifiedRemaining.IsZero() && state.sqrtPriceX96.Cmp(sqrtPriceLimit) != 0; i++ {
		compressed := Compress(state.tick, pool.TickSpacing)
		if !params.ZeroForOne {
			compressed++
		}
		wordPos, _ := Position(compressed)
		wordKey := TickBitmapKey{PoolID: pool.PoolID, WordPos: wordPos}
		word := buf.GetBitmapWordOrLoad(ticks, wordKey)

		nextTick, initialized := NextInitializedTickWithinOneWord(word, state.tick, pool.TickSpacing, params.ZeroForOne)
		if nextTick < MinTick {
			nextTick = MinTick
		}
		if nextTick > MaxTick {
			nextTick = MaxTick
		}

		sqrtPriceNextTick, err := GetSqrtRatioAtTick(nextTick)
		if err != nil {
			return nil, err
		}

		target := GetSqrtPriceTarget(params.ZeroForOne, sqrtPriceNextTick, sqrtPriceLimit)

		step, err := ComputeSwapStep(state.sqrtPriceX96, target, state.liquidity, state.amountSpecifiedRemaining, pool.PoolID.Fee)
		if err != nil {
			return nil, err
		}

		if exactInput {
			consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
			state.amountSpecifiedRemaining = state.amountSpecifiedRemaining.Add(newInt256FromUint256(consumed, false))
			state.amountCalculated = state.amountCalculated.Add(newInt256FromUint256(step.AmountOut, true))
		} else {
			state.amountSpecifiedRemaining = state.amountSpecifiedRemaining.Add(newInt256FromUint256(step.AmountOut, true))
			consumed := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
			state.amountCalculated = state.amountCalculated.Add(newInt256FromUint256(consumed, false))
		}

		lpFeeAmount := step.FeeAmount
		if pool.ProtocolFeePips > 0 {
			protocolPortion, err := MulDiv(step.FeeAmount, uint256.NewInt(uint64(pool.ProtocolFeePips)), uint256.NewInt(uint64(PipsDenominator)))
			if err != nil {
				return nil, err
			}
			protocolFeeAccum = new(uint256.Int).Add(protocolFeeAccum, protocolPortion)
			lpFeeAmount = new(uint256.Int).Sub(step.FeeAmount, protocolPortion)
		}

		if !state.liquidity.IsZero() {
			feeGrowthDelta, err := MulDiv(lpFeeAmount, Q128, state.liquidity)
			if err == nil {
				state.feeGrowthGlobalX128 = new(uint256.Int).Add(state.feeGrowthGlobalX128, feeGrowthDelta)
			}
		}

		if step.SqrtPriceNext.Cmp(sqrtPriceNextTick) == 0 {
			if initialized {
				tickKey := TickKey{PoolID: pool.PoolID, Tick: nextTick}
				info := buf.GetTickOrLoad(ticks, tickKey)

				var f0, f1 *uint256.Int
				if params.ZeroForOne {
					f0, f1 = state.feeGrowthGlobalX128, &pool.FeeGrowthGlobal1X128
				} else {
					f0, f1 = &pool.FeeGrowthGlobal0X128, state.feeGrowthGlobalX128
				}
				updated, liquidityNet := CrossTick(info, f0, f1)
				buf.SetTick(tickKey, updated)

				if params.ZeroForOne {
					liquidityNet = liquidityNet.Neg()
				}
				newLiquidity, err := uint128{v: state.liquidity}.AddDelta(liquidityNet)
				if err != nil {
					return nil, err
				}
				state.liquidity = newLiquidity.Uint256()
			}
			if params.ZeroForOne {
				state.tick = nextTick - 1
			} else {
				state.tick = nextTick
			}
		} else if step.SqrtPriceNext.Cmp(state.sqrtPriceX96) != 0 {
			tickAtPrice, err := GetTickAtSqrtRatio(step.SqrtPriceNext)
			if err != nil {
				return nil, err
			}
			state.tick = tickAtPrice
		}
		state.sqrtPriceX96 = step.SqrtPriceNext

		if logrus.GetLevel() >= logrus.TraceLevel {
			logrus.Tracef("swap step %d: tick=%d price=%s amountIn=%s amountOut=%s fee=%s liquidity=%s",
				i, state.tick, state.sqrtPriceX96.String(), step.AmountIn.String(), step.AmountOut.String(), step.FeeAmount.String(), state.liquidity.String())
		}
	}

	buf.SetSqrtPriceX96(state.sqrtPriceX96)
	buf.SetTickCurrent(state.tick)
	buf.SetLiquidity(uint128{v: state.liquidity})
	if params.ZeroForOne {
		buf.SetFeeGrowthGlobal0(state.feeGrowthGlobalX128)
	} else {
		buf.SetFeeGrowthGlobal1(state.feeGrowthGlobalX128)
	}

	var amount0, amount1 *int256
	consumed := state.amountSpecifiedRemaining.Add(params.AmountSpecified.Neg())
	if params.ZeroForOne == exactInput {
		amount0 = consumed
		amount1 = state.amountCalculated
	} else {
		amount1 = consumed
		amount0 = state.amountCalculated
	}

	buf.SetPoolReserves0(applySignedDelta(&pool.PoolReserves0, amount0))
	buf.SetPoolReserves1(applySignedDelta(&pool.PoolReserves1, amount1))
	buf.SetSwapVolume0AllTime(new(uint256.Int).Add(&pool.SwapVolume0AllTime, amount0.Abs()))
	buf.SetSwapVolume1AllTime(new(uint256.Int).Add(&pool.SwapVolume1AllTime, amount1.Abs()))

	protocolFeeToken := pool.PoolID.Token1
	if params.ZeroForOne {
		protocolFeeToken = pool.PoolID.Token0
	}

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap complete: amount0=%s amount1=%s newPrice=%s newTick=%d protocolFee=%s",
			amount0.Abs().String(), amount1.Abs().String(), state.sqrtPriceX96.String(), state.tick, protocolFeeAccum.String())
	}

	return &SwapResult{
		Amount0:           amount0,
		Amount1:           amount1,
		ProtocolFeeToken:  protocolFeeToken,
		ProtocolFeeAmount: protocolFeeAccum,
		Buffer:            buf,
	}, nil
}

// Flush persists a pool's committed state through GORM. db.Save upserts on
// the row's primary key (the embedded gorm.Model ID), not on PoolID.
func (p *PoolState) Flush(db *gorm.DB) error {
	return db.Save(p).Error
}

// ActionType enumerates the kinds of state-changing calls recorded
// against a pool, mirrored from the teacher's event log so the same
// shell code can narrate either.
type ActionType string

const (
	ActionCreatePool        ActionType = "CreatePool"
	ActionMint              ActionType = "Mint"
	ActionIncreaseLiquidity ActionType = "IncreaseLiquidity"
	ActionDecreaseLiquidity ActionType = "DecreaseLiquidity"
	ActionBurn              ActionType = "Burn"
	ActionCollect           ActionType = "Collect"
	ActionSwap              ActionType = "Swap"
)

// Record is a lightweight audit row describing one state-changing call,
// timestamped the way the teacher timestamps its replayed chain events.
type Record struct {
	Action    ActionType
	PoolID    PoolId
	Timestamp time.Time
}
