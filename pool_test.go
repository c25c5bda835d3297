package clmm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTicks is a minimal in-memory TickReader/TickStore used purely for
// tests, standing in for Store without needing a real sqlite file.
type memTicks struct {
	ticks   map[TickKey]TickInfo
	bitmaps map[TickBitmapKey]BitmapWord
}

func newMemTicks() *memTicks {
	return &memTicks{ticks: map[TickKey]TickInfo{}, bitmaps: map[TickBitmapKey]BitmapWord{}}
}

func (m *memTicks) GetTick(key TickKey) (TickInfo, bool) {
	v, ok := m.ticks[key]
	return v, ok
}
func (m *memTicks) PutTick(key TickKey, info TickInfo) { m.ticks[key] = info }
func (m *memTicks) DeleteTick(key TickKey)             { delete(m.ticks, key) }
func (m *memTicks) GetBitmapWord(key TickBitmapKey) (BitmapWord, bool) {
	v, ok := m.bitmaps[key]
	return v, ok
}
func (m *memTicks) PutBitmapWord(key TickBitmapKey, word BitmapWord) { m.bitmaps[key] = word }

type memPositions struct {
	positions map[PositionKey]PositionInfo
}

func newMemPositions() *memPositions { return &memPositions{positions: map[PositionKey]PositionInfo{}} }

func (m *memPositions) GetPosition(key PositionKey) (PositionInfo, bool) {
	v, ok := m.positions[key]
	return v, ok
}
func (m *memPositions) PutPosition(key PositionKey, info PositionInfo) { m.positions[key] = info }

var (
	tokenA = common.HexToAddress("0x0000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x0000000000000000000000000000000000000002")
	owner  = common.HexToAddress("0x00000000000000000000000000000000000099")
)

func TestCreatePool_Scenario1(t *testing.T) {
	sqrtPrice := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	pool, _, err := CreatePool(tokenA, tokenB, 3000, sqrtPrice)
	require.NoError(t, err)

	assert.Equal(t, int32(0), pool.TickCurrent)
	assert.Equal(t, int32(60), pool.TickSpacing)

	maxUint128Val := maxUint128
	numTicks := uint256.NewInt(2*887220/60 + 1)
	want := new(uint256.Int).Div(maxUint128Val, numTicks)
	assert.Equal(t, want.String(), pool.MaxLiquidityPerTick.Uint256().String())
}

func mintFullRange(t *testing.T, pool *PoolState, ticks *memTicks, positions *memPositions, amount *uint256.Int) *ModifyLiquidityResult {
	t.Helper()
	res, err := ModifyLiquidity(pool, ticks, positions, ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -887220,
		TickUpper:      887220,
		LiquidityDelta: newInt128FromUint256(amount),
	})
	require.NoError(t, err)
	require.NoError(t, res.Buffer.ApplyTo(pool, ticks, positions))
	return res
}

func newInt128FromUint256(v *uint256.Int) int128 {
	return newInt128(v, false)
}

func TestMintAndSwap_Scenario2And3(t *testing.T) {
	sqrtPrice := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	pool, _, err := CreatePool(tokenA, tokenB, 3000, sqrtPrice)
	require.NoError(t, err)

	ticks := newMemTicks()
	positions := newMemPositions()

	amount := uint256.MustFromDecimal("200000000000000000000") // 2e20
	mintFullRange(t, pool, ticks, positions, amount)

	assert.True(t, pool.Liquidity.Cmp(uint128{v: new(uint256.Int)}) > 0)

	amountIn := uint256.MustFromDecimal("1000000000000000000") // 1e18
	limit := new(uint256.Int).Add(MinSqrtRatio, uint256.NewInt(1))

	swapRes, err := Swap(pool, ticks, SwapParams{
		ZeroForOne:        true,
		AmountSpecified:   newInt256FromUint256(amountIn, true),
		SqrtPriceLimitX96: limit,
	})
	require.NoError(t, err)

	assert.Equal(t, amountIn.String(), swapRes.Amount0.Abs().String())
	// amount1 is owed to the caller (negative from the pool's perspective).
	assert.Equal(t, -1, swapRes.Amount1.Sign())
	assert.Equal(t, "992054607780215625", swapRes.Amount1.Abs().String())
	require.NoError(t, swapRes.Buffer.ApplyTo(pool, ticks, positions))
}

func TestSwapExactOut_Scenario4(t *testing.T) {
	sqrtPrice := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	pool, _, err := CreatePool(tokenA, tokenB, 3000, sqrtPrice)
	require.NoError(t, err)

	ticks := newMemTicks()
	positions := newMemPositions()

	amount := uint256.MustFromDecimal("200000000000000000000") // 2e20
	mintFullRange(t, pool, ticks, positions, amount)

	// Exact-output zeroForOne swap on the freshly seeded pool: token0 in,
	// exactly 1e18 of token1 out.
	amountOut := uint256.MustFromDecimal("1000000000000000000") // 1e18
	limit := new(uint256.Int).Add(MinSqrtRatio, uint256.NewInt(1))
	reverseRes, err := Swap(pool, ticks, SwapParams{
		ZeroForOne:        true,
		AmountSpecified:   newInt256FromUint256(amountOut, false),
		SqrtPriceLimitX96: limit,
	})
	require.NoError(t, err)

	assert.Equal(t, "1008049273448486163", reverseRes.Amount0.Abs().String())
	assert.Equal(t, amountOut.String(), reverseRes.Amount1.Abs().String())
}

func TestMultiHopSwap_Scenario5(t *testing.T) {
	tokenC := common.HexToAddress("0x0000000000000000000000000000000000000003")
	tokenD := common.HexToAddress("0x0000000000000000000000000000000000000004")

	sqrtPrice := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	amount := uint256.MustFromDecimal("200000000000000000000") // 2e20

	poolAB, _, err := CreatePool(tokenA, tokenB, 3000, sqrtPrice)
	require.NoError(t, err)
	ticksAB := newMemTicks()
	positionsAB := newMemPositions()
	mintFullRange(t, poolAB, ticksAB, positionsAB, amount)

	poolBC, _, err := CreatePool(tokenB, tokenC, 3000, sqrtPrice)
	require.NoError(t, err)
	ticksBC := newMemTicks()
	positionsBC := newMemPositions()
	mintFullRange(t, poolBC, ticksBC, positionsBC, amount)

	poolCD, _, err := CreatePool(tokenC, tokenD, 3000, sqrtPrice)
	require.NoError(t, err)
	ticksCD := newMemTicks()
	positionsCD := newMemPositions()
	mintFullRange(t, poolCD, ticksCD, positionsCD, amount)

	lookup := &memLookup{
		pools: map[PoolId]*PoolState{
			poolAB.PoolID: poolAB,
			poolBC.PoolID: poolBC,
			poolCD.PoolID: poolCD,
		},
		ticks: map[PoolId]*memTicks{
			poolAB.PoolID: ticksAB,
			poolBC.PoolID: ticksBC,
			poolCD.PoolID: ticksCD,
		},
	}

	hops := []PathKey{
		{IntermediaryToken: tokenB, Fee: 3000},
		{IntermediaryToken: tokenC, Fee: 3000},
		{IntermediaryToken: tokenD, Fee: 3000},
	}
	amountIn := uint256.MustFromDecimal("1000000000000000000") // 1e18
	amountOut, err := QuoteExactInputMultiHop(lookup, tokenA, hops, amountIn)
	require.NoError(t, err)
	assert.Equal(t, "976467664490096191", amountOut.String())
}

// memLookup is a minimal PoolLookup used for the multi-hop test, routing
// each pool's tick/bitmap reads to its own memTicks instance.
type memLookup struct {
	pools map[PoolId]*PoolState
	ticks map[PoolId]*memTicks
}

func (m *memLookup) GetPool(id PoolId) (*PoolState, bool) {
	p, ok := m.pools[id]
	return p, ok
}

func (m *memLookup) GetTick(key TickKey) (TickInfo, bool) {
	return m.ticks[key.PoolID].GetTick(key)
}

func (m *memLookup) GetBitmapWord(key TickBitmapKey) (BitmapWord, bool) {
	return m.ticks[key.PoolID].GetBitmapWord(key)
}

func TestMintSwapCollect_Scenario6(t *testing.T) {
	sqrtPrice := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	pool, _, err := CreatePool(tokenA, tokenB, 3000, sqrtPrice)
	require.NoError(t, err)

	ticks := newMemTicks()
	positions := newMemPositions()

	amount := uint256.MustFromDecimal("200000000000000000000") // 2e20
	mintFullRange(t, pool, ticks, positions, amount)

	swapAmount := uint256.MustFromDecimal("10000000000000000000") // 1e19
	lowerLimit := new(uint256.Int).Add(MinSqrtRatio, uint256.NewInt(1))
	upperLimit := new(uint256.Int).Sub(MaxSqrtRatio, uint256.NewInt(1))

	for i := 0; i < 10; i++ {
		zeroForOne := i%2 == 0
		limit := lowerLimit
		if !zeroForOne {
			limit = upperLimit
		}
		swapRes, err := Swap(pool, ticks, SwapParams{
			ZeroForOne:        zeroForOne,
			AmountSpecified:   newInt256FromUint256(swapAmount, true),
			SqrtPriceLimitX96: limit,
		})
		require.NoError(t, err)
		require.NoError(t, swapRes.Buffer.ApplyTo(pool, ticks, positions))
	}

	posKey := PositionKey{Owner: owner, PoolID: pool.PoolID, TickLower: -887220, TickUpper: 887220}
	posInfo, ok := positions.GetPosition(posKey)
	require.True(t, ok)

	lowerInfo, _ := ticks.GetTick(TickKey{PoolID: pool.PoolID, Tick: -887220})
	upperInfo, _ := ticks.GetTick(TickKey{PoolID: pool.PoolID, Tick: 887220})
	feeGrowthInside0, feeGrowthInside1 := GetFeeGrowthInside(lowerInfo, upperInfo, -887220, 887220, pool.TickCurrent,
		&pool.FeeGrowthGlobal0X128, &pool.FeeGrowthGlobal1X128)

	_, owed0, owed1, err := UpdatePosition(posInfo, int128FromInt64(0), feeGrowthInside0, feeGrowthInside1)
	require.NoError(t, err)

	owedCandidates := []string{"150000000000000003", "150000000000000004"}
	assert.Contains(t, owedCandidates, owed0.Uint256().String())
	assert.Contains(t, owedCandidates, owed1.Uint256().String())
}

func TestModifyLiquidity_RejectsUnalignedTicks(t *testing.T) {
	sqrtPrice := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	pool, _, err := CreatePool(tokenA, tokenB, 3000, sqrtPrice)
	require.NoError(t, err)

	ticks := newMemTicks()
	positions := newMemPositions()

	_, err = ModifyLiquidity(pool, ticks, positions, ModifyLiquidityParams{
		Owner:          owner,
		TickLower:      -100,
		TickUpper:      100,
		LiquidityDelta: int128FromInt64(1000),
	})
	assert.ErrorIs(t, err, ErrTickNotAlignedWithTickSpacing)
}

func TestResolvePath_RejectsDuplicatePool(t *testing.T) {
	tokenC := common.HexToAddress("0x0000000000000000000000000000000000000003")
	hops := []PathKey{
		{IntermediaryToken: tokenB, Fee: 3000},
		{IntermediaryToken: tokenA, Fee: 3000},
	}
	_, err := ResolvePath(tokenA, hops)
	assert.ErrorIs(t, err, ErrPathDuplicatePool)
	_ = tokenC
}
