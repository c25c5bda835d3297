package clmm

import "github.com/holiman/uint256"

// TickReader is the read side of the tick and bitmap tables, satisfied by
// the store. ModifyLiquidity and Swap only ever read through this
// interface; every write they produce lands in a Buffer instead.
type TickReader interface {
	GetTick(key TickKey) (TickInfo, bool)
	GetBitmapWord(key TickBitmapKey) (BitmapWord, bool)
}

// PositionReader is the read side of the position table.
type PositionReader interface {
	GetPosition(key PositionKey) (PositionInfo, bool)
}

// Buffer accumulates the writes produced by one ModifyLiquidity or Swap
// call. Nothing observes a pending write until ApplyTo applies the buffer
// to the store, which is what lets a caller validate a slippage bound
// against the result and simply discard the buffer on failure instead of
// needing to roll back partial mutations.
type Buffer struct {
	PoolID PoolId

	poolUpdated          bool
	sqrtPriceX96         *uint256.Int
	tickCurrent          *int32
	liquidity            *uint128
	feeGrowthGlobal0X128 *uint256.Int
	feeGrowthGlobal1X128 *uint256.Int

	poolReserves0      *uint256.Int
	poolReserves1      *uint256.Int
	swapVolume0AllTime *uint256.Int
	swapVolume1AllTime *uint256.Int

	ticks       map[TickKey]TickInfo
	clearedTick map[TickKey]bool

	bitmapWords map[TickBitmapKey]*uint256.Int

	positions map[PositionKey]PositionInfo
}

// NewBuffer starts an empty write-set scoped to one pool.
func NewBuffer(poolID PoolId) *Buffer {
	return &Buffer{
		PoolID:      poolID,
		ticks:       make(map[TickKey]TickInfo),
		clearedTick: make(map[TickKey]bool),
		bitmapWords: make(map[TickBitmapKey]*uint256.Int),
		positions:   make(map[PositionKey]PositionInfo),
	}
}

func (b *Buffer) SetSqrtPriceX96(v *uint256.Int) {
	b.poolUpdated = true
	b.sqrtPriceX96 = v
}

func (b *Buffer) SetTickCurrent(v int32) {
	b.poolUpdated = true
	b.tickCurrent = &v
}

func (b *Buffer) SetLiquidity(v uint128) {
	b.poolUpdated = true
	b.liquidity = &v
}

func (b *Buffer) SetFeeGrowthGlobal0(v *uint256.Int) {
	b.poolUpdated = true
	b.feeGrowthGlobal0X128 = v
}

func (b *Buffer) SetFeeGrowthGlobal1(v *uint256.Int) {
	b.poolUpdated = true
	b.feeGrowthGlobal1X128 = v
}

func (b *Buffer) SetPoolReserves0(v *uint256.Int) {
	b.poolUpdated = true
	b.poolReserves0 = v
}

func (b *Buffer) SetPoolReserves1(v *uint256.Int) {
	b.poolUpdated = true
	b.poolReserves1 = v
}

func (b *Buffer) SetSwapVolume0AllTime(v *uint256.Int) {
	b.poolUpdated = true
	b.swapVolume0AllTime = v
}

func (b *Buffer) SetSwapVolume1AllTime(v *uint256.Int) {
	b.poolUpdated = true
	b.swapVolume1AllTime = v
}

func (b *Buffer) SetTick(key TickKey, info TickInfo) {
	b.ticks[key] = info
	delete(b.clearedTick, key)
}

// ClearTick marks a tick as deleted (its liquidity_gross dropped back to
// zero, so there is nothing left to remember about it).
func (b *Buffer) ClearTick(key TickKey) {
	delete(b.ticks, key)
	b.clearedTick[key] = true
}

func (b *Buffer) SetBitmapWord(key TickBitmapKey, word *uint256.Int) {
	b.bitmapWords[key] = word
}

func (b *Buffer) SetPosition(key PositionKey, info PositionInfo) {
	b.positions[key] = info
}

// GetTickOrLoad reads a tick through the buffer's own pending writes
// first, falling back to the store so repeated reads within one swap
// loop see their own uncommitted mutations.
func (b *Buffer) GetTickOrLoad(store TickReader, key TickKey) TickInfo {
	if info, ok := b.ticks[key]; ok {
		return info
	}
	if b.clearedTick[key] {
		return TickInfo{}
	}
	info, _ := store.GetTick(key)
	return info
}

// GetBitmapWordOrLoad reads a bitmap word through pending writes first.
func (b *Buffer) GetBitmapWordOrLoad(store TickReader, key TickBitmapKey) *uint256.Int {
	if word, ok := b.bitmapWords[key]; ok {
		return new(uint256.Int).Set(word)
	}
	word, ok := store.GetBitmapWord(key)
	if !ok {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(&word.Word)
}

// GetPositionOrLoad reads a position through pending writes first.
func (b *Buffer) GetPositionOrLoad(store PositionReader, key PositionKey) PositionInfo {
	if info, ok := b.positions[key]; ok {
		return info
	}
	info, _ := store.GetPosition(key)
	return info
}

// TickWrites returns every tick write staged in the buffer, and
// TickClears returns every tick key staged for deletion.
func (b *Buffer) TickWrites() map[TickKey]TickInfo { return b.ticks }
func (b *Buffer) TickClears() []TickKey {
	keys := make([]TickKey, 0, len(b.clearedTick))
	for k := range b.clearedTick {
		keys = append(keys, k)
	}
	return keys
}

// BitmapWrites returns every bitmap word write staged in the buffer.
func (b *Buffer) BitmapWrites() map[TickBitmapKey]*uint256.Int { return b.bitmapWords }

// PositionWrites returns every position write staged in the buffer.
func (b *Buffer) PositionWrites() map[PositionKey]PositionInfo { return b.positions }

// ApplyTo commits the buffer's writes to pool and the given stores. It is
// the only place a Buffer's contents take effect; everything before this
// call is speculative.
func (b *Buffer) ApplyTo(pool *PoolState, ticks TickStore, positions PositionStore) error {
	if b.poolUpdated {
		if b.sqrtPriceX96 != nil {
			pool.SqrtPriceX96 = *b.sqrtPriceX96
		}
		if b.tickCurrent != nil {
			pool.TickCurrent = *b.tickCurrent
		}
		if b.liquidity != nil {
			pool.Liquidity = *b.liquidity
		}
		if b.feeGrowthGlobal0X128 != nil {
			pool.FeeGrowthGlobal0X128 = *b.feeGrowthGlobal0X128
		}
		if b.feeGrowthGlobal1X128 != nil {
			pool.FeeGrowthGlobal1X128 = *b.feeGrowthGlobal1X128
		}
		if b.poolReserves0 != nil {
			pool.PoolReserves0 = *b.poolReserves0
		}
		if b.poolReserves1 != nil {
			pool.PoolReserves1 = *b.poolReserves1
		}
		if b.swapVolume0AllTime != nil {
			pool.SwapVolume0AllTime = *b.swapVolume0AllTime
		}
		if b.swapVolume1AllTime != nil {
			pool.SwapVolume1AllTime = *b.swapVolume1AllTime
		}
	}
	for key, info := range b.ticks {
		ticks.PutTick(key, info)
	}
	for key := range b.clearedTick {
		ticks.DeleteTick(key)
	}
	for key, word := range b.bitmapWords {
		ticks.PutBitmapWord(key, BitmapWord{Word: *word})
	}
	for key, info := range b.positions {
		positions.PutPosition(key, info)
	}
	return nil
}

// TickStore is the write side of the tick and bitmap tables.
type TickStore interface {
	TickReader
	PutTick(key TickKey, info TickInfo)
	DeleteTick(key TickKey)
	PutBitmapWord(key TickBitmapKey, word BitmapWord)
}

// PositionStore is the write side of the position table.
type PositionStore interface {
	PositionReader
	PutPosition(key PositionKey, info PositionInfo)
}
