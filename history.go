package clmm

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/holiman/uint256"
)

// HistoryBucket aggregates one fixed-width time window of pool activity:
// swap volume and fees generated during the bucket, plus point-in-time
// snapshots of reserves, price and in-range liquidity taken at the
// bucket's start and carried forward until the next swap updates them.
// Amounts use shopspring/decimal rather than uint256 here, matching the
// ambient bookkeeping style the teacher uses throughout its own
// decimal.Decimal-typed CorePool, since history is read by humans and
// dashboards, not by the curve math.
type HistoryBucket struct {
	StartTimestamp time.Time `cbor:"0,keyasint"`
	EndTimestamp   time.Time `cbor:"1,keyasint"`

	SwapVolumeToken0Start        decimal.Decimal `cbor:"2,keyasint"`
	SwapVolumeToken1Start        decimal.Decimal `cbor:"3,keyasint"`
	SwapVolumeToken0DuringBucket decimal.Decimal `cbor:"4,keyasint"`
	SwapVolumeToken1DuringBucket decimal.Decimal `cbor:"5,keyasint"`

	FeeGeneratedToken0Start        decimal.Decimal `cbor:"6,keyasint"`
	FeeGeneratedToken1Start        decimal.Decimal `cbor:"7,keyasint"`
	FeeGeneratedToken0DuringBucket decimal.Decimal `cbor:"8,keyasint"`
	FeeGeneratedToken1DuringBucket decimal.Decimal `cbor:"9,keyasint"`

	ReserveToken0    decimal.Decimal `cbor:"10,keyasint"`
	ReserveToken1    decimal.Decimal `cbor:"11,keyasint"`
	LastSqrtPriceX96 decimal.Decimal `cbor:"12,keyasint"`
	InRangeLiquidity decimal.Decimal `cbor:"13,keyasint"`
	ActiveTick       int32           `cbor:"14,keyasint"`
}

// These caps bound how many buckets each frame retains, evicting the
// oldest bucket once a frame is full. Named after the reference's
// hourly/daily/monthly/yearly frames, with a ten-minute frame added on
// top: the reference's historical types module tracks only the coarser
// four, but 10-minute resolution is needed for any near-real-time chart
// and the distillation this is built from calls for it explicitly.
const (
	TenMinuteBucketCap = 144 // 24h at 10-minute resolution
	HourlyBucketCap    = 72  // 3 days
	DailyBucketCap     = 90  // ~3 months
	MonthlyBucketCap   = 36  // 3 years
	YearlyBucketCap    = 12
)

// PoolHistory holds one pool's rolling aggregation frames.
type PoolHistory struct {
	PoolID PoolId `cbor:"0,keyasint"`

	TenMinuteFrame []HistoryBucket `cbor:"1,keyasint"`
	HourlyFrame    []HistoryBucket `cbor:"2,keyasint"`
	DailyFrame     []HistoryBucket `cbor:"3,keyasint"`
	MonthlyFrame   []HistoryBucket `cbor:"4,keyasint"`
	YearlyFrame    []HistoryBucket `cbor:"5,keyasint"`
}

// bucketStart floors t to the start of the bucket window containing it.
func bucketStart(t time.Time, window time.Duration) time.Time {
	return t.Truncate(window)
}

// appendSample folds one swap's effect into every frame, creating a new
// bucket when the sample's timestamp has moved past the frame's current
// bucket and evicting the oldest bucket once the frame is at capacity.
func appendSample(frame []HistoryBucket, cap int, window time.Duration, t time.Time, volume0, volume1, fee0, fee1 decimal.Decimal, reserve0, reserve1 decimal.Decimal, allTimeVolume0, allTimeVolume1 decimal.Decimal, sqrtPriceX96 *uint256.Int, liquidity decimal.Decimal, tick int32) []HistoryBucket {
	start := bucketStart(t, window)

	if len(frame) == 0 || frame[len(frame)-1].StartTimestamp.Before(start) {
		prevPrice := decimal.NewFromBigInt(sqrtPriceX96.ToBig(), 0)
		prevLiquidity := liquidity
		prevTick := tick
		if len(frame) > 0 {
			last := frame[len(frame)-1]
			prevPrice = last.LastSqrtPriceX96
			prevLiquidity = last.InRangeLiquidity
			prevTick = last.ActiveTick
		}
		frame = append(frame, HistoryBucket{
			StartTimestamp:          start,
			EndTimestamp:            start.Add(window),
			SwapVolumeToken0Start:   allTimeVolume0,
			SwapVolumeToken1Start:   allTimeVolume1,
			FeeGeneratedToken0Start: decimal.Zero,
			FeeGeneratedToken1Start: decimal.Zero,
			ReserveToken0:           reserve0,
			ReserveToken1:           reserve1,
			LastSqrtPriceX96:        prevPrice,
			InRangeLiquidity:        prevLiquidity,
			ActiveTick:              prevTick,
		})
		if len(frame) > cap {
			frame = frame[len(frame)-cap:]
		}
	}

	last := &frame[len(frame)-1]
	last.SwapVolumeToken0DuringBucket = last.SwapVolumeToken0DuringBucket.Add(volume0)
	last.SwapVolumeToken1DuringBucket = last.SwapVolumeToken1DuringBucket.Add(volume1)
	last.FeeGeneratedToken0DuringBucket = last.FeeGeneratedToken0DuringBucket.Add(fee0)
	last.FeeGeneratedToken1DuringBucket = last.FeeGeneratedToken1DuringBucket.Add(fee1)
	last.ReserveToken0 = reserve0
	last.ReserveToken1 = reserve1
	last.LastSqrtPriceX96 = decimal.NewFromBigInt(sqrtPriceX96.ToBig(), 0)
	last.InRangeLiquidity = liquidity
	last.ActiveTick = tick

	return frame
}

// RecordSwap folds a completed swap into every frame of the pool's
// history, supplying the bucket's point-in-time snapshot fields from the
// pool's post-swap state. reserve0/reserve1 and the all-time swap volume
// are read directly off pool rather than assumed, since a pool with real
// custody always knows its own balances; the all-time volume passed on as
// a new bucket's start excludes this swap's own volume0/volume1.
func (h *PoolHistory) RecordSwap(t time.Time, volume0, volume1, fee0, fee1 decimal.Decimal, pool *PoolState) {
	reserve0 := decimal.NewFromBigInt(pool.PoolReserves0.ToBig(), 0)
	reserve1 := decimal.NewFromBigInt(pool.PoolReserves1.ToBig(), 0)
	allTimeVolume0 := decimal.NewFromBigInt(pool.SwapVolume0AllTime.ToBig(), 0).Sub(volume0)
	allTimeVolume1 := decimal.NewFromBigInt(pool.SwapVolume1AllTime.ToBig(), 0).Sub(volume1)
	liquidity := decimal.NewFromBigInt(pool.Liquidity.Uint256().ToBig(), 0)
	sqrtPrice := pool.SqrtPriceX96

	h.TenMinuteFrame = appendSample(h.TenMinuteFrame, TenMinuteBucketCap, 10*time.Minute, t, volume0, volume1, fee0, fee1, reserve0, reserve1, allTimeVolume0, allTimeVolume1, &sqrtPrice, liquidity, pool.TickCurrent)
	h.HourlyFrame = appendSample(h.HourlyFrame, HourlyBucketCap, time.Hour, t, volume0, volume1, fee0, fee1, reserve0, reserve1, allTimeVolume0, allTimeVolume1, &sqrtPrice, liquidity, pool.TickCurrent)
	h.DailyFrame = appendSample(h.DailyFrame, DailyBucketCap, 24*time.Hour, t, volume0, volume1, fee0, fee1, reserve0, reserve1, allTimeVolume0, allTimeVolume1, &sqrtPrice, liquidity, pool.TickCurrent)
	h.MonthlyFrame = appendSample(h.MonthlyFrame, MonthlyBucketCap, 30*24*time.Hour, t, volume0, volume1, fee0, fee1, reserve0, reserve1, allTimeVolume0, allTimeVolume1, &sqrtPrice, liquidity, pool.TickCurrent)
	h.YearlyFrame = appendSample(h.YearlyFrame, YearlyBucketCap, 365*24*time.Hour, t, volume0, volume1, fee0, fee1, reserve0, reserve1, allTimeVolume0, allTimeVolume1, &sqrtPrice, liquidity, pool.TickCurrent)
}
