package clmm

import "github.com/holiman/uint256"

// BitmapWord is the 256-bit word tracking which of the 256 ticks at a
// given word position are initialized.
type BitmapWord struct {
	Word uint256.Int `cbor:"0,keyasint"`
}

// TickBitmapKey addresses one word of a pool's tick bitmap.
type TickBitmapKey struct {
	PoolID  PoolId `cbor:"0,keyasint"`
	WordPos int16  `cbor:"1,keyasint"`
}

// Compress maps a tick to its compressed coordinate, i.e. tick/tickSpacing
// rounded toward negative infinity (so -25 compressed at spacing 10 is -3,
// not -2).
func Compress(tick, tickSpacing int32) int32 {
	q := tick / tickSpacing
	if tick%tickSpacing != 0 && (tick < 0) != (tickSpacing < 0) {
		q--
	}
	return q
}

// Position splits a compressed tick into the word it lives in and its bit
// offset within that word.
func Position(compressedTick int32) (wordPos int16, bitPos uint8) {
	return int16(compressedTick >> 8), uint8(uint32(compressedTick) & 0xff)
}

// FlipTick toggles the initialized bit for tick in the given bitmap word,
// returning the updated word. tick must already be aligned to tickSpacing.
func FlipTick(word *uint256.Int, tick, tickSpacing int32) (*uint256.Int, error) {
	if tick%tickSpacing != 0 {
		return nil, ErrTickNotAlignedWithTickSpacing
	}
	_, bitPos := Position(Compress(tick, tickSpacing))
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	return new(uint256.Int).Xor(word, mask), nil
}

// NextInitializedTickWithinOneWord finds the next initialized tick within
// one bitmap word, scanning toward negative infinity from tick (compressed)
// when lte is true (used by a zeroForOne swap) and toward positive
// infinity from compressed+1 otherwise. word must be the word holding
// compressed when lte is true and the word holding compressed+1 when it
// is false. It returns the tick found and whether it is itself
// initialized; when no initialized tick exists in the word, it returns the
// boundary tick of that word with initialized=false, letting the caller
// cross into the next word.
func NextInitializedTickWithinOneWord(word *uint256.Int, tick, tickSpacing int32, lte bool) (next int32, initialized bool) {
	compressed := Compress(tick, tickSpacing)

	if lte {
		wordPos, bitPos := Position(compressed)
		// mask covers every bit at or below bitPos, i.e. every tick in the
		// word at or below the one we're scanning from.
		mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)+1), uint256.NewInt(1))
		masked := new(uint256.Int).And(word, mask)
		if masked.IsZero() {
			return (int32(wordPos) * 256) * tickSpacing, false
		}
		msb := MSB(masked)
		return (int32(wordPos)*256 + int32(msb)) * tickSpacing, true
	}

	nextCompressed := compressed + 1
	wordPos, bitPos := Position(nextCompressed)
	// mask covers every bit at or above bitPos.
	mask := new(uint256.Int).Not(
		new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)), uint256.NewInt(1)),
	)
	masked := new(uint256.Int).And(word, mask)
	if masked.IsZero() {
		return (int32(wordPos)*256 + 255) * tickSpacing, false
	}
	lsb := LSB(masked)
	return (int32(wordPos)*256 + int32(lsb)) * tickSpacing, true
}
