package utils

import "math/bits"

// FieldMask returns the mask of bits [hi:lo] shifted down to bit 0.
func FieldMask(hi, lo uint) uint32 {
	if hi < lo {
		return 0
	}
	return uint32((uint64(1) << (hi - lo + 1)) - 1)
}

// GetField extracts bits [hi:lo] from word.
func GetField(word uint32, hi, lo uint) uint32 {
	return (word >> lo) & FieldMask(hi, lo)
}

// SetField clears bits [hi:lo] of word and stores val there.
// Bits of val above the field width are dropped.
func SetField(word uint32, hi, lo uint, val uint32) uint32 {
	var mask = FieldMask(hi, lo)
	return (word &^ (mask << lo)) | ((val & mask) << lo)
}

// PopCount .
func PopCount(v uint32) int {
	return bits.OnesCount32(v)
}

// Covers reports whether every bit set in cur is also set in next,
// i.e. next is reachable from cur by only setting bits.
func Covers(cur, next uint32) bool {
	return cur&^next == 0
}
