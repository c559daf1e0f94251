package utils

import (
	"github.com/chewxy/math32"
)

// EnsurePowerOfTwo rounds v up to the nearest power of two.
// Values <= 1 stay 1.
func EnsurePowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// MipLevelCount returns the full mip chain length for a w x h bitmap:
// floor(log2(max(w,h))) + 1.
func MipLevelCount(w, h int) int {
	m := w
	if h > m {
		m = h
	}
	return int(math32.Floor(math32.Log2(float32(m)))) + 1
}

// MipDimension halves d for the given mip level, clamping at 1.
func MipDimension(d int, level int) int {
	d >>= uint(level)
	if d < 1 {
		return 1
	}
	return d
}
