package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo[T constraints.Integer](n T) T {
	if n <= 1 {
		return 1
	}
	return T(1) << bits.Len64(uint64(n-1))
}

// Log2Ceil returns ceil(log2(n)) for n >= 1.
func Log2Ceil[T constraints.Integer](n T) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(uint64(n - 1))
}

// Max returns the larger of a and b.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
