// Package arith provides saturating and checked arithmetic over the
// unsigned integer types the ledger uses for balances and ids. Every
// balance-affecting operation goes through these helpers so overflow can
// never mint or destroy value silently.
package arith

// Unsigned covers the ledger's numeric storage types.
type Unsigned interface {
	~uint32 | ~uint64
}

// SaturatingAdd returns a+b, clamped at the maximum value of T.
func SaturatingAdd[T Unsigned](a, b T) T {
	sum := a + b
	if sum < a {
		return ^T(0)
	}
	return sum
}

// SaturatingSub returns a-b, floored at zero.
func SaturatingSub[T Unsigned](a, b T) T {
	if b > a {
		return 0
	}
	return a - b
}

// CheckedAdd returns a+b and true, or zero and false on overflow.
func CheckedAdd[T Unsigned](a, b T) (T, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// CheckedSub returns a-b and true, or zero and false on underflow.
func CheckedSub[T Unsigned](a, b T) (T, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// Min returns the smaller of a and b.
func Min[T Unsigned](a, b T) T {
	if a < b {
		return a
	}
	return b
}
