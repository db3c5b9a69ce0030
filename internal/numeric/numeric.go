package numeric

import "golang.org/x/exp/constraints"

// Clamp limits v to the closed interval [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Unit clamps v to [0, 1]. NaN maps to 0.
func Unit(v float64) float64 {
	if v != v {
		return 0
	}
	return Clamp(v, 0, 1)
}
