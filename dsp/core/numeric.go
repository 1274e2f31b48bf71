package core

import "math"

// denormalFloor is the magnitude below which feedback state is flushed.
const denormalFloor = 1e-30

// Clamp bounds x to the inclusive range between lo and hi, in either order.
// NaN passes through.
func Clamp(x, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	default:
		return x
	}
}

// ClampInt is Clamp for indices.
func ClampInt(x, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	return min(max(x, lo), hi)
}

// FlushDenormals returns 0 for values too small to matter in a recursive
// filter, and x otherwise.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// FractionalPart returns x - floor(x), always in [0, 1) for finite x.
func FractionalPart(x float64) float64 {
	f := x - math.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}
