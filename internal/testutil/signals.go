package testutil

import (
	"math"
	"math/rand"
)

// DeterministicNoise returns uniform white noise in [-amplitude, amplitude)
// from a fixed seed. Its autocorrelation has a single sharp peak at lag 0,
// which makes it the default test signal for lag recovery.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * (2*rng.Float64() - 1)
	}
	return out
}

// Impulse returns length zeros with a single 1 at pos. An out-of-range pos
// yields silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC returns length copies of value.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// GaussianPulse generates exp(-((i-center)/width)^2 / 2), a smooth pulse
// whose cross-correlation has a single broad peak.
func GaussianPulse(length int, center, width float64) []float64 {
	out := make([]float64, length)
	if width <= 0 {
		return out
	}
	for i := range out {
		u := (float64(i) - center) / width
		out[i] = math.Exp(-0.5 * u * u)
	}
	return out
}

// Delayed returns x shifted later by d samples, zero-filled at the start
// and truncated to len(x).
func Delayed(x []float64, d int) []float64 {
	out := make([]float64, len(x))
	if d < 0 {
		d = 0
	}
	if d < len(x) {
		copy(out[d:], x[:len(x)-d])
	}
	return out
}
