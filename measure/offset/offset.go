package offset

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-autodelay/dsp/lag"
)

// Errors returned by Measure.
var (
	ErrEmptyInput        = errors.New("offset: input is empty")
	ErrInvalidSampleRate = errors.New("offset: sample rate must be positive")
	ErrInvalidMaxLag     = errors.New("offset: max lag must be >= 0")
)

// Result describes the measured offset. A positive lag means target trails
// reference: target[i+Lag] ≈ reference[i].
type Result struct {
	Lag         int     // integer lag of the correlation peak
	Precise     float64 // Lag refined by parabolic interpolation
	Ms          float64 // Precise in milliseconds
	Peak        float64 // unnormalized correlation at Lag
	Correlation float64 // normalized correlation over the overlap, in [-1, 1]
}

// Meter measures offsets at a fixed sample rate.
type Meter struct {
	SampleRate float64
}

// NewMeter creates a meter for the given sample rate.
func NewMeter(sampleRate float64) *Meter {
	return &Meter{SampleRate: sampleRate}
}

// Measure finds the lag in [-maxLag, maxLag] with the largest correlation
// between reference and target. maxLag is capped to the shorter input.
func (m *Meter) Measure(reference, target []float64, maxLag int) (Result, error) {
	if m.SampleRate <= 0 || math.IsNaN(m.SampleRate) {
		return Result{}, ErrInvalidSampleRate
	}
	if len(reference) == 0 || len(target) == 0 {
		return Result{}, ErrEmptyInput
	}
	if maxLag < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidMaxLag, maxLag)
	}

	corr, err := crossCorrelate(reference, target)
	if err != nil {
		return Result{}, err
	}
	size := len(corr)
	at := func(l int) float64 {
		if l < 0 {
			return corr[size+l]
		}
		return corr[l]
	}

	maxLag = min(maxLag, len(reference)-1, len(target)-1)
	best, bestVal := 0, math.Inf(-1)
	for l := -maxLag; l <= maxLag; l++ {
		if v := at(l); v > bestVal {
			best, bestVal = l, v
		}
	}

	res := Result{Lag: best, Precise: float64(best)}
	if best > -maxLag && best < maxLag {
		res.Precise += parabolicOffset(at(best-1), at(best), at(best+1))
	}
	res.Ms = res.Precise * 1000 / m.SampleRate
	res.Peak = lag.Score(reference, target, best)
	res.Correlation = normalized(reference, target, best, res.Peak)
	return res, nil
}

// crossCorrelate returns the circular correlation r[k] = Σ target[i+k]·ref[i]
// over a zero-padded FFT size large enough to hold every linear lag. Negative
// lags sit at the end.
func crossCorrelate(ref, target []float64) ([]float64, error) {
	size := nextPowerOf2(len(ref) + len(target) - 1)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("offset: failed to create FFT plan: %w", err)
	}

	a := make([]complex128, size)
	b := make([]complex128, size)
	for i, v := range target {
		a[i] = complex(v, 0)
	}
	for i, v := range ref {
		b[i] = complex(v, 0)
	}

	af := make([]complex128, size)
	bf := make([]complex128, size)
	if err := plan.Forward(af, a); err != nil {
		return nil, fmt.Errorf("offset: forward FFT failed: %w", err)
	}
	if err := plan.Forward(bf, b); err != nil {
		return nil, fmt.Errorf("offset: forward FFT failed: %w", err)
	}
	for i := range af {
		bv := bf[i]
		af[i] *= complex(real(bv), -imag(bv))
	}
	if err := plan.Inverse(a, af); err != nil {
		return nil, fmt.Errorf("offset: inverse FFT failed: %w", err)
	}

	out := make([]float64, size)
	for i, v := range a {
		out[i] = real(v)
	}
	return out, nil
}

// parabolicOffset returns the vertex of the parabola through three equally
// spaced points, relative to the middle one, in [-0.5, 0.5].
func parabolicOffset(left, center, right float64) float64 {
	den := left - 2*center + right
	if den >= 0 {
		return 0
	}
	d := 0.5 * (left - right) / den
	return math.Max(-0.5, math.Min(0.5, d))
}

// normalized divides peak by the energies of the two overlapping segments.
func normalized(ref, target []float64, l int, peak float64) float64 {
	n := min(len(ref), len(target))
	var r, t []float64
	if l >= 0 {
		r, t = ref[:n-l], target[l:n]
	} else {
		r, t = ref[-l:n], target[:n+l]
	}
	e := vecmath.DotProduct(r, r) * vecmath.DotProduct(t, t)
	if e <= 0 {
		return 0
	}
	return peak / math.Sqrt(e)
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
