package lag

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Result is one lag estimate and the score that selected it.
type Result struct {
	Lag   int
	Score float64
}

// Estimator bundles search settings. The zero value searches only lag 0.
type Estimator struct {
	// MaxLag bounds the search to [0, MaxLag] (or [-MaxLag, MaxLag]).
	MaxLag int
	// Step is the spacing between tested lags; values < 1 mean 1. With
	// Step > 1 the true lag is only recovered to within Step-1 samples.
	Step int
	// Symmetric also scans negative lags, for signals that can lead
	// either way.
	Symmetric bool
}

// Estimate runs the configured search over ref and target.
func (e Estimator) Estimate(ref, target []float64) Result {
	if e.Symmetric {
		return scan(ref, target, -e.MaxLag, e.MaxLag, e.Step)
	}
	return scan(ref, target, 0, e.MaxLag, e.Step)
}

// Candidates returns how many lags one Estimate call scores.
func (e Estimator) Candidates() int {
	step := e.Step
	if step < 1 {
		step = 1
	}
	if e.MaxLag <= 0 {
		return 1
	}
	n := e.MaxLag/step + 1
	if e.Symmetric {
		n = 2*(e.MaxLag/step) + 1
	}
	return n
}

// Estimate returns the lag in {0, step, 2·step, ...} ⊆ [0, maxLag] that
// maximizes the cross-correlation score of ref against target. Ties resolve
// to the smallest lag. Windows must be non-empty and of equal length.
func Estimate(ref, target []float64, maxLag, step int) int {
	return scan(ref, target, 0, maxLag, step).Lag
}

// EstimateSymmetric is Estimate over [-maxLag, maxLag], scanned from
// -maxLag upwards on the same step grid as the positive side.
func EstimateSymmetric(ref, target []float64, maxLag, step int) int {
	return scan(ref, target, -maxLag, maxLag, step).Lag
}

// Score returns Σ ref[i]·target[i+lag] over the overlapping range.
func Score(ref, target []float64, lag int) float64 {
	n := len(ref)
	if len(target) < n {
		n = len(target)
	}
	if lag >= n || -lag >= n {
		return 0
	}
	if lag >= 0 {
		return vecmath.DotProduct(ref[:n-lag], target[lag:n])
	}
	return vecmath.DotProduct(ref[-lag:n], target[:n+lag])
}

func scan(ref, target []float64, minLag, maxLag, step int) Result {
	n := len(ref)
	if len(target) < n {
		n = len(target)
	}
	if n == 0 {
		return Result{}
	}
	if step < 1 {
		step = 1
	}
	if maxLag > n-1 {
		maxLag = n - 1
	}
	if maxLag < 0 {
		maxLag = 0
	}
	if minLag < -maxLag {
		minLag = -maxLag
	}
	if minLag > 0 {
		minLag = 0
	}

	// Align the negative side on the step grid so 0 is always a candidate.
	first := -((-minLag) / step) * step

	best := Result{Score: math.Inf(-1)}
	for l := first; l <= maxLag; l += step {
		s := Score(ref[:n], target[:n], l)
		if s > best.Score {
			best = Result{Lag: l, Score: s}
		}
	}
	if math.IsInf(best.Score, -1) {
		// All scores NaN: fall back to no correction.
		return Result{}
	}
	return best
}
