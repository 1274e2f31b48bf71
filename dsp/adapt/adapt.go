package adapt

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autodelay/dsp/core"
)

// Step performs one controller update and returns the new delay.
//
// Inside the deadband the current delay is returned unchanged, bit for bit.
// Otherwise the delay moves rate·(estimatedLag − currentDelay) towards the
// estimate and is clamped to [0, maxDelay]. A NaN result keeps currentDelay.
func Step(estimatedLag, currentDelay, learningRate, tolerance, maxDelay float64) float64 {
	diff := estimatedLag - currentDelay
	if math.Abs(diff) <= tolerance {
		return currentDelay
	}

	next := currentDelay + learningRate*diff
	if math.IsNaN(next) {
		return currentDelay
	}
	return core.Clamp(next, 0, max(maxDelay, 0))
}

// StepsToConverge returns how many Step calls with a fixed estimate bring an
// initial discrepancy delta0 within tolerance:
//
//	⌈log(tolerance/|delta0|) / log(1 − rate)⌉
//
// It returns 0 when delta0 is already inside the deadband, 1 for rate >= 1
// and -1 when the controller never converges (rate <= 0 or tolerance <= 0).
func StepsToConverge(delta0, tolerance, rate float64) int {
	d := math.Abs(delta0)
	if d <= tolerance {
		return 0
	}
	if rate <= 0 || tolerance <= 0 {
		return -1
	}
	if rate >= 1 {
		return 1
	}
	return int(math.Ceil(math.Log(tolerance/d) / math.Log(1-rate)))
}

// Controller keeps the current delay between updates.
type Controller struct {
	tolerance float64
	maxDelay  float64
	delay     float64
}

// NewController creates a controller starting at zero delay.
func NewController(tolerance, maxDelay float64) (*Controller, error) {
	if tolerance < 0 || math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
		return nil, fmt.Errorf("adapt: tolerance must be finite and >= 0: %f", tolerance)
	}
	if maxDelay < 0 || math.IsNaN(maxDelay) || math.IsInf(maxDelay, 0) {
		return nil, fmt.Errorf("adapt: max delay must be finite and >= 0: %f", maxDelay)
	}
	return &Controller{tolerance: tolerance, maxDelay: maxDelay}, nil
}

// Update feeds one lag estimate and reports the new delay and whether it
// changed.
func (c *Controller) Update(estimatedLag, learningRate float64) (float64, bool) {
	next := Step(estimatedLag, c.delay, learningRate, c.tolerance, c.maxDelay)
	changed := next != c.delay
	c.delay = next
	return next, changed
}

// Delay returns the current delay in samples.
func (c *Controller) Delay() float64 { return c.delay }

// Tolerance returns the deadband half-width in samples.
func (c *Controller) Tolerance() float64 { return c.tolerance }

// MaxDelay returns the upper clamp bound in samples.
func (c *Controller) MaxDelay() float64 { return c.maxDelay }

// SetTolerance changes the deadband. Negative values are treated as 0.
func (c *Controller) SetTolerance(tolerance float64) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}
	c.tolerance = tolerance
}

// Reset sets the current delay, clamped to [0, MaxDelay].
func (c *Controller) Reset(delay float64) {
	if math.IsNaN(delay) {
		delay = 0
	}
	c.delay = core.Clamp(delay, 0, c.maxDelay)
}
