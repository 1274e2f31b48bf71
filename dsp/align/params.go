package align

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-autodelay/dsp/core"
)

// Learning rate range accepted by Params.
const (
	MinLearningRate     = 0.001
	MaxLearningRate     = 1.0
	DefaultLearningRate = 0.5
)

// Params carries host/UI parameters into Process. Every field is an atomic
// slot so a parameter goroutine can write while the audio goroutine reads.
// Process reads each slot once per block.
type Params struct {
	left  atomic.Uint64
	right atomic.Uint64
	rate  atomic.Uint64
}

// NewParams returns parameters with the gate open over (0, 1) and the
// default learning rate.
func NewParams() *Params {
	p := &Params{}
	p.SetGate(0, 1)
	p.SetLearningRate(DefaultLearningRate)
	return p
}

// SetGate sets the fractional-beat window in which estimation runs. Both
// bounds are clamped to [0, 1]; left < right is the caller's job. NaN leaves
// the bound unchanged.
func (p *Params) SetGate(left, right float64) {
	if !math.IsNaN(left) {
		p.left.Store(math.Float64bits(clampUnit(left)))
	}
	if !math.IsNaN(right) {
		p.right.Store(math.Float64bits(clampUnit(right)))
	}
}

// Gate returns the current window bounds.
func (p *Params) Gate() (left, right float64) {
	return math.Float64frombits(p.left.Load()), math.Float64frombits(p.right.Load())
}

// SetLearningRate stores r clamped to [MinLearningRate, MaxLearningRate].
// NaN is ignored.
func (p *Params) SetLearningRate(r float64) {
	if math.IsNaN(r) {
		return
	}
	p.rate.Store(math.Float64bits(core.Clamp(r, MinLearningRate, MaxLearningRate)))
}

// LearningRate returns the current learning rate.
func (p *Params) LearningRate() float64 {
	return math.Float64frombits(p.rate.Load())
}

func clampUnit(x float64) float64 {
	return core.Clamp(x, 0, 1)
}
