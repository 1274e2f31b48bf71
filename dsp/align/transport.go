package align

import (
	"math"

	"github.com/cwbudde/algo-autodelay/dsp/core"
)

// TransportSnapshot is the host transport state for one block.
type TransportSnapshot struct {
	IsPlaying bool
	// PPQ is the musical position in quarter notes at the block start.
	// NaN means the host reports no position.
	PPQ float64
	// BPM is the tempo. Values <= 0 or NaN mean unknown.
	BPM float64
}

// FractionalBeat returns PPQ − ⌊PPQ⌋ in [0, 1), or NaN without a position.
func (ts TransportSnapshot) FractionalBeat() float64 {
	if math.IsNaN(ts.PPQ) || math.IsInf(ts.PPQ, 0) {
		return math.NaN()
	}
	return core.FractionalPart(ts.PPQ)
}

// HasTempo reports whether BPM is usable.
func (ts TransportSnapshot) HasTempo() bool {
	return ts.BPM > 0 && !math.IsInf(ts.BPM, 0)
}

// gateOpen reports whether estimation may run: the transport plays and the
// fractional beat lies strictly inside (left, right).
func gateOpen(ts TransportSnapshot, frac, left, right float64) bool {
	return ts.IsPlaying && left < frac && frac < right
}
