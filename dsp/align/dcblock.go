package align

import (
	"math"

	"github.com/cwbudde/algo-autodelay/dsp/core"
)

// dcBlocker is a one-pole high-pass: y[n] = x[n] − x[n−1] + r·y[n−1].
type dcBlocker struct {
	r      float64
	x1, y1 float64
}

func newDCBlocker(cutoffHz, sampleRate float64) dcBlocker {
	r := math.Exp(-2 * math.Pi * cutoffHz / sampleRate)
	return dcBlocker{r: math.Min(r, 0.99999)}
}

func (d *dcBlocker) processInPlace(buf []float64) {
	x1, y1, r := d.x1, d.y1, d.r
	for i, x := range buf {
		y := x - x1 + r*y1
		x1 = x
		y1 = y
		buf[i] = y
	}
	d.x1, d.y1 = x1, core.FlushDenormals(y1)
}

func (d *dcBlocker) reset() {
	d.x1, d.y1 = 0, 0
}
