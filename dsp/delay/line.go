// Package delay provides a bounded circular delay line with fractional
// (interpolated) read positions.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autodelay/dsp/interp"
)

// interpolationMargin is the number of extra slots behind maxDelay that the
// widest kernel (4-tap Hermite) may touch.
const interpolationMargin = 3

// Option configures a Line at construction time.
type Option func(*Line)

// WithMode selects the interpolation kernel used for fractional delays.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		switch mode {
		case interp.Hermite, interp.Linear:
			d.mode = mode
		}
	}
}

// Line is a circular delay line driven one sample at a time.
//
// The maximum delay is fixed at construction. Delay changes take effect on
// the next Process call; jumps are not smoothed.
//
// Line is real-time safe and not thread-safe.
type Line struct {
	buffer   []float64
	writePos int
	maxDelay int
	delay    float64
	mode     interp.Mode
}

// New returns a delay line able to delay by up to maxDelay samples.
func New(maxDelay int, opts ...Option) (*Line, error) {
	if maxDelay < 0 {
		return nil, fmt.Errorf("delay max delay must be >= 0: %d", maxDelay)
	}

	d := &Line{
		buffer:   make([]float64, maxDelay+interpolationMargin),
		maxDelay: maxDelay,
		mode:     interp.Hermite,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest supported delay in samples.
func (d *Line) MaxDelay() int {
	return d.maxDelay
}

// Mode returns the interpolation kernel.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// Delay returns the current delay in samples.
func (d *Line) Delay() float64 {
	return d.delay
}

// SetDelay sets the delay in samples. Callers keep it within [0, MaxDelay];
// values outside are saturated so reads stay inside the buffer.
func (d *Line) SetDelay(delay float64) {
	if math.IsNaN(delay) || delay < 0 {
		delay = 0
	}
	if delay > float64(d.maxDelay) {
		delay = float64(d.maxDelay)
	}
	d.delay = delay
}

// Write writes one sample and advances the write cursor.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written k samples before the most recent one.
// Read(0) is the newest sample.
func (d *Line) Read(k int) float64 {
	size := len(d.buffer)
	if k < 0 {
		k = 0
	}
	if k >= size {
		k = size - 1
	}
	readPos := d.writePos - 1 - k
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads delay samples behind the newest sample using the
// configured kernel. Integer delays return stored samples exactly.
func (d *Line) ReadFractional(delay float64) float64 {
	if math.IsNaN(delay) || delay < 0 {
		delay = 0
	}
	maxDelay := float64(d.maxDelay)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if d.mode == interp.Linear {
		return interp.Linear2(t, d.Read(p), d.Read(p+1))
	}

	xm1 := d.Read(maxInt(0, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)
	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Process pushes sample and returns the input delayed by the current delay.
// It must be called exactly once per input sample, in order.
func (d *Line) Process(sample float64) float64 {
	d.Write(sample)
	return d.ReadFractional(d.delay)
}

// ProcessInPlace delays buf in place.
func (d *Line) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = d.Process(x)
	}
}

// Reset clears line state. The configured delay is kept.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
