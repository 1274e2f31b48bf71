package align

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-autodelay/dsp/core"
)

// InitialDisplayBPM is the tempo the display history is sized for until
// the transport reports one.
const InitialDisplayBPM = 120.0

// Display is a rolling history of the input, one beat long at the current
// tempo, for waveform views. Process writes it; readers poll it from any
// goroutine. Samples are stored as float32 bits in atomic slots, so a reader
// may observe a block half written but never a torn sample.
type Display struct {
	data       [][]atomic.Uint32
	length     atomic.Int64
	bpm        atomic.Uint64
	sampleRate float64
	tolerance  float64

	// dirty bounds the slots written since they were last zeroed; slots at
	// or beyond it are already zero. Only Process touches it.
	dirty int
}

// newDisplay allocates room for one beat at minBPM on every channel.
func newDisplay(channels int, sampleRate, minBPM, tolerance float64) *Display {
	capacity := samplesPerBeat(minBPM, sampleRate)
	d := &Display{
		data:       make([][]atomic.Uint32, channels),
		sampleRate: sampleRate,
		tolerance:  tolerance,
	}
	for ch := range d.data {
		d.data[ch] = make([]atomic.Uint32, capacity)
	}
	d.resize(InitialDisplayBPM)
	return d
}

func samplesPerBeat(bpm, sampleRate float64) int {
	n := int(60 / bpm * sampleRate)
	return max(n, 1)
}

// Channels returns the number of channels held.
func (d *Display) Channels() int {
	if d == nil {
		return 0
	}
	return len(d.data)
}

// Len returns the current history length in samples (one beat).
func (d *Display) Len() int {
	if d == nil {
		return 0
	}
	return int(d.length.Load())
}

// Capacity returns the longest history the display can hold.
func (d *Display) Capacity() int {
	if d == nil || len(d.data) == 0 {
		return 0
	}
	return len(d.data[0])
}

// BPM returns the tempo the history is currently sized for.
func (d *Display) BPM() float64 {
	if d == nil {
		return 0
	}
	return math.Float64frombits(d.bpm.Load())
}

// Sample returns one history sample, or 0 out of range.
func (d *Display) Sample(ch, i int) float32 {
	if d == nil || ch < 0 || ch >= len(d.data) || i < 0 || i >= d.Len() {
		return 0
	}
	return math.Float32frombits(d.data[ch][i].Load())
}

// CopyChannel copies up to len(dst) samples of channel ch and returns the
// number copied.
func (d *Display) CopyChannel(ch int, dst []float32) int {
	if d == nil || ch < 0 || ch >= len(d.data) {
		return 0
	}
	n := min(len(dst), d.Len())
	src := d.data[ch]
	for i := range n {
		dst[i] = math.Float32frombits(src[i].Load())
	}
	return n
}

// retune resizes the history when bpm moved by more than the tolerance.
// Unknown tempos are ignored. It reports whether it resized.
func (d *Display) retune(bpm float64) bool {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return false
	}
	if math.Abs(bpm-d.BPM()) <= d.tolerance {
		return false
	}
	d.resize(bpm)
	return true
}

// resize sets the history length for bpm and returns how many slots per
// channel it zeroed. Samples kept below the old length are overwritten
// within one beat; only slots exposed by growth are cleared, so the work is
// bounded by the change in length, never by the capacity.
func (d *Display) resize(bpm float64) int {
	old := d.Len()
	n := min(samplesPerBeat(bpm, d.sampleRate), d.Capacity())
	d.bpm.Store(math.Float64bits(bpm))

	cleared := 0
	if hi := min(n, d.dirty); hi > old {
		for _, ch := range d.data {
			for i := old; i < hi; i++ {
				ch[i].Store(0)
			}
		}
		cleared = hi - old
		if d.dirty <= n {
			d.dirty = old
		}
	}
	d.length.Store(int64(n))
	return cleared
}

// playhead maps a fractional beat onto the history, clamped to its range.
func (d *Display) playhead(frac float64) int {
	n := d.Len()
	if n == 0 {
		return 0
	}
	idx := int(frac * float64(n))
	return core.ClampInt(idx, 0, n-1)
}

// write copies count samples of every block channel starting at start,
// wrapping at the history length.
func (d *Display) write(block [][]float64, count, start int) {
	n := d.Len()
	if n == 0 {
		return
	}
	if pos := start % n; pos+count >= n {
		d.dirty = n
	} else {
		d.dirty = max(d.dirty, pos+count)
	}
	for ch := 0; ch < len(d.data) && ch < len(block); ch++ {
		dst := d.data[ch]
		src := block[ch]
		m := min(count, len(src))
		pos := start % n
		for i := range m {
			dst[pos].Store(math.Float32bits(float32(src[i])))
			pos++
			if pos == n {
				pos = 0
			}
		}
	}
}
