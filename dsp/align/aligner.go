package align

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autodelay/dsp/adapt"
	"github.com/cwbudde/algo-autodelay/dsp/buffer"
	"github.com/cwbudde/algo-autodelay/dsp/core"
	"github.com/cwbudde/algo-autodelay/dsp/delay"
	"github.com/cwbudde/algo-autodelay/dsp/lag"
	"github.com/cwbudde/algo-vecmath"
)

// Analysis ring channels.
const (
	refChannel    = 0
	targetChannel = 1
)

// Aligner estimates the delay between the corrected and guide channel
// groups and delays the corrected group to match.
type Aligner struct {
	cfg       Config
	params    *Params
	published publishedState
	display   *Display

	prepared  bool
	stream    core.ProcessorConfig
	tolerance float64
	hop       int
	minInputs int

	ring      *buffer.Ring
	mix       *buffer.Frame
	window    *buffer.Frame
	estimator lag.Estimator
	ctrl      *adapt.Controller
	lines     []*delay.Line
	dc        [2]dcBlocker
	useDC     bool

	sinceEstimate int
	estimated     bool
	ringDirty     bool
}

// New validates cfg and returns an unprepared aligner.
func New(cfg Config) (*Aligner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Corrected = append([]int(nil), cfg.Corrected...)
	cfg.Guide = append([]int(nil), cfg.Guide...)

	return &Aligner{
		cfg:    cfg,
		params: NewParams(),
		estimator: lag.Estimator{
			MaxLag:    cfg.MaxLagSamples,
			Step:      cfg.Step,
			Symmetric: cfg.Symmetric,
		},
	}, nil
}

// Config returns the configuration the aligner was built with.
func (a *Aligner) Config() Config { return a.cfg }

// Params returns the parameter slots. Safe to use from any goroutine.
func (a *Aligner) Params() *Params { return a.params }

// Published returns the published state. Safe to read from any goroutine.
func (a *Aligner) Published() Published { return Published{s: &a.published} }

// Display returns the display history, or nil before Prepare.
func (a *Aligner) Display() *Display { return a.display }

// Prepared reports whether Prepare succeeded since the last Release.
func (a *Aligner) Prepared() bool { return a.prepared }

// Prepare sizes and clears every buffer for a stream configuration. It
// allocates and must not run concurrently with Process.
func (a *Aligner) Prepare(stream core.ProcessorConfig) error {
	if err := stream.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if hi := a.cfg.highestChannel(); hi >= stream.NumChannels {
		return fmt.Errorf("%w: channel %d exceeds stream channel count %d",
			ErrInvalidConfig, hi, stream.NumChannels)
	}

	ring, err := buffer.NewRing(2, a.cfg.WindowSize)
	if err != nil {
		return err
	}
	mix, err := buffer.NewFrame(2, stream.BlockSize)
	if err != nil {
		return err
	}
	window, err := buffer.NewFrame(2, a.cfg.WindowSize)
	if err != nil {
		return err
	}
	maxDelay := a.cfg.EffectiveMaxDelay()
	ctrl, err := adapt.NewController(a.cfg.ToleranceAt(stream.SampleRate), float64(maxDelay))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	lines := make([]*delay.Line, len(a.cfg.Corrected))
	for i := range lines {
		lines[i], err = delay.New(maxDelay, delay.WithMode(a.cfg.Interpolation))
		if err != nil {
			return err
		}
	}

	a.stream = stream
	a.tolerance = ctrl.Tolerance()
	a.hop = a.cfg.EffectiveHop()
	a.minInputs = a.cfg.highestChannel() + 1
	a.ring = ring
	a.ctrl = ctrl
	a.lines = lines
	a.mix = mix
	a.window = window
	a.useDC = a.cfg.DCBlockHz > 0
	for i := range a.dc {
		a.dc[i] = newDCBlocker(a.cfg.DCBlockHz, stream.SampleRate)
	}
	a.display = newDisplay(stream.NumChannels, stream.SampleRate, a.cfg.MinBPM, a.cfg.BPMTolerance)
	a.published.reset()
	a.resetAnalysis()
	a.prepared = true
	return nil
}

// Release clears all state. Process is a no-op until the next Prepare.
func (a *Aligner) Release() {
	if a.ring != nil {
		a.ring.Clear()
	}
	for _, l := range a.lines {
		l.Reset()
		l.SetDelay(0)
	}
	if a.ctrl != nil {
		a.ctrl.Reset(0)
	}
	a.published.reset()
	a.resetAnalysis()
	a.prepared = false
}

// Latency returns the current correction delay in samples.
func (a *Aligner) Latency() float64 {
	if a.ctrl == nil {
		return 0
	}
	return a.ctrl.Delay()
}

// Tolerance returns the controller deadband in samples, 0 before Prepare.
func (a *Aligner) Tolerance() float64 { return a.tolerance }

// SetDelay forces the correction delay, for example when restoring a saved
// session. It must not run concurrently with Process.
func (a *Aligner) SetDelay(d float64) error {
	if !a.prepared {
		return ErrNotPrepared
	}
	a.ctrl.Reset(d)
	a.applyDelay(a.ctrl.Delay())
	return nil
}

// Process corrects block in place. block[ch] holds one channel; only the
// corrected channels are modified. Blocks longer than the prepared block
// size are processed in chunks. Degenerate blocks are ignored.
func (a *Aligner) Process(block [][]float64, ts TransportSnapshot) {
	if !a.prepared || len(block) < a.minInputs {
		return
	}
	n := shortest(block)
	if n == 0 {
		return
	}

	left, right := a.params.Gate()
	rate := a.params.LearningRate()
	frac := ts.FractionalBeat()
	open := gateOpen(ts, frac, left, right)

	if ts.HasTempo() {
		a.display.retune(ts.BPM)
	}
	if !math.IsNaN(frac) {
		idx := a.display.playhead(frac)
		a.published.playheadIndex.Store(int64(idx))
		a.display.write(block, n, idx)
	}

	if !open && a.ringDirty {
		a.ring.Reset()
		a.resetAnalysis()
	}

	chunk := a.stream.BlockSize
	for off := 0; off < n; off += chunk {
		m := min(chunk, n-off)
		if open {
			a.analyze(block, off, m, rate)
		}
		for i, ch := range a.cfg.Corrected {
			a.lines[i].ProcessInPlace(block[ch][off : off+m])
		}
	}
}

func (a *Aligner) analyze(block [][]float64, off, m int, rate float64) {
	views := a.mix.View(m)
	ref := views[refChannel]
	target := views[targetChannel]
	downmix(ref, block, a.cfg.Corrected, off)
	downmix(target, block, a.cfg.Guide, off)
	if a.useDC {
		a.dc[refChannel].processInPlace(ref)
		a.dc[targetChannel].processInPlace(target)
	}

	a.ring.Append(views, m)
	a.ringDirty = true
	a.sinceEstimate += m

	if !a.ring.Filled() {
		return
	}
	if a.estimated && a.sinceEstimate < a.hop {
		return
	}
	a.estimate(rate)
}

func (a *Aligner) estimate(rate float64) {
	ref := a.window.Channel(refChannel)
	target := a.window.Channel(targetChannel)
	a.ring.Latest(refChannel, ref)
	a.ring.Latest(targetChannel, target)

	res := a.estimator.Estimate(ref, target)
	a.published.estimatedLag.Store(int64(res.Lag))
	a.published.estimates.Add(1)
	a.estimated = true
	a.sinceEstimate = 0

	if d, changed := a.ctrl.Update(float64(res.Lag), rate); changed {
		a.applyDelay(d)
	}
}

func (a *Aligner) applyDelay(d float64) {
	for _, l := range a.lines {
		l.SetDelay(d)
	}
	a.published.publishDelay(d)
}

func (a *Aligner) resetAnalysis() {
	a.sinceEstimate = 0
	a.estimated = false
	a.ringDirty = false
	for i := range a.dc {
		a.dc[i].reset()
	}
}

// downmix writes the mean of the group's channels, starting at off, to dst.
func downmix(dst []float64, block [][]float64, group []int, off int) {
	m := len(dst)
	copy(dst, block[group[0]][off:off+m])
	if len(group) == 1 {
		return
	}
	for _, ch := range group[1:] {
		vecmath.AddBlockInPlace(dst, block[ch][off:off+m])
	}
	vecmath.ScaleBlockInPlace(dst, 1/float64(len(group)))
}

func shortest(block [][]float64) int {
	n := len(block[0])
	for _, ch := range block[1:] {
		n = min(n, len(ch))
	}
	return n
}
