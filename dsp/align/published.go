package align

import (
	"math"
	"sync/atomic"
)

// publishedState holds the slots Process writes. Each slot has a single
// writer, the processing goroutine.
type publishedState struct {
	delay         atomic.Uint64
	delaySamples  atomic.Int64
	estimatedLag  atomic.Int64
	playheadIndex atomic.Int64
	estimates     atomic.Int64
}

func (s *publishedState) reset() {
	s.delay.Store(0)
	s.delaySamples.Store(0)
	s.estimatedLag.Store(0)
	s.playheadIndex.Store(0)
	s.estimates.Store(0)
}

func (s *publishedState) publishDelay(d float64) {
	s.delay.Store(math.Float64bits(d))
	s.delaySamples.Store(int64(math.Round(d)))
}

// Published is a read-only handle on the aligner state for UI pollers.
// Copies share the same slots. The zero Published reads as all zeros.
type Published struct {
	s *publishedState
}

// Delay returns the current delay line setting in samples.
func (p Published) Delay() float64 {
	if p.s == nil {
		return 0
	}
	return math.Float64frombits(p.s.delay.Load())
}

// DelaySamples returns Delay rounded to the nearest sample.
func (p Published) DelaySamples() int64 {
	if p.s == nil {
		return 0
	}
	return p.s.delaySamples.Load()
}

// EstimatedLag returns the most recent raw estimate.
func (p Published) EstimatedLag() int64 {
	if p.s == nil {
		return 0
	}
	return p.s.estimatedLag.Load()
}

// PlayheadIndex returns the display write position derived from the beat.
func (p Published) PlayheadIndex() int64 {
	if p.s == nil {
		return 0
	}
	return p.s.playheadIndex.Load()
}

// Estimates returns the number of estimator runs since Prepare.
func (p Published) Estimates() int64 {
	if p.s == nil {
		return 0
	}
	return p.s.estimates.Load()
}
