package main

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-autodelay/dsp/align"
)

// transport simulates a host playing from startPPQ at a fixed tempo.
type transport struct {
	sampleRate float64
	bpm        float64
	startPPQ   float64
}

func (t transport) at(frame int) align.TransportSnapshot {
	return align.TransportSnapshot{
		IsPlaying: true,
		PPQ:       t.startPPQ + float64(frame)/t.sampleRate*t.bpm/60,
		BPM:       t.bpm,
	}
}

// render runs chans through a in place, one block at a time.
func render(a *align.Aligner, chans [][]float64, blockSize int, tr transport, progress func(done, total int)) {
	total := len(chans[0])
	views := make([][]float64, len(chans))
	for pos := 0; pos < total; pos += blockSize {
		m := min(blockSize, total-pos)
		for ch := range chans {
			views[ch] = chans[ch][pos : pos+m]
		}
		a.Process(views, tr.at(pos))
		if progress != nil {
			progress(pos+m, total)
		}
	}
}

// streamSource is an io.Reader of interleaved little-endian float32 frames.
// Every Read pulls the next blocks through the aligner, the way an audio
// device callback would. Processed samples are also written back to chans.
//
// The device may still be inside Read after its player was closed, so
// reads hold mu and Stop waits for them; after Stop the aligner and chans
// belong to the caller again.
type streamSource struct {
	a         *align.Aligner
	chans     [][]float64
	tr        transport
	blockSize int
	views     [][]float64
	pos       atomic.Int64

	mu      sync.Mutex
	stopped bool
}

func newStreamSource(a *align.Aligner, chans [][]float64, blockSize int, tr transport) *streamSource {
	return &streamSource{
		a:         a,
		chans:     chans,
		tr:        tr,
		blockSize: blockSize,
		views:     make([][]float64, len(chans)),
	}
}

// Frames returns the number of frames already produced.
func (s *streamSource) Frames() int { return int(s.pos.Load()) }

// Total returns the stream length in frames.
func (s *streamSource) Total() int { return len(s.chans[0]) }

// Stop ends the stream: it waits for an in-flight Read, makes later reads
// return io.EOF and reports the number of frames produced.
func (s *streamSource) Stop() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return s.Frames()
}

func (s *streamSource) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.Total()
	pos := s.Frames()
	if s.stopped || pos >= total {
		return 0, io.EOF
	}
	numCh := len(s.chans)
	frameBytes := 4 * numCh
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	n := 0
	for n < frames && pos < total {
		m := min(s.blockSize, frames-n, total-pos)
		for ch := range s.chans {
			s.views[ch] = s.chans[ch][pos : pos+m]
		}
		s.a.Process(s.views, s.tr.at(pos))

		for i := 0; i < m; i++ {
			off := (n + i) * frameBytes
			for ch := 0; ch < numCh; ch++ {
				binary.LittleEndian.PutUint32(p[off+4*ch:], math.Float32bits(float32(s.views[ch][i])))
			}
		}
		n += m
		pos += m
		s.pos.Store(int64(pos))
	}
	return n * frameBytes, nil
}

// mixGroup returns the mean of the listed channels.
func mixGroup(chans [][]float64, group []int) []float64 {
	out := make([]float64, len(chans[group[0]]))
	copy(out, chans[group[0]])
	for _, ch := range group[1:] {
		vecmath.AddBlockInPlace(out, chans[ch])
	}
	if len(group) > 1 {
		vecmath.ScaleBlockInPlace(out, 1/float64(len(group)))
	}
	return out
}

func cloneChannels(chans [][]float64) [][]float64 {
	out := make([][]float64, len(chans))
	for i, ch := range chans {
		out[i] = append([]float64(nil), ch...)
	}
	return out
}
