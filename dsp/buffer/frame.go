package buffer

import "fmt"

// Frame is a pre-sized multi-channel scratch block. Views share the frame's
// storage, so writing through a view fills the frame.
type Frame struct {
	data  [][]float64
	views [][]float64
}

// NewFrame returns a zeroed frame of channels × capacity samples.
func NewFrame(channels, capacity int) (*Frame, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("frame channel count must be > 0: %d", channels)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("frame capacity must be > 0: %d", capacity)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, capacity)
	}
	return &Frame{data: data, views: make([][]float64, channels)}, nil
}

// Channels returns the number of channels.
func (f *Frame) Channels() int {
	return len(f.data)
}

// Capacity returns the number of samples per channel.
func (f *Frame) Capacity() int {
	return len(f.data[0])
}

// Channel returns the full storage of channel ch.
func (f *Frame) Channel(ch int) []float64 {
	return f.data[ch]
}

// View returns the first n samples of every channel, with n clamped to
// [0, Capacity()]. The outer slice is reused by the next call to View.
func (f *Frame) View(n int) [][]float64 {
	n = max(0, min(n, f.Capacity()))
	for ch, d := range f.data {
		f.views[ch] = d[:n]
	}
	return f.views
}

// Zero sets every sample to 0.
func (f *Frame) Zero() {
	for _, d := range f.data {
		clear(d)
	}
}
