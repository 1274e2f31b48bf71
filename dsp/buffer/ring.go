package buffer

import "fmt"

// Ring is a fixed-capacity multi-channel circular buffer holding the most
// recent samples of every channel. All channels share one write cursor.
//
// Writes are contiguous runs that may wrap; they are split into a head copy
// up to the end of storage and a tail copy from index 0. Once capacity
// samples have been written, Latest returns a full window ending at the most
// recent write.
//
// Ring never allocates after NewRing and is not thread-safe.
type Ring struct {
	data     [][]float64
	capacity int
	writePos int
	filled   int
}

// NewRing returns a cleared ring with the given channel count and capacity.
func NewRing(channels, capacity int) (*Ring, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("ring channel count must be > 0: %d", channels)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("ring capacity must be > 0: %d", capacity)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, capacity)
	}
	return &Ring{data: data, capacity: capacity}, nil
}

// Channels returns the number of channels.
func (r *Ring) Channels() int {
	return len(r.data)
}

// Capacity returns the number of samples held per channel.
func (r *Ring) Capacity() int {
	return r.capacity
}

// WritePos returns the current write cursor in [0, Capacity()).
func (r *Ring) WritePos() int {
	return r.writePos
}

// Count returns how many valid samples each channel holds, saturating at
// Capacity().
func (r *Ring) Count() int {
	return r.filled
}

// Filled reports whether a full window of samples has been written since
// the last Clear.
func (r *Ring) Filled() bool {
	return r.filled >= r.capacity
}

// Write copies count samples of every channel starting at the write cursor
// without moving it. If count exceeds the capacity only the newest
// Capacity() samples are stored, at the positions they would have landed
// on. count is limited to the shortest source channel; sources with fewer
// channels than the ring are ignored. Write returns the number of samples
// consumed per channel, which is what Advance expects.
func (r *Ring) Write(src [][]float64, count int) int {
	if count <= 0 || len(src) < len(r.data) {
		return 0
	}
	for ch := range r.data {
		if len(src[ch]) < count {
			count = len(src[ch])
		}
	}
	if count == 0 {
		return 0
	}

	start := 0
	pos := r.writePos
	if count > r.capacity {
		start = count - r.capacity
		pos = (r.writePos + start) % r.capacity
	}
	n := count - start
	head := r.capacity - pos

	for ch, dst := range r.data {
		s := src[ch][start:count]
		if head >= n {
			copy(dst[pos:pos+n], s)
			continue
		}
		copy(dst[pos:], s[:head])
		copy(dst[:n-head], s[head:])
	}
	return count
}

// Advance moves the write cursor by count samples, wrapping at capacity.
func (r *Ring) Advance(count int) {
	if count <= 0 {
		return
	}
	r.writePos = (r.writePos + count%r.capacity) % r.capacity
	if r.filled < r.capacity {
		r.filled += count
		if r.filled > r.capacity {
			r.filled = r.capacity
		}
	}
}

// Append writes count samples per channel and advances past them.
func (r *Ring) Append(src [][]float64, count int) int {
	n := r.Write(src, count)
	r.Advance(n)
	return n
}

// Latest copies the most recent min(len(dst), Capacity()) samples of
// channel ch into dst in chronological order and returns the number copied.
// The newest sample ends up last.
func (r *Ring) Latest(ch int, dst []float64) int {
	if ch < 0 || ch >= len(r.data) {
		return 0
	}
	n := len(dst)
	if n > r.capacity {
		n = r.capacity
	}
	if n == 0 {
		return 0
	}

	src := r.data[ch]
	start := r.writePos - n
	if start >= 0 {
		copy(dst[:n], src[start:r.writePos])
		return n
	}
	start += r.capacity
	first := copy(dst[:n], src[start:])
	copy(dst[first:n], src[:r.writePos])
	return n
}

// Reset empties the ring in constant time: the cursor and fill state go
// back to zero but stored samples stay until overwritten. Latest may return
// them until the ring has Filled again.
func (r *Ring) Reset() {
	r.writePos = 0
	r.filled = 0
}

// Clear zeroes all channels and resets the cursor and fill state.
func (r *Ring) Clear() {
	for _, ch := range r.data {
		for i := range ch {
			ch[i] = 0
		}
	}
	r.writePos = 0
	r.filled = 0
}
