package buffer

import (
	"testing"

	"github.com/cwbudde/algo-autodelay/internal/testutil"
)

func TestNewRingValidation(t *testing.T) {
	if _, err := NewRing(0, 8); err == nil {
		t.Fatal("expected error for zero channels")
	}
	if _, err := NewRing(2, 0); err == nil {
		t.Fatal("expected error for zero capacity")
	}
}

func TestRingWriteDoesNotAdvance(t *testing.T) {
	r, err := NewRing(1, 4)
	if err != nil {
		t.Fatal(err)
	}

	if n := r.Write([][]float64{{1, 2}}, 2); n != 2 {
		t.Fatalf("Write() = %d, want 2", n)
	}
	if r.WritePos() != 0 || r.Count() != 0 {
		t.Fatalf("cursor moved: pos=%d count=%d", r.WritePos(), r.Count())
	}

	r.Advance(2)
	if r.WritePos() != 2 || r.Count() != 2 {
		t.Fatalf("after Advance: pos=%d count=%d", r.WritePos(), r.Count())
	}
}

func TestRingAdvanceWrapsModCapacity(t *testing.T) {
	r, _ := NewRing(1, 8)
	r.Advance(5)
	r.Advance(19)
	if r.WritePos() != 0 {
		t.Fatalf("WritePos() = %d, want 0", r.WritePos())
	}
	if !r.Filled() {
		t.Fatal("expected ring to be filled")
	}
}

func TestRingSplitsWrappedWrite(t *testing.T) {
	r, _ := NewRing(2, 5)
	r.Append([][]float64{{1, 2, 3}, {-1, -2, -3}}, 3)
	r.Append([][]float64{{4, 5, 6, 7}, {-4, -5, -6, -7}}, 4)

	if r.WritePos() != 2 {
		t.Fatalf("WritePos() = %d, want 2", r.WritePos())
	}
	// Storage: [6 7 3 4 5], chronological tail: 3 4 5 6 7.
	got := make([]float64, 5)
	r.Latest(0, got)
	testutil.RequireSliceNearlyEqual(t, got, []float64{3, 4, 5, 6, 7}, 0)
	r.Latest(1, got)
	testutil.RequireSliceNearlyEqual(t, got, []float64{-3, -4, -5, -6, -7}, 0)
}

func TestRingReproducesSequenceAcrossWraps(t *testing.T) {
	const capacity = 64
	seq := testutil.DeterministicNoise(11, 1, 5*capacity+17)
	mirror := make([]float64, len(seq))
	for i, v := range seq {
		mirror[i] = -v
	}

	r, _ := NewRing(2, capacity)
	blockSizes := []int{1, 7, 13, 64, 3, 31, 100, 5}
	written := 0
	for i := 0; written < len(seq); i++ {
		n := blockSizes[i%len(blockSizes)]
		if written+n > len(seq) {
			n = len(seq) - written
		}
		got := r.Append([][]float64{seq[written : written+n], mirror[written : written+n]}, n)
		if got != n {
			t.Fatalf("Append() = %d, want %d", got, n)
		}
		written += n
	}

	if !r.Filled() {
		t.Fatal("expected ring to be filled")
	}
	if want := written % capacity; r.WritePos() != want {
		t.Fatalf("WritePos() = %d, want %d", r.WritePos(), want)
	}

	got := make([]float64, capacity)
	if n := r.Latest(0, got); n != capacity {
		t.Fatalf("Latest() = %d, want %d", n, capacity)
	}
	testutil.RequireSliceNearlyEqual(t, got, seq[len(seq)-capacity:], 0)

	r.Latest(1, got)
	testutil.RequireSliceNearlyEqual(t, got, mirror[len(mirror)-capacity:], 0)
}

func TestRingOversizedWriteKeepsNewest(t *testing.T) {
	r, _ := NewRing(1, 4)
	r.Append([][]float64{{1}}, 1)

	src := []float64{10, 11, 12, 13, 14, 15, 16}
	if n := r.Append([][]float64{src}, len(src)); n != len(src) {
		t.Fatalf("Append() = %d, want %d", n, len(src))
	}
	if r.WritePos() != (1+len(src))%4 {
		t.Fatalf("WritePos() = %d, want %d", r.WritePos(), (1+len(src))%4)
	}

	got := make([]float64, 4)
	r.Latest(0, got)
	testutil.RequireSliceNearlyEqual(t, got, []float64{13, 14, 15, 16}, 0)
}

func TestRingLatestShortWindow(t *testing.T) {
	r, _ := NewRing(1, 8)
	r.Append([][]float64{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}, 10)

	got := make([]float64, 3)
	if n := r.Latest(0, got); n != 3 {
		t.Fatalf("Latest() = %d, want 3", n)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{8, 9, 10}, 0)

	if n := r.Latest(3, got); n != 0 {
		t.Fatalf("Latest(bad channel) = %d, want 0", n)
	}
}

func TestRingDegenerateWrites(t *testing.T) {
	r, _ := NewRing(2, 8)

	if n := r.Append(nil, 4); n != 0 {
		t.Fatalf("nil source: %d", n)
	}
	if n := r.Append([][]float64{{1, 2}}, 2); n != 0 {
		t.Fatalf("missing channel: %d", n)
	}
	if n := r.Append([][]float64{{1, 2}, {3, 4}}, 0); n != 0 {
		t.Fatalf("zero count: %d", n)
	}
	if n := r.Append([][]float64{{1, 2, 3}, {4}}, 3); n != 1 {
		t.Fatalf("short channel: got %d want 1", n)
	}
	if r.WritePos() != 1 {
		t.Fatalf("WritePos() = %d, want 1", r.WritePos())
	}
}

func TestRingClear(t *testing.T) {
	r, _ := NewRing(1, 4)
	r.Append([][]float64{{1, 2, 3, 4, 5}}, 5)
	r.Clear()

	if r.WritePos() != 0 || r.Count() != 0 || r.Filled() {
		t.Fatalf("Clear left state: pos=%d count=%d", r.WritePos(), r.Count())
	}
	got := make([]float64, 4)
	r.Latest(0, got)
	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 0, 0, 0}, 0)
}

func TestRingResetRefills(t *testing.T) {
	r, _ := NewRing(1, 4)
	r.Append([][]float64{{1, 2, 3, 4, 5}}, 5)
	r.Reset()

	if r.WritePos() != 0 || r.Count() != 0 || r.Filled() {
		t.Fatalf("Reset left state: pos=%d count=%d", r.WritePos(), r.Count())
	}

	r.Append([][]float64{{6, 7, 8}}, 3)
	if r.Filled() {
		t.Fatal("ring reports full after 3 of 4 samples")
	}
	r.Append([][]float64{{9}}, 1)
	if !r.Filled() {
		t.Fatal("ring not full after a whole window")
	}
	got := make([]float64, 4)
	r.Latest(0, got)
	testutil.RequireSliceNearlyEqual(t, got, []float64{6, 7, 8, 9}, 0)
}

func BenchmarkRingAppend(b *testing.B) {
	r, _ := NewRing(2, 4096)
	block := [][]float64{make([]float64, 512), make([]float64, 512)}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r.Append(block, 512)
	}
}
