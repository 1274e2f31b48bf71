package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-autodelay/dsp/interp"
	"github.com/cwbudde/algo-autodelay/internal/testutil"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(-1); err == nil {
		t.Fatal("expected error for maxDelay=-1")
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.MaxDelay() != 16 {
		t.Fatalf("MaxDelay: got %d want 16", d.MaxDelay())
	}

	if d.Len() != 16+interpolationMargin {
		t.Fatalf("Len: got %d want %d", d.Len(), 16+interpolationMargin)
	}

	if d.Mode() != interp.Hermite {
		t.Fatalf("default mode: got %v want Hermite", d.Mode())
	}
}

func TestNewWithOptions(t *testing.T) {
	d, err := New(16, WithMode(interp.Linear))
	if err != nil {
		t.Fatal(err)
	}

	if d.Mode() != interp.Linear {
		t.Fatalf("mode: got %v want Linear", d.Mode())
	}
}

func TestZeroMaxDelayPassesThrough(t *testing.T) {
	d, err := New(0)
	if err != nil {
		t.Fatal(err)
	}

	for i, x := range []float64{1, -2, 3} {
		if got := d.Process(x); got != x {
			t.Fatalf("sample %d: got %v want %v", i, got, x)
		}
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}
	// k=0 => most recently written (7)
	if got := d.Read(0); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	if got := d.Read(3); got != 4 {
		t.Fatalf("got %v want 4", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, err := New(1)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		d.Write(float64(i))
	}
	// buffer holds 4 slots: [8, 9, 6, 7], writePos=2
	if got := d.Read(0); got != 9 {
		t.Fatalf("got %v want 9", got)
	}
	if got := d.Read(3); got != 6 {
		t.Fatalf("got %v want 6", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.SetDelay(2)
	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := 0; i < d.Len(); i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after reset Read(%d): got %v want 0", i, got)
		}
	}
	if d.Delay() != 2 {
		t.Fatalf("Reset changed delay to %v", d.Delay())
	}
}

// --- delay setting ---

func TestSetDelaySaturates(t *testing.T) {
	d, err := New(10)
	if err != nil {
		t.Fatal(err)
	}

	d.SetDelay(25)
	if d.Delay() != 10 {
		t.Fatalf("over max: got %v want 10", d.Delay())
	}

	d.SetDelay(-3)
	if d.Delay() != 0 {
		t.Fatalf("negative: got %v want 0", d.Delay())
	}

	d.SetDelay(math.NaN())
	if d.Delay() != 0 {
		t.Fatalf("NaN: got %v want 0", d.Delay())
	}
}

// --- impulse response at integer delays ---

func TestProcessIntegerDelayImpulse(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Hermite, interp.Linear} {
		for _, delay := range []int{0, 1, 5, 37, 64} {
			d, err := New(64, WithMode(mode))
			if err != nil {
				t.Fatal(err)
			}
			d.SetDelay(float64(delay))

			in := testutil.Impulse(128, 3)
			out := make([]float64, len(in))
			for i, x := range in {
				out[i] = d.Process(x)
			}

			want := testutil.Impulse(128, 3+delay)
			for i := range out {
				if out[i] != want[i] {
					t.Fatalf("%v delay=%d: out[%d]=%v want %v", mode, delay, i, out[i], want[i])
				}
			}
		}
	}
}

func TestProcessInPlaceMatchesProcess(t *testing.T) {
	a, _ := New(32)
	b, _ := New(32)
	a.SetDelay(7.25)
	b.SetDelay(7.25)

	in := testutil.DeterministicNoise(3, 1, 200)
	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = a.Process(x)
	}

	got := append([]float64(nil), in...)
	b.ProcessInPlace(got)
	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

// --- fractional read ---

// fillRamp fills a delay line with a linear ramp [0, 1, 2, ..., Len()-1].
func fillRamp(d *Line) {
	for i := 0; i < d.Len(); i++ {
		d.Write(float64(i))
	}
}

func TestReadFractionalLinearRamp(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Hermite, interp.Linear} {
		d, err := New(32, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}

		fillRamp(d)
		got := d.ReadFractional(5.5)

		want := float64(d.Len()-1) - 5.5
		if !approxEqual(got, want, 1e-10) {
			t.Fatalf("%v: got %v want %v", mode, got, want)
		}
	}
}

func TestReadFractionalNegativeClamped(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < d.Len(); i++ {
		d.Write(float64(i + 1))
	}

	got := d.ReadFractional(-1.0)
	if got != d.Read(0) {
		t.Fatalf("negative delay: got %v want newest %v", got, d.Read(0))
	}
}

func TestProcessHalfSampleDelayOnRamp(t *testing.T) {
	d, err := New(8, WithMode(interp.Linear))
	if err != nil {
		t.Fatal(err)
	}
	d.SetDelay(0.5)

	var got float64
	for i := 0; i < 20; i++ {
		got = d.Process(float64(i))
	}
	if !approxEqual(got, 18.5, 1e-12) {
		t.Fatalf("got %v want 18.5", got)
	}
}

func TestAllModesDCPreservation(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Hermite, interp.Linear} {
		d, err := New(32, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < d.Len(); i++ {
			d.Write(42.0)
		}

		got := d.ReadFractional(5.3)
		if !approxEqual(got, 42.0, 1e-9) {
			t.Fatalf("%v DC: got %v want 42", mode, got)
		}
	}
}

func TestAllModesSineQuality(t *testing.T) {
	// Write a low-frequency sine into a large buffer and verify
	// that fractional reads are close to the analytic value.
	freq := 0.02 // low frequency relative to sample rate

	modes := []struct {
		mode interp.Mode
		tol  float64
	}{
		{interp.Linear, 0.01},
		{interp.Hermite, 1e-4},
	}

	for _, tc := range modes {
		d, err := New(253, WithMode(tc.mode))
		if err != nil {
			t.Fatal(err)
		}
		size := d.Len()

		for i := 0; i < size; i++ {
			d.Write(math.Sin(2 * math.Pi * freq * float64(i)))
		}

		delay := 20.37
		// Read(k) returns the sample written at index size-1-k.
		exactSample := float64(size-1) - delay
		want := math.Sin(2 * math.Pi * freq * exactSample)
		got := d.ReadFractional(delay)

		if diff := math.Abs(got - want); diff > tc.tol {
			t.Fatalf("%v sine: got %v want %v (err=%e, tol=%e)", tc.mode, got, want, diff, tc.tol)
		}
	}
}

// --- benchmarks ---

func BenchmarkProcessHermite(b *testing.B) {
	d, _ := New(1024)
	d.SetDelay(100.37)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Process(float64(i & 7))
	}
}

func BenchmarkProcessLinear(b *testing.B) {
	d, _ := New(1024, WithMode(interp.Linear))
	d.SetDelay(100.37)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Process(float64(i & 7))
	}
}
