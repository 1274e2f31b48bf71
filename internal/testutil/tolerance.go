package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t unless got and want have the same length
// and every pair of samples is within eps. The failure names the first
// offending index and how many samples differ in total.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	first, bad := -1, 0
	for i := range got {
		if !(math.Abs(got[i]-want[i]) <= eps) {
			if first < 0 {
				first = i
			}
			bad++
		}
	}
	if bad > 0 {
		t.Fatalf("%d of %d samples differ by more than %v; first at %d: got %v, want %v",
			bad, len(got), eps, first, got[first], want[first])
	}
}

// RequireNear fails t unless |got-want| <= tol. NaN never passes.
func RequireNear(t *testing.T, what string, got, want, tol float64) {
	t.Helper()
	if !(math.Abs(got-want) <= tol) {
		t.Fatalf("%s = %v, want %v ± %v", what, got, want, tol)
	}
}
