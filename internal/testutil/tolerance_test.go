package testutil

import "testing"

func TestRequireSliceNearlyEqualPasses(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2, 3}, []float64{1, 2.05, 3}, 0.1)
	RequireSliceNearlyEqual(t, nil, []float64{}, 0)
	RequireSliceNearlyEqual(t, Delayed([]float64{1, 2}, 1), []float64{0, 1}, 0)
}

func TestRequireNearPasses(t *testing.T) {
	RequireNear(t, "delay", 36.42, 37, 1)
	RequireNear(t, "exact", 0, 0, 0)
	RequireNear(t, "negative", -2.5, -2, 0.5)
}
