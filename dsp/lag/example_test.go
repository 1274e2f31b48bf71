package lag_test

import (
	"fmt"

	"github.com/cwbudde/algo-autodelay/dsp/lag"
)

func ExampleEstimate() {
	// target is ref delayed by 3 samples.
	ref := []float64{0, 1, 0, -2, 0, 3, 0, 0, 0, 0, 0, 0}
	target := []float64{0, 0, 0, 0, 1, 0, -2, 0, 3, 0, 0, 0}

	fmt.Println(lag.Estimate(ref, target, 6, 1))
	fmt.Println(lag.EstimateSymmetric(target, ref, 6, 1))
	// Output:
	// 3
	// -3
}
