package adapt_test

import (
	"fmt"

	"github.com/cwbudde/algo-autodelay/dsp/adapt"
)

func ExampleStep() {
	delay := 0.0
	for range 4 {
		delay = adapt.Step(37, delay, 0.5, 1, 1000)
		fmt.Printf("%.3f\n", delay)
	}
	fmt.Println(adapt.StepsToConverge(37, 1, 0.5))
	// Output:
	// 18.500
	// 27.750
	// 32.375
	// 34.688
	// 6
}
