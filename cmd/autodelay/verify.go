package main

import (
	"fmt"

	"github.com/cwbudde/algo-autodelay/dsp/align"
	"github.com/cwbudde/algo-autodelay/measure/offset"
)

// measureAlignment reports how far the guide group trails the corrected
// group over the whole recording.
func measureAlignment(chans [][]float64, cfg align.Config, sampleRate int) (offset.Result, error) {
	ref := mixGroup(chans, cfg.Corrected)
	target := mixGroup(chans, cfg.Guide)
	res, err := offset.NewMeter(float64(sampleRate)).Measure(ref, target, cfg.EffectiveMaxDelay())
	if err != nil {
		return offset.Result{}, fmt.Errorf("measure alignment: %w", err)
	}
	return res, nil
}
