package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-autodelay/dsp/align"
	"github.com/cwbudde/algo-autodelay/dsp/interp"
)

// File is the JSON schema for aligner presets. Absent fields keep their
// defaults.
type File struct {
	WindowSize       *int     `json:"window_size"`
	MaxLag           *int     `json:"max_lag"`
	Step             *int     `json:"step"`
	Symmetric        *bool    `json:"symmetric"`
	MaxDelay         *int     `json:"max_delay"`
	ToleranceSamples *float64 `json:"tolerance_samples"`
	ToleranceMs      *float64 `json:"tolerance_ms"`
	Hop              *int     `json:"hop"`
	Interpolation    string   `json:"interpolation"`
	Corrected        []int    `json:"corrected"`
	Guide            []int    `json:"guide"`
	DCBlockHz        *float64 `json:"dc_block_hz"`
	MinBPM           *float64 `json:"min_bpm"`
	BPMTolerance     *float64 `json:"bpm_tolerance"`

	GateLeft     *float64 `json:"gate_left"`
	GateRight    *float64 `json:"gate_right"`
	LearningRate *float64 `json:"learning_rate"`
}

// Preset is a complete aligner setup: construction config plus the initial
// values of the runtime parameters.
type Preset struct {
	Config       align.Config
	GateLeft     float64
	GateRight    float64
	LearningRate float64
}

// Default returns the stock preset.
func Default() *Preset {
	return &Preset{
		Config:       align.DefaultConfig(),
		GateLeft:     0,
		GateRight:    1,
		LearningRate: align.DefaultLearningRate,
	}
}

// ApplyParams copies the runtime values into params.
func (p *Preset) ApplyParams(params *align.Params) {
	params.SetGate(p.GateLeft, p.GateRight)
	params.SetLearningRate(p.LearningRate)
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}

	p := Default()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset and
// validates the result.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}

	cfg := &dst.Config
	if f.WindowSize != nil {
		cfg.WindowSize = *f.WindowSize
	}
	if f.MaxLag != nil {
		cfg.MaxLagSamples = *f.MaxLag
	}
	if f.Step != nil {
		cfg.Step = *f.Step
	}
	if f.Symmetric != nil {
		cfg.Symmetric = *f.Symmetric
	}
	if f.MaxDelay != nil {
		cfg.MaxDelaySamples = *f.MaxDelay
	}
	if f.ToleranceSamples != nil {
		cfg.ToleranceSamples = *f.ToleranceSamples
	}
	if f.ToleranceMs != nil {
		cfg.ToleranceMs = *f.ToleranceMs
	}
	if f.Hop != nil {
		cfg.Hop = *f.Hop
	}
	if name := strings.TrimSpace(f.Interpolation); name != "" {
		mode, ok := interp.ParseMode(name)
		if !ok {
			return fmt.Errorf("unknown interpolation %q (expected hermite or linear)", name)
		}
		cfg.Interpolation = mode
	}
	if f.Corrected != nil {
		cfg.Corrected = append([]int(nil), f.Corrected...)
	}
	if f.Guide != nil {
		cfg.Guide = append([]int(nil), f.Guide...)
	}
	if f.DCBlockHz != nil {
		cfg.DCBlockHz = *f.DCBlockHz
	}
	if f.MinBPM != nil {
		cfg.MinBPM = *f.MinBPM
	}
	if f.BPMTolerance != nil {
		cfg.BPMTolerance = *f.BPMTolerance
	}

	if f.GateLeft != nil {
		dst.GateLeft = *f.GateLeft
	}
	if f.GateRight != nil {
		dst.GateRight = *f.GateRight
	}
	if dst.GateLeft < 0 || dst.GateRight > 1 || !(dst.GateLeft < dst.GateRight) {
		return fmt.Errorf("gate must satisfy 0 <= gate_left < gate_right <= 1: [%g, %g]",
			dst.GateLeft, dst.GateRight)
	}
	if f.LearningRate != nil {
		r := *f.LearningRate
		if !(r >= align.MinLearningRate && r <= align.MaxLearningRate) {
			return fmt.Errorf("learning_rate must be in [%g, %g]: %g",
				align.MinLearningRate, align.MaxLearningRate, r)
		}
		dst.LearningRate = r
	}

	return cfg.Validate()
}
