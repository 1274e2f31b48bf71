package preset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-autodelay/dsp/align"
	"github.com/cwbudde/algo-autodelay/dsp/interp"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadJSONAppliesFields(t *testing.T) {
	path := writePreset(t, `{
  "window_size": 2048,
  "max_lag": 400,
  "step": 2,
  "symmetric": true,
  "max_delay": 800,
  "tolerance_samples": 2,
  "tolerance_ms": 0.5,
  "hop": 1024,
  "interpolation": "linear",
  "corrected": [2, 3],
  "guide": [0, 1],
  "dc_block_hz": 15,
  "min_bpm": 40,
  "bpm_tolerance": 0.5,
  "gate_left": 0.1,
  "gate_right": 0.6,
  "learning_rate": 0.25
}`)

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	c := p.Config
	if c.WindowSize != 2048 || c.MaxLagSamples != 400 || c.Step != 2 || !c.Symmetric {
		t.Fatalf("search fields mismatch: %+v", c)
	}
	if c.MaxDelaySamples != 800 || c.ToleranceMs != 0.5 || c.Hop != 1024 {
		t.Fatalf("sizing fields mismatch: %+v", c)
	}
	if c.ToleranceSamples != 2 || c.ToleranceAt(48000) != 24 {
		t.Fatalf("tolerance fields mismatch: %+v", c)
	}
	if c.Interpolation != interp.Linear || c.DCBlockHz != 15 || c.MinBPM != 40 || c.BPMTolerance != 0.5 {
		t.Fatalf("misc fields mismatch: %+v", c)
	}
	if len(c.Corrected) != 2 || c.Corrected[0] != 2 || len(c.Guide) != 2 || c.Guide[1] != 1 {
		t.Fatalf("channel groups mismatch: %v %v", c.Corrected, c.Guide)
	}
	if p.GateLeft != 0.1 || p.GateRight != 0.6 || p.LearningRate != 0.25 {
		t.Fatalf("runtime fields mismatch: %+v", p)
	}

	params := align.NewParams()
	p.ApplyParams(params)
	if l, r := params.Gate(); l != 0.1 || r != 0.6 {
		t.Fatalf("ApplyParams gate = (%v, %v)", l, r)
	}
	if params.LearningRate() != 0.25 {
		t.Fatalf("ApplyParams learning rate = %v", params.LearningRate())
	}
}

func TestLoadJSONEmptyKeepsDefaults(t *testing.T) {
	p, err := LoadJSON(writePreset(t, `{}`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	want := Default()
	if p.Config.WindowSize != want.Config.WindowSize || p.LearningRate != want.LearningRate ||
		p.GateLeft != 0 || p.GateRight != 1 {
		t.Fatalf("defaults changed: %+v", p)
	}
}

func TestLoadJSONRejectsInvalid(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
	}{
		{name: "syntax", content: `{"window_size": }`},
		{name: "interpolation", content: `{"interpolation": "sinc"}`},
		{name: "gate order", content: `{"gate_left": 0.7, "gate_right": 0.3}`},
		{name: "gate range", content: `{"gate_right": 1.5}`},
		{name: "learning rate", content: `{"learning_rate": 2}`},
		{name: "window", content: `{"window_size": 8}`},
		{name: "overlap", content: `{"corrected": [0]}`},
		{name: "bpm tolerance", content: `{"bpm_tolerance": -1}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadJSON(writePreset(t, tc.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadJSONConfigErrorsWrapSentinel(t *testing.T) {
	_, err := LoadJSON(writePreset(t, `{"max_lag": 0}`))
	if !errors.Is(err, align.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	if _, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestApplyFileNil(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatal("expected error for nil destination")
	}
	if err := ApplyFile(Default(), nil); err != nil {
		t.Fatalf("nil file: %v", err)
	}
}
