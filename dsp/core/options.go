package core

import (
	"fmt"
	"math"
)

// ProcessorConfig describes one stream configuration: the sample rate, the
// largest block the host will deliver and the number of channels per block.
// A change of any field is a stream-configuration event and requires the
// processors to be prepared again.
type ProcessorConfig struct {
	SampleRate  float64
	BlockSize   int
	NumChannels int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for a stereo stream.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:  48000,
		BlockSize:   512,
		NumChannels: 2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the maximum processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithNumChannels sets the channel count of every block.
func WithNumChannels(numChannels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if numChannels > 0 {
			cfg.NumChannels = numChannels
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether the configuration can be used to size buffers.
func (c ProcessorConfig) Validate() error {
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("sample rate must be > 0 and finite: %f", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0: %d", c.BlockSize)
	}
	if c.NumChannels <= 0 {
		return fmt.Errorf("channel count must be > 0: %d", c.NumChannels)
	}
	return nil
}

// SamplesFromMs converts a duration in milliseconds to samples at the
// configured sample rate.
func (c ProcessorConfig) SamplesFromMs(ms float64) float64 {
	return ms * c.SampleRate / 1000
}
