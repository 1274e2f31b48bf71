package align

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-autodelay/dsp/core"
	"github.com/cwbudde/algo-autodelay/dsp/interp"
)

// Limits for Config fields.
const (
	MinWindowSize = 64
	MaxWindowSize = 1 << 16

	MaxToleranceSamples = 4800
	MaxToleranceMs      = 100
	MaxDCBlockHz        = 200

	MinBPMLimit = 1
	MaxBPMLimit = 999
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("align: invalid config")
	// ErrNotPrepared is returned by operations that need Prepare first.
	ErrNotPrepared = errors.New("align: not prepared")
)

// Config collects every tuning constant of the aligner.
type Config struct {
	// WindowSize is the analysis window length in samples.
	WindowSize int
	// MaxLagSamples bounds the lag search.
	MaxLagSamples int
	// Step is the spacing of tested lags.
	Step int
	// Symmetric also searches negative lags. Negative estimates clamp the
	// delay to 0 since a causal line cannot advance a signal.
	Symmetric bool
	// MaxDelaySamples is the delay line capacity. 0 means MaxLagSamples.
	MaxDelaySamples int
	// ToleranceSamples is the controller deadband in samples.
	ToleranceSamples float64
	// ToleranceMs, when > 0, replaces ToleranceSamples with a deadband in
	// milliseconds converted at Prepare.
	ToleranceMs float64
	// Hop is the number of analysed samples between estimates once the
	// ring has filled. 0 means WindowSize.
	Hop int
	// Interpolation selects the delay line kernel.
	Interpolation interp.Mode
	// Corrected lists the channels routed through the delay lines. Their
	// mean is the estimator reference.
	Corrected []int
	// Guide lists the trailing channels the corrected ones are aligned to.
	// Their mean is the estimator target.
	Guide []int
	// DCBlockHz enables a one-pole DC blocker on the analysis path. 0 is off.
	DCBlockHz float64
	// MinBPM is the slowest tempo the display history is pre-sized for.
	MinBPM float64
	// BPMTolerance is the tempo change that triggers a display resize.
	BPMTolerance float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the stock configuration: a 4096-sample window,
// a one-sided 1000-sample search, a one-sample deadband, channel 1
// corrected against channel 0.
func DefaultConfig() Config {
	return Config{
		WindowSize:       4096,
		MaxLagSamples:    1000,
		Step:             1,
		ToleranceSamples: 1.0,
		Interpolation:    interp.Hermite,
		Corrected:        []int{1},
		Guide:            []int{0},
		MinBPM:           30,
		BPMTolerance:     0.01,
	}
}

// WithWindowSize sets the analysis window length.
func WithWindowSize(n int) Option {
	return func(c *Config) { c.WindowSize = n }
}

// WithMaxLag sets the lag search bound.
func WithMaxLag(n int) Option {
	return func(c *Config) { c.MaxLagSamples = n }
}

// WithStep sets the lag search step.
func WithStep(step int) Option {
	return func(c *Config) { c.Step = step }
}

// WithSymmetric enables the two-sided search.
func WithSymmetric(enabled bool) Option {
	return func(c *Config) { c.Symmetric = enabled }
}

// WithMaxDelay sets the delay line capacity in samples.
func WithMaxDelay(n int) Option {
	return func(c *Config) { c.MaxDelaySamples = n }
}

// WithTolerance sets the controller deadband in samples.
func WithTolerance(samples float64) Option {
	return func(c *Config) {
		c.ToleranceSamples = samples
		c.ToleranceMs = 0
	}
}

// WithToleranceMs sets the controller deadband in milliseconds.
func WithToleranceMs(ms float64) Option {
	return func(c *Config) { c.ToleranceMs = ms }
}

// WithHop sets the number of samples between estimates.
func WithHop(n int) Option {
	return func(c *Config) { c.Hop = n }
}

// WithInterpolation selects the delay line kernel.
func WithInterpolation(mode interp.Mode) Option {
	return func(c *Config) { c.Interpolation = mode }
}

// WithChannels sets the corrected and guide channel groups.
func WithChannels(corrected, guide []int) Option {
	return func(c *Config) {
		c.Corrected = append([]int(nil), corrected...)
		c.Guide = append([]int(nil), guide...)
	}
}

// WithDCBlock enables DC blocking on the analysis path.
func WithDCBlock(cutoffHz float64) Option {
	return func(c *Config) { c.DCBlockHz = cutoffHz }
}

// WithMinBPM sets the slowest tempo the display is sized for.
func WithMinBPM(bpm float64) Option {
	return func(c *Config) { c.MinBPM = bpm }
}

// ApplyOptions applies opts to DefaultConfig.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// EffectiveMaxDelay resolves MaxDelaySamples.
func (c Config) EffectiveMaxDelay() int {
	if c.MaxDelaySamples == 0 {
		return c.MaxLagSamples
	}
	return c.MaxDelaySamples
}

// ToleranceAt resolves the deadband in samples at sampleRate.
func (c Config) ToleranceAt(sampleRate float64) float64 {
	if c.ToleranceMs > 0 {
		return core.ProcessorConfig{SampleRate: sampleRate}.SamplesFromMs(c.ToleranceMs)
	}
	return c.ToleranceSamples
}

// EffectiveHop resolves Hop.
func (c Config) EffectiveHop() int {
	if c.Hop == 0 {
		return c.WindowSize
	}
	return c.Hop
}

// Validate checks every field against its documented range.
func (c Config) Validate() error {
	if c.WindowSize < MinWindowSize || c.WindowSize > MaxWindowSize {
		return fmt.Errorf("%w: window size must be in [%d, %d]: %d",
			ErrInvalidConfig, MinWindowSize, MaxWindowSize, c.WindowSize)
	}
	if c.MaxLagSamples < 1 || c.MaxLagSamples >= c.WindowSize {
		return fmt.Errorf("%w: max lag must be in [1, %d]: %d",
			ErrInvalidConfig, c.WindowSize-1, c.MaxLagSamples)
	}
	if c.Step < 1 || c.Step > c.MaxLagSamples {
		return fmt.Errorf("%w: step must be in [1, %d]: %d",
			ErrInvalidConfig, c.MaxLagSamples, c.Step)
	}
	if c.MaxDelaySamples < 0 {
		return fmt.Errorf("%w: max delay must be >= 0: %d", ErrInvalidConfig, c.MaxDelaySamples)
	}
	if !(c.ToleranceSamples >= 0 && c.ToleranceSamples <= MaxToleranceSamples) {
		return fmt.Errorf("%w: tolerance must be in [0, %d] samples: %f",
			ErrInvalidConfig, MaxToleranceSamples, c.ToleranceSamples)
	}
	if !(c.ToleranceMs >= 0 && c.ToleranceMs <= MaxToleranceMs) {
		return fmt.Errorf("%w: tolerance must be in [0, %d] ms: %f",
			ErrInvalidConfig, MaxToleranceMs, c.ToleranceMs)
	}
	if c.Hop < 0 {
		return fmt.Errorf("%w: hop must be >= 0: %d", ErrInvalidConfig, c.Hop)
	}
	if c.Interpolation != interp.Hermite && c.Interpolation != interp.Linear {
		return fmt.Errorf("%w: unknown interpolation mode: %d", ErrInvalidConfig, int(c.Interpolation))
	}
	if err := validateGroup("corrected", c.Corrected); err != nil {
		return err
	}
	if err := validateGroup("guide", c.Guide); err != nil {
		return err
	}
	for _, ch := range c.Corrected {
		for _, g := range c.Guide {
			if ch == g {
				return fmt.Errorf("%w: channel %d is both corrected and guide", ErrInvalidConfig, ch)
			}
		}
	}
	if !(c.DCBlockHz >= 0 && c.DCBlockHz <= MaxDCBlockHz) {
		return fmt.Errorf("%w: DC block cutoff must be in [0, %d] Hz: %f",
			ErrInvalidConfig, MaxDCBlockHz, c.DCBlockHz)
	}
	if !(c.MinBPM >= MinBPMLimit && c.MinBPM <= MaxBPMLimit) {
		return fmt.Errorf("%w: min BPM must be in [%d, %d]: %f",
			ErrInvalidConfig, MinBPMLimit, MaxBPMLimit, c.MinBPM)
	}
	if c.BPMTolerance < 0 || math.IsNaN(c.BPMTolerance) || math.IsInf(c.BPMTolerance, 0) {
		return fmt.Errorf("%w: BPM tolerance must be finite and >= 0: %f", ErrInvalidConfig, c.BPMTolerance)
	}
	return nil
}

func validateGroup(name string, group []int) error {
	if len(group) == 0 {
		return fmt.Errorf("%w: %s channel group is empty", ErrInvalidConfig, name)
	}
	for i, ch := range group {
		if ch < 0 {
			return fmt.Errorf("%w: %s channel must be >= 0: %d", ErrInvalidConfig, name, ch)
		}
		for _, other := range group[:i] {
			if other == ch {
				return fmt.Errorf("%w: %s channel %d listed twice", ErrInvalidConfig, name, ch)
			}
		}
	}
	return nil
}

func (c Config) highestChannel() int {
	hi := -1
	for _, ch := range c.Corrected {
		hi = max(hi, ch)
	}
	for _, ch := range c.Guide {
		hi = max(hi, ch)
	}
	return hi
}
