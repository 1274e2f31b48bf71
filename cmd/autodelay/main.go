// Command autodelay aligns the channels of a multi-channel WAV recording.
//
// The corrected channel group is delayed until it lines up with the guide
// group, exactly as the real-time aligner would do inside a host, driven by a
// simulated transport at a fixed tempo.
//
//	autodelay -in take.wav -out aligned.wav -verify
//	autodelay -in take.wav -config preset.json -gate-left 0.25 -gate-right 0.75
//	autodelay -in take.wav -play
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cwbudde/algo-autodelay/dsp/align"
	"github.com/cwbudde/algo-autodelay/dsp/core"
	"github.com/cwbudde/algo-autodelay/internal/preset"
)

type options struct {
	in           string
	out          string
	config       string
	bpm          float64
	startPPQ     float64
	gateLeft     float64
	gateRight    float64
	learningRate float64
	block        int
	verify       bool
	play         bool
	logLevel     string
	set          map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.in, "in", "", "input WAV file (required)")
	fs.StringVar(&o.out, "out", "", "output WAV file")
	fs.StringVar(&o.config, "config", "", "preset JSON file")
	fs.Float64Var(&o.bpm, "bpm", 120, "simulated transport tempo")
	fs.Float64Var(&o.startPPQ, "start-ppq", 0.001, "simulated transport start position in beats")
	fs.Float64Var(&o.gateLeft, "gate-left", 0, "gate window start as a fraction of a beat")
	fs.Float64Var(&o.gateRight, "gate-right", 1, "gate window end as a fraction of a beat")
	fs.Float64Var(&o.learningRate, "learning-rate", align.DefaultLearningRate, "controller learning rate (0.001..1)")
	fs.IntVar(&o.block, "block", 512, "processing block size in frames")
	fs.BoolVar(&o.verify, "verify", false, "measure the channel offset before and after alignment")
	fs.BoolVar(&o.play, "play", false, "play the aligned signal live on the default audio device")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if o.in == "" {
		return nil, errors.New("-in is required")
	}
	if o.out == "" && !o.play && !o.verify {
		return nil, errors.New("nothing to do: give -out, -verify or -play")
	}
	if o.block <= 0 {
		return nil, fmt.Errorf("-block must be > 0: %d", o.block)
	}
	if !(o.bpm > 0) {
		return nil, fmt.Errorf("-bpm must be > 0: %g", o.bpm)
	}
	return o, nil
}

// loadPreset reads the preset file, if any, and lets explicit flags
// override its runtime values.
func loadPreset(o *options) (*preset.Preset, error) {
	p := preset.Default()
	if o.config != "" {
		var err error
		if p, err = preset.LoadJSON(o.config); err != nil {
			return nil, err
		}
	}
	if o.set["gate-left"] {
		p.GateLeft = o.gateLeft
	}
	if o.set["gate-right"] {
		p.GateRight = o.gateRight
	}
	if o.set["learning-rate"] {
		p.LearningRate = o.learningRate
	}
	if !(p.GateLeft >= 0 && p.GateLeft < p.GateRight && p.GateRight <= 1) {
		return nil, fmt.Errorf("gate must satisfy 0 <= left < right <= 1: [%g, %g]", p.GateLeft, p.GateRight)
	}
	return p, nil
}

func run(ctx context.Context, o *options, logger *slog.Logger) error {
	p, err := loadPreset(o)
	if err != nil {
		return fmt.Errorf("load preset: %w", err)
	}

	chans, sampleRate, err := readWAV(o.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Info("input",
		"path", o.in,
		"channels", len(chans),
		"frames", len(chans[0]),
		"sample_rate", sampleRate)

	a, err := align.New(p.Config)
	if err != nil {
		return err
	}
	stream := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(sampleRate)),
		core.WithBlockSize(o.block),
		core.WithNumChannels(len(chans)),
	)
	if err := a.Prepare(stream); err != nil {
		return err
	}
	defer a.Release()
	p.ApplyParams(a.Params())
	logger.Debug("aligner prepared",
		"window", p.Config.WindowSize,
		"max_lag", p.Config.MaxLagSamples,
		"step", p.Config.Step,
		"tolerance_samples", a.Tolerance(),
		"corrected", p.Config.Corrected,
		"guide", p.Config.Guide)

	var before [][]float64
	if o.verify {
		before = cloneChannels(chans)
	}

	tr := transport{sampleRate: float64(sampleRate), bpm: o.bpm, startPPQ: o.startPPQ}
	if o.play {
		src := newStreamSource(a, chans, o.block, tr)
		err := playLive(ctx, src, sampleRate, a.Published(), logger)
		done := src.Stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("play: %w", err)
		}
		if done < src.Total() {
			logger.Info("playback interrupted", "position_s", float64(done)/float64(sampleRate))
			// Finish offline so -out gets the whole file.
			rest := make([][]float64, len(chans))
			for ch := range chans {
				rest[ch] = chans[ch][done:]
			}
			render(a, rest, o.block, transport{
				sampleRate: tr.sampleRate,
				bpm:        tr.bpm,
				startPPQ:   tr.at(done).PPQ,
			}, nil)
		}
	} else {
		pr := newProgress(os.Stderr, "aligning")
		render(a, chans, o.block, tr, pr.update)
		pr.finish()
	}

	pub := a.Published()
	logger.Info("aligned",
		"delay_samples", pub.Delay(),
		"delay_ms", pub.Delay()*1000/float64(sampleRate),
		"estimated_lag", pub.EstimatedLag(),
		"estimates", pub.Estimates())
	if pub.Estimates() == 0 {
		logger.Warn("no estimate was made; the recording may be shorter than the analysis window or the gate never opened",
			"window", p.Config.WindowSize)
	}

	if o.verify {
		pre, err := measureAlignment(before, p.Config, sampleRate)
		if err != nil {
			return err
		}
		post, err := measureAlignment(chans, p.Config, sampleRate)
		if err != nil {
			return err
		}
		logger.Info("verify",
			"before_samples", pre.Precise,
			"before_ms", pre.Ms,
			"before_corr", pre.Correlation,
			"after_samples", post.Precise,
			"after_ms", post.Ms,
			"after_corr", post.Correlation)
	}

	if o.out != "" {
		if err := writeWAV(o.out, chans, sampleRate); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("wrote", "path", o.out)
	}
	return nil
}

func main() {
	o, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "autodelay: %v\n", err)
		os.Exit(2)
	}
	logger, err := newLogger(os.Stderr, o.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "autodelay: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("autodelay failed", "err", err)
		stop()
		os.Exit(1)
	}
}
