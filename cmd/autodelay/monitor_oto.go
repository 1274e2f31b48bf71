//go:build !headless

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-autodelay/dsp/align"
)

// playLive plays src on the default audio device. The device pulls src,
// so the aligner runs on the audio goroutine while this one only polls the
// published state.
func playLive(ctx context.Context, src *streamSource, sampleRate int, pub align.Published, logger *slog.Logger) error {
	channels := len(src.chans)
	if channels > 2 {
		return fmt.Errorf("live playback supports 1 or 2 channels, got %d", channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}
	octx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := octx.NewPlayer(src)
	player.Play()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	lastDelay := int64(-1)
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			_ = player.Close()
			return ctx.Err()
		case <-ticker.C:
		}
		if d := pub.DelaySamples(); d != lastDelay {
			lastDelay = d
			logger.Info("delay",
				"samples", d,
				"estimated_lag", pub.EstimatedLag(),
				"position_s", float64(src.Frames())/float64(sampleRate))
		}
	}
	return player.Close()
}
