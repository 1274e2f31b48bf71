//go:build headless

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cwbudde/algo-autodelay/dsp/align"
)

func playLive(context.Context, *streamSource, int, align.Published, *slog.Logger) error {
	return errors.New("live playback is not available in headless builds")
}
