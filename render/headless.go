package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	Hz     int
	Ticks  uint64 // stop after this many frames; 0 runs until ctx is done
	Width  int
	Height int

	// OnFrame, if set, receives every drawn frame. The image is reused.
	OnFrame func(*image.RGBA) error
}

// RunHeadless drives e without opening a window. It returns nil when the
// tick budget is spent or the engine stops, and ctx.Err() on cancellation.
func RunHeadless(ctx context.Context, e Engine, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	var img *image.RGBA
	if cfg.OnFrame != nil {
		if cfg.Width <= 0 || cfg.Height <= 0 {
			return fmt.Errorf("invalid headless size: %dx%d", cfg.Width, cfg.Height)
		}
		img = image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := e.Step(d); err != nil {
				if errors.Is(err, ErrStopped) {
					return nil
				}
				return err
			}
			if img != nil {
				e.Draw(img)
				if err := cfg.OnFrame(img); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
