package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nimsforest/clusterview/render"
)

func newHeadlessCommand(opts *options) *cobra.Command {
	var (
		ticks  uint64
		output string
	)
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the view without a window and serve it to the configured targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.logger.Sync()
			if cmd.Flags().Changed("ticks") {
				a.cfg.Headless.Ticks = ticks
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			hc := a.cfg.Headless
			c := &render.FixedContainer{W: hc.Width, H: hc.Height}
			if err := a.view.Mount(ctx, c); err != nil {
				return err
			}
			defer a.view.Unmount()

			v, err := a.startViewer(ctx)
			if err != nil {
				return err
			}
			defer v.Close()

			a.logger.Info("running headless",
				zap.Int("hz", hc.Hz),
				zap.Uint64("ticks", hc.Ticks))
			err = render.RunHeadless(ctx, a.view, render.HeadlessConfig{
				Hz:     hc.Hz,
				Ticks:  hc.Ticks,
				Width:  hc.Width,
				Height: hc.Height,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if output != "" {
				return writePNG(a, output)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "Stop after this many frames (0 runs until interrupted)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the last frame to this PNG file")
	return cmd
}

func writePNG(a *app, path string) error {
	hc := a.cfg.Headless
	img := image.NewRGBA(image.Rect(0, 0, hc.Width, hc.Height))
	if err := a.view.DrawFrame(img); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	a.logger.Info("frame written", zap.String("path", path))
	return f.Close()
}
