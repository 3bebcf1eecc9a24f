package main

import (
	"github.com/spf13/cobra"

	"github.com/nimsforest/clusterview/render/window"
)

func newWindowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Open the interactive 3D view in a desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			w, err := window.New(window.Config{
				Title:  a.cfg.Window.Title,
				Width:  a.cfg.Window.Width,
				Height: a.cfg.Window.Height,
				TPS:    a.cfg.Window.TPS,
			})
			if err != nil {
				return err
			}
			a.view.SetHostLabels(true)
			if err := a.view.Mount(ctx, w); err != nil {
				return err
			}
			defer a.view.Unmount()

			v, err := a.startViewer(ctx)
			if err != nil {
				return err
			}
			defer v.Close()

			go func() {
				<-ctx.Done()
				a.view.Unmount()
			}()
			return w.Run(a.view)
		},
	}
}
