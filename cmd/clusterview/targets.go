package main

import (
	"context"
	"errors"
	"fmt"

	smarttv "github.com/nimsforest/nimsforestsmarttv"
	sprites "github.com/nimsforest/nimsforestsprites"
	"go.uber.org/zap"

	"github.com/nimsforest/clusterview"
)

// startViewer wires the configured targets to the mounted view and starts
// pushing state. The returned viewer owns the targets.
func (a *app) startViewer(ctx context.Context) (*clusterview.Viewer, error) {
	v := clusterview.New(
		clusterview.WithInterval(a.cfg.Interval),
		clusterview.WithViewerLogger(a.logger),
		clusterview.WithViewerMetrics(a.metrics))
	v.SetStateProvider(a.view)

	if err := a.addTargets(ctx, v); err != nil {
		v.Close()
		return nil, err
	}
	if len(v.Targets()) == 0 {
		a.logger.Info("no targets enabled")
		return v, nil
	}
	if err := v.Start(ctx); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (a *app) addTargets(ctx context.Context, v *clusterview.Viewer) error {
	cfg := a.cfg
	if cfg.Web.Enabled {
		web, err := clusterview.NewWebTarget(cfg.Web.Addr,
			clusterview.WithView(a.view),
			clusterview.WithWebDir(cfg.Web.Dir),
			clusterview.WithWebMetrics(a.metrics),
			clusterview.WithWebLogger(a.logger))
		if err != nil {
			return err
		}
		v.AddTarget(web)
	}

	if cfg.NATS.Enabled {
		bus, err := clusterview.DialNATS(cfg.NATS.URL, cfg.NATS.Subject,
			clusterview.WithNATSLogger(a.logger))
		if err != nil {
			return err
		}
		v.AddTarget(bus)
	}

	if !cfg.TV.Enabled && !cfg.Video.Enabled {
		return nil
	}
	tv, err := discoverTV(ctx, a)
	if err != nil {
		return err
	}
	size := sprites.Options{Width: cfg.Headless.Width, Height: cfg.Headless.Height, FrameRate: cfg.Video.FPS}

	if cfg.TV.Enabled {
		target, err := clusterview.NewSmartTVTarget(tv,
			clusterview.WithJFIF(cfg.TV.JFIF),
			clusterview.WithSpriteOptions(size),
			clusterview.WithTVFrames(a.view))
		if err != nil {
			return err
		}
		v.AddTarget(target)
	}

	if cfg.Video.Enabled {
		video, err := clusterview.NewVideoTarget(tv,
			clusterview.WithVideoFPS(cfg.Video.FPS),
			clusterview.WithVideoDuration(cfg.Video.Duration),
			clusterview.WithVideoPort(cfg.Video.Port),
			clusterview.WithVideoSpriteOptions(size),
			clusterview.WithVideoFrames(a.view),
			clusterview.WithVideoLogger(a.logger))
		if err != nil {
			return err
		}
		v.AddTarget(video)
		go func() {
			if err := video.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("video stream failed", zap.Error(err))
			}
		}()
	}
	return nil
}

func discoverTV(ctx context.Context, a *app) (*smarttv.TV, error) {
	a.logger.Info("discovering smart TVs", zap.Duration("timeout", a.cfg.TV.Discover))
	tvs, err := smarttv.Discover(ctx, a.cfg.TV.Discover)
	if err != nil {
		return nil, fmt.Errorf("discover TVs: %w", err)
	}
	if len(tvs) == 0 {
		return nil, errors.New("no TVs found on the network")
	}
	tv := &tvs[0]
	a.logger.Info("using TV", zap.String("tv", tv.String()))
	return tv, nil
}
