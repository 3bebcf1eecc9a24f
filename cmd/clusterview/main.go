// Command clusterview shows a cluster topology in 3D, in a desktop window or
// headless, and publishes the view to web, TV and NATS targets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nimsforest/clusterview"
	"github.com/nimsforest/clusterview/topology"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	source     string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "clusterview",
		Short:         "Interactive 3D view of a cluster's machines and workloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "Topology source override: demo, file or kube")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(newWindowCommand(opts))
	cmd.AddCommand(newHeadlessCommand(opts))
	cmd.AddCommand(newTopologyCommand(opts))
	return cmd
}

// app is what every subcommand starts from.
type app struct {
	cfg     *clusterview.Config
	logger  *zap.Logger
	metrics *clusterview.Metrics
	source  topology.Source
	view    *clusterview.View
}

func (o *options) load() (*app, error) {
	cfg := clusterview.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = clusterview.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.source != "" {
		cfg.Source.Kind = o.source
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := clusterview.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	src, err := cfg.Source.Open()
	if err != nil {
		return nil, err
	}
	metrics := clusterview.NewMetrics()
	view := clusterview.NewView(src,
		clusterview.WithLogger(logger),
		clusterview.WithMetrics(metrics))
	return &app{cfg: cfg, logger: logger, metrics: metrics, source: src, view: view}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
