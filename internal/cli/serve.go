package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/rpnd/internal/api"
	"github.com/example/rpnd/internal/calc"
	"github.com/example/rpnd/internal/metrics"
	"github.com/example/rpnd/internal/version"
)

// newServeCommand creates the "serve" subcommand that runs the HTTP service.
func newServeCommand(opts *Options) *cobra.Command {
	var (
		addr        string
		metricsAddr string
		metricsOn   bool
		noMetrics   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the RPN stack service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commandLogger(cmd)
			cfg := opts.Config

			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Enabled = metricsOn
			}
			if noMetrics {
				cfg.Metrics.Enabled = false
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			registry := calc.NewRegistry()

			apiCfg := api.Config{
				Addr:              cfg.Server.Addr,
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
				ShutdownTimeout:   cfg.Server.ShutdownTimeout,
				MaxBodyBytes:      cfg.Server.MaxBodyBytes,
			}
			var (
				serverOpts []api.Option
				m          *metrics.Metrics
			)
			if cfg.Metrics.Enabled {
				m = metrics.New(registry.Len)
				serverOpts = append(serverOpts, api.WithMetrics(m))
				if cfg.Metrics.Addr == "" {
					apiCfg.MetricsPath = cfg.Metrics.Path
				}
			}

			srv, err := api.NewServer(apiCfg, registry, logger, serverOpts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting rpnd",
				"version", version.Get().Version,
				"addr", cfg.Server.Addr,
				"metrics", cfg.Metrics.Enabled,
				"metricsAddr", cfg.Metrics.Addr,
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			if m != nil && cfg.Metrics.Addr != "" {
				g.Go(func() error {
					return m.Run(gctx, cfg.Metrics.Addr, cfg.Metrics.Path, logger)
				})
			}
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("rpnd stopped", "stacks", registry.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :5000)")
	cmd.Flags().BoolVar(&metricsOn, "metrics", true, "Serve Prometheus metrics")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Disable Prometheus metrics")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve metrics on a separate listen address")
	cmd.MarkFlagsMutuallyExclusive("metrics", "no-metrics")

	return cmd
}
