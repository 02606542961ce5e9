package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plantgate/pkg/observability"
	"github.com/matzehuels/plantgate/pkg/observability/prom"
	"github.com/matzehuels/plantgate/pkg/server"
)

// serveCommand creates the "serve" command, which exposes the lookup
// pipeline over HTTP for the planner front end.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plant lookups over HTTP",
		Long: `Start the HTTP API. All requests share one rate gate and one cache, so
concurrent front-end sessions cannot exceed the upstream quota together.

Routes:
  GET /plants?q=<term>&limit=<n>
  GET /plants/{id}
  GET /healthz
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cfg.Perenual.APIKey == "" {
				c.Logger.Warn("no Perenual API key configured; lookups will report API_KEY_MISSING")
			}

			s, err := c.newStack(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			opts := server.Options{
				Addr:         cfg.Server.Addr,
				Logger:       c.Logger,
				Gate:         s.gate,
				DefaultLimit: cfg.Perenual.DefaultLimit,
			}
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				m := prom.New(reg)
				m.Register()
				m.WatchGate(s.gate)
				defer observability.Reset()
				opts.Gatherer = reg
			}

			c.Logger.Info("plantgate listening",
				"addr", cfg.Server.Addr,
				"cache", cfg.Cache.Backend,
				"rpm", cfg.RateLimit.RequestsPerMinute,
				"concurrent", cfg.RateLimit.MaxConcurrent)

			return server.New(s.plants, opts).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}
