package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/observability"
	"github.com/matzehuels/atlas/pkg/profile"
	"github.com/matzehuels/atlas/pkg/server"
	"github.com/matzehuels/atlas/pkg/source"
	"github.com/matzehuels/atlas/pkg/submit"
)

// serveCommand creates the serve command running the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		queue     string
		staleTime time.Duration
		noMetrics bool
		src       sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the atlas over HTTP",
		Long: `Serve the atlas over HTTP.

The server fetches the records at startup and again every stale time. It
serves the projects, the computed layout and the rendered SVG, accepts new
submissions into the configured moderation queue, validates profile URLs and
pushes a message to /api/live clients whenever the data changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if queue != "" {
				cfg.Submit.Queue = queue
			}
			if staleTime > 0 {
				cfg.Source.StaleTime = staleTime
			}
			if noMetrics {
				cfg.Server.Metrics = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, src)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&queue, "queue", "", "submission queue: memory, sqlite, mongo, sheets")
	cmd.Flags().DurationVar(&staleTime, "stale-time", 0, "refresh interval for the record source")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	src.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, sf sourceFlags) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	src, err := c.newSource(sf)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Replicas sharing a redis cache share fetches too.
	if !isLocal(src) && cfg.Cache.Backend == config.CacheRedis {
		cached := source.NewCached(src, runner.Cache, runner.Keyer.RecordsKey(source.KeyOf(src)), logger)
		if cfg.Source.StaleTime > 0 {
			cached.TTL = cfg.Source.StaleTime
		}
		src = cached
	}
	loader := source.NewLoader(src, logger)

	queue, err := c.openQueue(ctx, cfg.Submit)
	if err != nil {
		return err
	}
	defer queue.Close()

	validator := profile.NewValidator(logger)
	if len(cfg.Profile.Domains) > 0 {
		validator.AllowedDomains = cfg.Profile.Domains
	}
	if cfg.Profile.Timeout > 0 {
		validator.Timeout = cfg.Profile.Timeout
	}
	validator.Cache = runner.Cache
	validator.Keyer = runner.Keyer

	opts := server.Options{
		Layout:      cfg.Layout,
		Theme:       cfg.Render.Theme,
		Interactive: true,
		StaleTime:   cfg.Source.StaleTime,
		ReadTimeout: cfg.Server.ReadTimeout,
		Logger:      logger,
	}
	if cfg.Server.Metrics {
		prom := observability.NewPrometheus()
		observability.Register(prom)
		opts.Metrics = prom.Handler()
	}

	srv := server.New(loader, runner, submit.NewService(queue, logger), validator, opts)
	prog.done("server ready", "addr", cfg.Server.Addr, "queue", queue, "cache", cfg.Cache.Backend)
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}

// openQueue opens the configured submission queue.
func (c *CLI) openQueue(ctx context.Context, cfg config.SubmitConfig) (submit.Queue, error) {
	switch cfg.Queue {
	case config.QueueSQLite:
		q, err := submit.NewSQLiteQueue(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite queue: %w", err)
		}
		return q, nil
	case config.QueueMongo:
		q, err := submit.NewMongoQueue(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("open mongo queue: %w", err)
		}
		return q, nil
	case config.QueueSheets:
		q, err := submit.NewSheetsQueue(ctx, cfg.Sheets.Options())
		if err != nil {
			return nil, fmt.Errorf("open sheets queue: %w", err)
		}
		return q, nil
	}
	c.Logger.Warn("submissions are kept in memory and lost on restart")
	return submit.NewMemoryQueue(), nil
}
