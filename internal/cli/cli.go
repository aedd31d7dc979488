// Package cli implements the atlas command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/buildinfo"
	"github.com/matzehuels/atlas/pkg/cache"
	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/httputil"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "atlas"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
// ATLAS_LOG_LEVEL, when set, replaces level.
func New(w io.Writer, level log.Level) *CLI {
	lvl, ok, err := levelFromEnv(os.LookupEnv)
	if ok {
		level = lvl
	}
	c := &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
	if err != nil {
		c.Logger.Warn("ignoring log level", "error", err)
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "atlas",
		Short: "Atlas maps a startup ecosystem onto one canvas",
		Long: `Atlas reads the projects of a startup ecosystem from a published sheet,
groups them into category boxes, packs the boxes into columns and renders the
result as SVG, JSON, PNG, PDF or a Graphviz view. It can also serve the atlas
over HTTP, accept new submissions and explore the canvas in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/atlas/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.submitCommand())
	root.AddCommand(c.validateProfileCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// loadConfig reads the configuration file and environment.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	for _, key := range cfg.Unknown {
		c.Logger.Warn("unknown config key", "key", key, "file", cfg.Path)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.newKeyer(), c.Logger), nil
}

func (c *CLI) newKeyer() cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	if p := c.Config.Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(keyer, p)
	}
	return keyer
}

// newCache builds the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Sources
// =============================================================================

// sourceFlags selects the record source on the command line.
type sourceFlags struct {
	file   string
	csvURL string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "read records from a local CSV export")
	cmd.Flags().StringVar(&f.csvURL, "csv-url", "", "published CSV URL of the approved sheet tab")
}

// newSource picks the record source: flags first, then configuration.
// A local file takes precedence over a URL at each level.
func (c *CLI) newSource(f sourceFlags) (source.Source, error) {
	switch {
	case f.file != "":
		return source.FileSource{Path: f.file}, nil
	case f.csvURL != "":
		return c.sheetsSource(f.csvURL), nil
	case c.Config.Source.File != "":
		return source.FileSource{Path: c.Config.Source.File}, nil
	case c.Config.Source.CSVURL != "":
		return c.sheetsSource(c.Config.Source.CSVURL), nil
	}
	return nil, fmt.Errorf("no record source: pass --file or --csv-url, or set source.csv_url (ATLAS_SHEETS_CSV_URL)")
}

func (c *CLI) sheetsSource(url string) *source.SheetsSource {
	client := httputil.NewClient(nil, map[string]string{"User-Agent": buildinfo.UserAgent()})
	return source.NewSheetsSource(url, client, c.Logger)
}

// isLocal reports whether src reads from disk; local records skip the
// records cache since re-reading them is cheap.
func isLocal(src source.Source) bool {
	_, ok := src.(source.FileSource)
	return ok
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/atlas/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions seeds pipeline options from the configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:      c.Config.Layout,
		Formats:     c.Config.Render.Formats,
		Theme:       c.Config.Render.Theme,
		Interactive: c.Config.Render.Interactive,
		Scale:       c.Config.Render.Scale,
		View:        c.Config.Render.View,
		Logger:      c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{string(render.FormatSVG)}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
