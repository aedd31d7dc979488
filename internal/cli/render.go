package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/publish"
	"github.com/matzehuels/atlas/pkg/render"
)

const defaultRenderBase = "atlas"

// renderCommand creates the render command: fetch, layout and render in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr  string
		output      string
		noCache     bool
		refresh     bool
		tags        []string
		publishTo   string
		src         sourceFlags
		lf          layoutFlags
		theme       string
		highlight   string
		interactive bool
		detailed    bool
		view        string
		scale       float64
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the atlas to SVG, JSON, PNG, PDF or DOT",
		Long: `Render the atlas from the record source.

Formats:
  svg   the atlas canvas (add --interactive for hover and click behavior)
  json  the computed layout with canvas coordinates
  png   rasterized SVG (requires rsvg-convert)
  pdf   vector PDF (requires rsvg-convert)
  dot   a Graphviz view with one cluster per category

With --view nodelink the svg, png and pdf formats draw the Graphviz view
instead of the packed canvas.

With --publish s3://bucket/prefix the artifacts are also uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if cmd.Flags().Changed("format") || len(opts.Formats) == 0 {
				opts.Formats = parseFormats(formatsStr)
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if theme != "" {
				opts.Theme = theme
			}
			if cmd.Flags().Changed("interactive") {
				opts.Interactive = interactive
			}
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}
			if view != "" {
				opts.View = view
			}
			opts.Highlight = highlight
			opts.Detailed = detailed
			opts.Refresh = refresh
			opts.Tags = toTags(tags)
			lf.apply(cmd, &opts.Layout)

			if output == "" {
				output = c.Config.Render.Output
			}
			if publishTo == "" {
				publishTo = c.Config.Publish.Target
			}
			return c.runRender(cmd.Context(), src, opts, output, publishTo, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached records")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "keep only projects carrying every tag")
	cmd.Flags().StringVar(&publishTo, "publish", "", "upload artifacts to s3://bucket/prefix")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: light (default), dark")
	cmd.Flags().StringVar(&highlight, "highlight", "", "project id to highlight")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "embed hover and click behavior in the SVG")
	cmd.Flags().StringVar(&view, "view", "", "svg/png/pdf view: atlas (default), nodelink")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include emoji and tags in DOT labels")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultPNGScale, "PNG scale factor")
	src.register(cmd)
	lf.register(cmd, c.Config.Layout)

	return cmd
}

// runRender executes the full pipeline and writes or publishes the artifacts.
func (c *CLI) runRender(ctx context.Context, sf sourceFlags, opts pipeline.Options, output, publishTo string, noCache bool) error {
	src, err := c.newSource(sf)
	if err != nil {
		return err
	}
	if isLocal(src) {
		opts.Refresh = true
	}
	for _, f := range opts.Formats {
		if format, _ := render.ParseFormat(f); format.Binary() && !render.ConverterAvailable() {
			return fmt.Errorf("format %s needs %s; install librsvg", f, render.ConverterBinary)
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering atlas...")
	spinner.Start()
	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if len(result.Projects) == 0 {
		printWarning("No projects matched; the atlas is empty")
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output)
	if err != nil {
		return err
	}
	printSuccess("Rendered %d projects", result.Stats.ProjectCount)
	for _, p := range paths {
		printFile(p)
	}
	cached := result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printStats(statsOf(result.Layout, result.Stats.ProjectCount, cached))

	if publishTo == "" {
		return nil
	}
	return c.publishArtifacts(ctx, publishTo, result)
}

func (c *CLI) publishArtifacts(ctx context.Context, target string, result *pipeline.Result) error {
	tgt, err := publish.ParseTarget(target)
	if err != nil {
		return err
	}
	pc := c.Config.Publish
	pub, err := publish.New(ctx, tgt, publish.Options{
		Region:    pc.Region,
		Endpoint:  pc.Endpoint,
		PathStyle: pc.PathStyle,
	}, c.Logger)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Publishing to "+tgt.String()+"...")
	spinner.Start()
	objs, err := pub.Publish(ctx, result.Artifacts, result.Version)
	if err != nil {
		spinner.StopWithError("Publish failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Published %d artifacts", len(objs)))
	for _, o := range objs {
		printFile(o.URL)
	}
	return nil
}

// artifactPaths maps each format to an output path. A single format with an
// explicit output uses it as is; otherwise output is a base path whose known
// extension is stripped.
func artifactPaths(formats []string, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output, defaulting to "atlas".
func basePath(output string) string {
	if output == "" {
		return defaultRenderBase
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes each artifact in format order and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := artifactPaths(formats, output)
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		if err := writeFile(paths[f], data); err != nil {
			return out, err
		}
		out = append(out, paths[f])
	}
	return out, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
