package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/render"
	"github.com/matzehuels/atlas/pkg/source"
)

const defaultLayoutOutput = "atlas.layout.json"

// layoutFlags are the layout options exposed on the command line. Unset
// flags keep the configured values.
type layoutFlags struct {
	placement string
	columns   []float64
	gap       float64
	cellWidth float64
	perRow    int
}

func (f *layoutFlags) register(cmd *cobra.Command, defaults layout.Options) {
	cmd.Flags().StringVar(&f.placement, "placement", "", "placement for larger groups: grid (default), sample")
	cmd.Flags().Float64SliceVar(&f.columns, "columns", nil, "column widths (e.g. 500,420,380)")
	cmd.Flags().Float64Var(&f.gap, "gap", defaults.Gap, "gap between boxes")
	cmd.Flags().Float64Var(&f.cellWidth, "cell-width", defaults.CellWidth, "width of one item cell")
	cmd.Flags().IntVar(&f.perRow, "items-per-row", defaults.ItemsPerRow, "items per row when sizing boxes")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *layout.Options) {
	if f.placement != "" {
		opts.Placement = f.placement
	}
	if len(f.columns) > 0 {
		opts.Columns = f.columns
	}
	if cmd.Flags().Changed("gap") {
		opts.Gap = f.gap
	}
	if cmd.Flags().Changed("cell-width") {
		opts.CellWidth = f.cellWidth
	}
	if cmd.Flags().Changed("items-per-row") {
		opts.ItemsPerRow = f.perRow
	}
}

// layoutCommand creates the layout command for computing the atlas layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		tags    []string
		src     sourceFlags
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the atlas layout",
		Long: `Compute the atlas layout from the record source.

The layout command fetches the projects, groups them by category, packs the
category boxes into columns and places each project inside its box. The
result is written as JSON (the same document as 'render -f json').

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.Refresh = refresh
			opts.Tags = toTags(tags)
			lf.apply(cmd, &opts.Layout)
			return c.runLayout(cmd.Context(), src, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultLayoutOutput, "output file (- for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached records")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "keep only projects carrying every tag")
	src.register(cmd)
	lf.register(cmd, c.Config.Layout)

	return cmd
}

// runLayout fetches the records, computes the layout and writes it.
func (c *CLI) runLayout(ctx context.Context, sf sourceFlags, opts pipeline.Options, output string, noCache bool) error {
	src, err := c.newSource(sf)
	if err != nil {
		return err
	}
	if isLocal(src) {
		opts.Refresh = true
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Fetching projects...")
	spinner.Start()
	projects, fetchHit, err := runner.FetchWithCacheInfo(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch projects: %w", err)
	}
	projects = atlas.FilterByTags(projects, opts.Tags...)

	spinner.SetMessage(fmt.Sprintf("Laying out %d projects...", len(projects)))
	l, layoutHit, err := runner.ComputeLayoutWithCacheInfo(ctx, projects, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := render.RenderJSON(l, render.WithJSONVersion(source.Version(projects)), render.WithJSONIndent())
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if output == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := writeFile(output, data); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(statsOf(l, len(projects), fetchHit && layoutHit))
	printBoxes(l)
	printNewline()
	printNextStep("Render", "atlas render -f svg,png")
	return nil
}

func toTags(in []string) []atlas.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]atlas.Tag, len(in))
	for i, t := range in {
		out[i] = atlas.Tag(t)
	}
	return out
}
