package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/atlas"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		src     sourceFlags
		limit   int
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search projects by name, description or category",
		Long: `Search projects by name, description or category.

Name matches are listed first. Matching is case-insensitive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), src, args[0], limit, asJSON, noCache)
		},
	}

	src.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSearch(ctx context.Context, sf sourceFlags, query string, limit int, asJSON, noCache bool) error {
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	src, err := c.newSource(sf)
	if err != nil {
		return err
	}
	opts := c.pipelineOptions()
	opts.Refresh = isLocal(src)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	projects, err := runner.Fetch(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("fetch projects: %w", err)
	}
	cats := atlas.ResolveCategories(projects, atlas.BaseCategories())
	hits := atlas.Search(projects, cats, query, limit)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if hits == nil {
			hits = []atlas.Project{}
		}
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		printInfo("No projects match %q", query)
		return nil
	}
	idx := atlas.CategoryIndex(cats)
	for _, p := range hits {
		cat := idx[p.Category]
		printProject(p, cat)
	}
	printNewline()
	printInfo("%s of %s projects", StyleNumber.Render(strconv.Itoa(len(hits))), StyleNumber.Render(strconv.Itoa(len(projects))))
	return nil
}
