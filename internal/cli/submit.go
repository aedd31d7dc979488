package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/submit"
)

// defaultServer is used when neither --server nor submit.server is set.
const defaultServer = "http://localhost:8080"

// submitCommand creates the submit command posting a draft to a server.
func (c *CLI) submitCommand() *cobra.Command {
	var (
		server string
		draft  submit.Draft
		tags   []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a project for moderation",
		Long: `Submit a project for moderation.

The draft is posted to a running atlas server, which validates it and appends
it to its moderation queue. Use --custom-category to propose a category that
does not exist yet.`,
		Example: `  atlas submit --name "Launch Lab" --category accelerators --url https://launchlab.example
  atlas submit --name "Guild" --custom-category "Guilds" --custom-color "#14B8A6"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Tags = toTags(tags)
			if draft.CustomCategoryName != "" && draft.Category == "" {
				draft.Category = slug(draft.CustomCategoryName)
			}
			if server == "" {
				server = c.Config.Submit.Server
			}
			if server == "" {
				server = defaultServer
			}
			return c.runSubmit(cmd.Context(), server, draft)
		},
	}

	f := cmd.Flags()
	f.StringVar(&server, "server", "", "atlas server base URL (default from config, "+defaultServer+")")
	f.StringVar(&draft.Name, "name", "", "project name (required)")
	f.StringVar(&draft.Category, "category", "", "category id")
	f.StringVar(&draft.Description, "description", "", "short description")
	f.StringVar(&draft.URL, "url", "", "project website")
	f.StringVar(&draft.GuideURL, "guide-url", "", "profile or guide URL")
	f.StringVar(&draft.ImageURL, "image-url", "", "logo URL")
	f.StringVar(&draft.Emoji, "emoji", "", "emoji shown when no logo is available")
	f.StringSliceVar(&draft.ProductImages, "product-image", nil, "product image URL (repeatable)")
	f.StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	f.StringVar(&draft.CustomCategoryName, "custom-category", "", "propose a new category with this name")
	f.StringVar(&draft.CustomCategoryColor, "custom-color", "", "color of the proposed category")

	return cmd
}

func (c *CLI) runSubmit(ctx context.Context, server string, d submit.Draft) error {
	spinner := newSpinnerWithContext(ctx, "Submitting...")
	spinner.Start()
	res := submit.NewClient(server).Submit(ctx, d)
	if !res.Success {
		spinner.StopWithError("Submission rejected")
		return fmt.Errorf("%s", res.Error)
	}
	spinner.StopWithSuccess("Submitted for review")

	printSubmission(d.Name, res.ID, server)
	return nil
}

// slug derives a category id from a display name.
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
