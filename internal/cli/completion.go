package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/config"
	"github.com/matzehuels/atlas/pkg/layout"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for atlas.

Besides commands and flags, the scripts complete render formats, views and
themes, placement strategies, queue backends, base category ids and tags.

  $ source <(atlas completion bash)
  $ atlas completion zsh > "${fpath[1]}/_atlas"
  $ atlas completion fish > ~/.config/fish/completions/atlas.fish
  PS> atlas completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// flagValues maps flag names to the values offered for them. Flags taking a
// comma-separated list complete the last element.
func flagValues() map[string][]string {
	formats := make([]string, len(render.Formats))
	for i, f := range render.Formats {
		formats[i] = string(f)
	}
	base := atlas.BaseCategories()
	categories := make([]string, len(base))
	for i, cat := range base {
		categories[i] = cat.ID + "\t" + cat.Name
	}
	return map[string][]string{
		"format":    formats,
		"view":      {pipeline.ViewAtlas, pipeline.ViewNodeLink},
		"theme":     {render.ThemeLight.Name, render.ThemeDark.Name},
		"placement": {layout.PlacementGrid, layout.PlacementSample},
		"queue":     {config.QueueMemory, config.QueueSQLite, config.QueueMongo, config.QueueSheets},
		"category":  categories,
		"tag":       {string(atlas.TagOfficial), string(atlas.TagFree), string(atlas.TagPaid)},
	}
}

// registerFlagCompletions attaches value completion to every command that
// defines one of the flags in flagValues.
func registerFlagCompletions(root *cobra.Command) {
	values := flagValues()
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		for name, vals := range values {
			if cmd.Flags().Lookup(name) == nil {
				continue
			}
			_ = cmd.RegisterFlagCompletionFunc(name, completeList(vals))
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// completeList offers vals, completing after the last comma so that
// "svg,p" suggests "svg,png" and "svg,pdf".
func completeList(vals []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		matches := make([]string, 0, len(vals))
		for _, v := range vals {
			if strings.HasPrefix(prefix+v, toComplete) {
				matches = append(matches, prefix+v)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	}
}
