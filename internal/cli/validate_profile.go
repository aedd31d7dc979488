package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/atlas/pkg/profile"
)

// validateProfileCommand creates the validate-profile command.
func (c *CLI) validateProfileCommand() *cobra.Command {
	var domains []string

	cmd := &cobra.Command{
		Use:   "validate-profile <url>",
		Short: "Check that a profile URL exists on an allowed domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(domains) == 0 {
				domains = c.Config.Profile.Domains
			}
			return c.runValidateProfile(cmd.Context(), args[0], domains)
		},
	}

	cmd.Flags().StringSliceVar(&domains, "domain", nil, "allowed profile domain (repeatable, default from config)")

	return cmd
}

func (c *CLI) runValidateProfile(ctx context.Context, url string, domains []string) error {
	v := profile.NewValidator(c.Logger)
	if len(domains) > 0 {
		v.AllowedDomains = domains
	}
	if t := c.Config.Profile.Timeout; t > 0 {
		v.Timeout = t
	}

	spinner := newSpinnerWithContext(ctx, "Checking profile...")
	spinner.Start()
	res := v.Validate(ctx, url)
	if !res.Valid {
		spinner.StopWithError("Profile is not valid")
		printProfile(url, res)
		return res.Err()
	}
	spinner.StopWithSuccess("Profile is valid")
	printProfile(url, res)
	return nil
}
