package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/campaign-insights/internal/config"
)

// validateCmd checks configuration without touching any export.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, source profiles and header templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
		if err != nil {
			return fmt.Errorf("failed to load source profiles: %w", err)
		}
		for _, p := range profiles {
			settings, err := p.Apply(mainConfig.Parsing)
			if err != nil {
				return err
			}
			if _, err := settings.Options(nil); err != nil {
				return fmt.Errorf("profile %s: %w", p.ProfileName, err)
			}
		}

		variants, err := loadHeaderTemplates(mainConfig.HeaderTemplates)
		if err != nil {
			return err
		}
		if _, err := mainConfig.Parsing.Options(variants); err != nil {
			return err
		}

		n := 0
		for _, vs := range variants {
			n += len(vs)
		}
		fmt.Fprintf(out, "Configuration OK: %d source profile(s), %d header template(s), %d extra header variant(s)\n",
			len(profiles), len(mainConfig.HeaderTemplates), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
