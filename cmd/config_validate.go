package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Loads the configuration file, applies defaults, and checks the portal
section and every company entry (including the registration identifier
format).`,
	Example: `  taxgate config validate -c taxgate.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := factory.LoadConfig()
		if err != nil {
			log.Error().Msgf("%s configuration is invalid: %v", redCross, err)
			return BeQuietError{}
		}

		log.Info().Msgf("%s configuration is valid (%d company entries, environment %q)",
			greenCheck, len(cfg.Companies), cfg.Portal.Environment)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
