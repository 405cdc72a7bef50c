package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/finlync/taxgate/internal/cliconfig"
	"github.com/finlync/taxgate/internal/core"
	"github.com/finlync/taxgate/pkg/gateway"
)

var (
	loginAPIKey    string
	loginAPISecret string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify portal API credentials and save them locally",
	Long: `Performs a gateway-layer authentication against the configured portal to
verify the API key pair, then saves the pair to the local credential store
so future commands can omit it from the config file.`,
	Example: `  taxgate login --api-key KEY --api-secret SECRET`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := factory.LoadConfig()
		if err != nil {
			return err
		}

		// the gateway layer only needs the key pair, no company credentials
		gw := gateway.New(core.Credentials{
			BaseURL:     cfg.Portal.BaseURL,
			Environment: cfg.Portal.Environment,
			APIKey:      loginAPIKey,
			APISecret:   loginAPISecret,
		},
			gateway.WithHTTPClient(httpClientFor(cfg)),
			gateway.WithLogger(log.Logger),
		)

		log.Info().Msgf("Verifying credentials against %q...", cfg.Portal.BaseURL)
		if _, err := gw.Authenticator().ValidToken(cmd.Context(), core.GatewayToken); err != nil {
			log.Error().Msgf("%s credential verification failed: %v", redCross, err)
			return BeQuietError{}
		}

		stored, err := cliconfig.Load()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loading credential store: %w", err)
			}
			stored = &cliconfig.CLIConfig{}
		}
		if err := stored.SetCredential(cfg.Portal.BaseURL, &cliconfig.Credential{
			APIKey:    loginAPIKey,
			APISecret: loginAPISecret,
		}); err != nil {
			return err
		}
		if err := cliconfig.Save(stored); err != nil {
			return fmt.Errorf("saving credential store: %w", err)
		}

		log.Info().Msgf("%s credentials verified and saved", greenCheck)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVar(&loginAPIKey, "api-key", "", "The portal API key")
	loginCmd.Flags().StringVar(&loginAPISecret, "api-secret", "", "The portal API secret")
	_ = loginCmd.MarkFlagRequired("api-key")
	_ = loginCmd.MarkFlagRequired("api-secret")
}
