package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/finlync/taxgate/internal/cliconfig"
	"github.com/finlync/taxgate/internal/config"
	"github.com/finlync/taxgate/internal/core"
	"github.com/finlync/taxgate/internal/portal"
	"github.com/finlync/taxgate/pkg/gateway"
)

// viper keys for env overrides (TAXGATE_API_KEY, TAXGATE_API_SECRET).
const (
	APIKeyKey    = "api_key"
	APISecretKey = "api_secret"
)

// factory is shared by all commands; flags are bound in root's init.
var factory = NewFactory()

type Factory struct {
	// ConfigPath is the gateway configuration file.
	ConfigPath string

	// Company selects one of the configured companies.
	Company string
}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) bindPersistentFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&f.ConfigPath, "config", "c", "taxgate.yaml", "The taxgate configuration file to use")
	flags.StringVar(&f.Company, "company", "", "The configured company to act for (defaults to the sole entry)")
}

func (f *Factory) LoadConfig() (*config.Config, error) {
	if f.ConfigPath == "" {
		return nil, fmt.Errorf("config file not specified (use --config)")
	}
	return config.Load(f.ConfigPath)
}

// ResolveCredentials builds the full portal credentials for the selected
// company. API key/secret priority: config file, then the credential store
// populated by 'taxgate login', then environment.
func (f *Factory) ResolveCredentials() (*core.Credentials, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, err
	}

	company, err := cfg.Company(f.Company)
	if err != nil {
		return nil, err
	}
	companyCreds, err := company.Credentials()
	if err != nil {
		return nil, err
	}

	apiKey, apiSecret := cfg.Portal.APIKey, cfg.Portal.APISecret
	if apiKey == "" {
		if stored, err := cliconfig.Load(); err == nil {
			if cred, err := stored.GetCredential(cfg.Portal.BaseURL); err == nil {
				apiKey, apiSecret = cred.APIKey, cred.APISecret
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Msg("skipping saved credentials")
		}
	}
	if apiKey == "" {
		apiKey = viper.GetString(APIKeyKey)
		apiSecret = viper.GetString(APISecretKey)
	}
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("portal API credentials not configured (set them in the config file, run 'taxgate login', or set TAXGATE_API_KEY/TAXGATE_API_SECRET)")
	}

	return &core.Credentials{
		BaseURL:        cfg.Portal.BaseURL,
		Environment:    cfg.Portal.Environment,
		APIKey:         apiKey,
		APISecret:      apiSecret,
		Username:       companyCreds.Username,
		Password:       companyCreds.Password,
		RegistrationID: companyCreds.RegistrationID,
	}, nil
}

// GetGateway returns a ready gateway client for the selected company.
func (f *Factory) GetGateway() (*gateway.Client, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, err
	}
	creds, err := f.ResolveCredentials()
	if err != nil {
		return nil, err
	}

	return gateway.New(*creds,
		gateway.WithHTTPClient(httpClientFor(cfg)),
		gateway.WithMaxRetries(cfg.Portal.Retry.MaxRetries),
		gateway.WithBackoff(portal.Backoff{
			InitialDelay: cfg.Portal.Retry.InitialDelay,
			Multiplier:   cfg.Portal.Retry.Multiplier,
			MaxDelay:     cfg.Portal.Retry.MaxDelay,
		}),
		gateway.WithLogger(log.Logger),
	), nil
}
