package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/finlync/taxgate/internal/validation"
)

type Config struct {
	Portal    PortalConfig    `yaml:"portal"`
	Companies []CompanyConfig `yaml:"companies"`
}

// PortalConfig holds the gateway-layer connection settings shared by all
// companies of one deployment.
type PortalConfig struct {
	// BaseURL is the portal base URL (no trailing slash).
	BaseURL string `yaml:"base_url"`

	// Environment is the portal environment tag: "sandbox" or "production".
	Environment string `yaml:"environment"`

	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`

	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration `yaml:"timeout"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig tunes the executor's retry loop.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// CompanyConfig holds one company entry. The credential fields are captured
// as an inline map and decoded on demand, so new portal-specific fields
// don't require a schema change here.
type CompanyConfig struct {
	Name   string         `yaml:"name"`
	Config map[string]any `yaml:",inline"`
}

// CompanyCredentials are the document-authority credentials of one company.
type CompanyCredentials struct {
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	RegistrationID string `mapstructure:"registration_id"`
}

// Credentials decodes the company's inline credential fields.
func (c CompanyConfig) Credentials() (*CompanyCredentials, error) {
	var creds CompanyCredentials
	if err := mapstructure.Decode(c.Config, &creds); err != nil {
		return nil, fmt.Errorf("decoding credentials for company %q: %w", c.Name, err)
	}
	return &creds, nil
}

// Load reads, defaults, and validates the configuration file at the given
// path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Portal.Environment == "" {
		c.Portal.Environment = "sandbox"
	}
	if c.Portal.Timeout == 0 {
		c.Portal.Timeout = 30 * time.Second
	}
	if c.Portal.Retry.MaxRetries == 0 {
		c.Portal.Retry.MaxRetries = 3
	}
	if c.Portal.Retry.InitialDelay == 0 {
		c.Portal.Retry.InitialDelay = time.Second
	}
	if c.Portal.Retry.MaxDelay == 0 {
		c.Portal.Retry.MaxDelay = 30 * time.Second
	}
	if c.Portal.Retry.Multiplier == 0 {
		c.Portal.Retry.Multiplier = 2
	}
}

func (c *Config) Validate() error {
	if err := c.Portal.Validate(); err != nil {
		return fmt.Errorf("portal: %w", err)
	}

	if len(c.Companies) == 0 {
		return fmt.Errorf("at least one company must be configured")
	}
	seenNames := make(map[string]struct{})
	for idx, company := range c.Companies {
		if company.Name == "" {
			return fmt.Errorf("company at index %d has empty name", idx)
		}
		if _, exists := seenNames[company.Name]; exists {
			return fmt.Errorf("company name %q is not unique", company.Name)
		}
		seenNames[company.Name] = struct{}{}

		creds, err := company.Credentials()
		if err != nil {
			return err
		}
		if err := creds.Validate(); err != nil {
			return fmt.Errorf("company %q: %w", company.Name, err)
		}
	}

	return nil
}

func (p *PortalConfig) Validate() error {
	if p.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(p.BaseURL); err != nil {
		return fmt.Errorf("parsing base_url: %w", err)
	}
	if strings.HasSuffix(p.BaseURL, "/") {
		return fmt.Errorf("base_url must not end with a slash")
	}
	if p.Environment != "sandbox" && p.Environment != "production" {
		return fmt.Errorf("environment must be \"sandbox\" or \"production\", got %q", p.Environment)
	}
	// api_key/api_secret may come from the saved credential store or the
	// environment instead of the file, so they are not required here.
	if p.Retry.MaxRetries < 1 {
		return fmt.Errorf("retry.max_retries must be at least 1")
	}
	if p.Retry.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be at least 1")
	}
	return nil
}

func (c *CompanyCredentials) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.RegistrationID == "" {
		return fmt.Errorf("registration_id is required")
	}
	if !validation.ValidRegistrationID(c.RegistrationID) {
		return fmt.Errorf("registration_id %q does not match the 15-character registration identifier format", c.RegistrationID)
	}
	return nil
}

// Company returns the named company entry. With an empty name and exactly
// one configured company, that company is returned.
func (c *Config) Company(name string) (*CompanyConfig, error) {
	if name == "" {
		if len(c.Companies) == 1 {
			return &c.Companies[0], nil
		}
		return nil, fmt.Errorf("multiple companies configured, select one with --company")
	}
	for i := range c.Companies {
		if c.Companies[i].Name == name {
			return &c.Companies[i], nil
		}
	}
	return nil, fmt.Errorf("company %q not found in config", name)
}
