// Package gateway is the tax authority integration client: it
// authenticates against the portal's two security layers, submits and
// cancels documents, and queries their status.
//
// One Client serves one company configuration. The document-authority
// credentials are tied to a single registration identifier, so multiple
// companies need multiple Client instances.
package gateway

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finlync/taxgate/internal/core"
	"github.com/finlync/taxgate/internal/portal"
)

// DefaultTimeout is the per-call HTTP timeout used when no custom client
// is supplied.
const DefaultTimeout = 30 * time.Second

type Client struct {
	creds      core.Credentials
	httpClient *http.Client
	backoff    portal.Backoff
	maxRetries int
	logger     zerolog.Logger

	auth *portal.Authenticator
	exec *portal.Executor
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBackoff replaces the default retry backoff (1s initial, doubling,
// 30s cap).
func WithBackoff(b portal.Backoff) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

// WithMaxRetries sets the total attempt budget per operation.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithLogger attaches a logger; retry attempts and login stages are logged
// at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a gateway client for one company's portal credentials.
func New(creds core.Credentials, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		backoff:    portal.DefaultBackoff(),
		maxRetries: portal.DefaultMaxRetries,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	store := portal.NewTokenStore()
	c.auth = portal.NewAuthenticator(creds, store, c.httpClient, c.logger)
	c.exec = portal.NewExecutor(creds.BaseURL, c.httpClient, c.auth, c.backoff, c.maxRetries, c.logger)
	return c
}

// Authenticator exposes the login layer for callers that only need to
// verify credentials (e.g. the login command).
func (c *Client) Authenticator() *portal.Authenticator {
	return c.auth
}
