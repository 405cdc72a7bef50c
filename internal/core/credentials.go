package core

// Credentials holds everything one gateway client instance needs to talk to
// the portal on behalf of a single company. Immutable after construction;
// multiple companies require multiple client instances, since the
// document-authority credentials are tied to one registration identifier.
type Credentials struct {
	// BaseURL is the portal base URL, without a trailing slash.
	BaseURL string

	// Environment is the portal environment tag (e.g. "sandbox", "production").
	Environment string

	// APIKey and APISecret authenticate this integration to the gateway layer.
	APIKey    string
	APISecret string

	// Username and Password are the per-integration document-authority
	// credentials.
	Username string
	Password string

	// RegistrationID is the company's government-issued tax registration
	// identifier (fixed 15-character format).
	RegistrationID string
}
