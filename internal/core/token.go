package core

import "time"

// TokenKind identifies one of the two portal credentials the gateway juggles.
type TokenKind string

const (
	// GatewayToken is the short-lived credential for the portal's
	// sandbox/gateway layer. Every request carries it.
	GatewayToken TokenKind = "gateway"

	// DocumentAuthorityToken is the longer-lived, per-registration
	// credential authorizing document submission, cancellation and
	// status queries.
	DocumentAuthorityToken TokenKind = "document_authority"
)

// Token is an opaque portal credential together with its computed validity
// window. ExpiresAt already includes the early-refresh margin, so a token
// is usable iff now is before ExpiresAt; there is no soft-expiry state.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Valid reports whether the token is usable at the given time.
func (t Token) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}
