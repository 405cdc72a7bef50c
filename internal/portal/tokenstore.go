package portal

import (
	"sync"
	"time"

	"github.com/finlync/taxgate/internal/core"
)

// expiryPolicy derives a token's usable window from its issuance time.
// The refresh margin is subtracted up front so a token is refreshed early
// instead of being used at the edge of its real expiry.
type expiryPolicy struct {
	lifetime      time.Duration
	refreshMargin time.Duration
}

func (p expiryPolicy) expiresAt(issuedAt time.Time) time.Time {
	return issuedAt.Add(p.lifetime - p.refreshMargin)
}

var expiryPolicies = map[core.TokenKind]expiryPolicy{
	core.GatewayToken:           {lifetime: 50 * time.Minute, refreshMargin: 10 * time.Minute},
	core.DocumentAuthorityToken: {lifetime: 6 * time.Hour, refreshMargin: 30 * time.Minute},
}

// TokenStore holds the two portal tokens for one client instance.
// It is pure state: the Authenticator is the only writer, and token
// read-refresh sequences are serialized there, not here.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[core.TokenKind]core.Token
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[core.TokenKind]core.Token),
	}
}

// Get returns the stored token for the kind, if any.
func (s *TokenStore) Get(kind core.TokenKind) (core.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[kind]
	return tok, ok
}

// Set stores a freshly issued token value. The expiry is computed from the
// issuance time and the kind's expiry policy.
func (s *TokenStore) Set(kind core.TokenKind, value string, issuedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[kind] = core.Token{
		Value:     value,
		IssuedAt:  issuedAt,
		ExpiresAt: expiryPolicies[kind].expiresAt(issuedAt),
	}
}

// Clear drops the token for the kind, forcing re-authentication on next use.
func (s *TokenStore) Clear(kind core.TokenKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, kind)
}

// ClearAll drops both tokens. Used when the portal reports an
// authentication failure mid-flight.
func (s *TokenStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[core.TokenKind]core.Token)
}

// Valid reports whether a usable token of the kind is stored right now.
func (s *TokenStore) Valid(kind core.TokenKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[kind]
	return ok && tok.Valid(time.Now())
}
