package portal

import (
	"testing"
	"time"

	"github.com/finlync/taxgate/internal/core"
)

func TestTokenStoreExpiry(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		kind      core.TokenKind
		issuedAt  time.Time
		wantValid bool
	}{
		{"Gateway fresh", core.GatewayToken, now, true},
		{"Gateway inside 40min window", core.GatewayToken, now.Add(-39 * time.Minute), true},
		{"Gateway past early-refresh point", core.GatewayToken, now.Add(-41 * time.Minute), false},
		{"Document fresh", core.DocumentAuthorityToken, now, true},
		{"Document inside 5.5h window", core.DocumentAuthorityToken, now.Add(-5 * time.Hour), true},
		{"Document past early-refresh point", core.DocumentAuthorityToken, now.Add(-6 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewTokenStore()
			store.Set(tt.kind, "some-token", tt.issuedAt)
			if got := store.Valid(tt.kind); got != tt.wantValid {
				t.Errorf("Valid(%s) = %v, want %v", tt.kind, got, tt.wantValid)
			}
		})
	}
}

func TestTokenStoreLifecycle(t *testing.T) {
	store := NewTokenStore()

	if _, ok := store.Get(core.GatewayToken); ok {
		t.Fatal("empty store returned a token")
	}
	if store.Valid(core.GatewayToken) {
		t.Fatal("empty store reported a valid token")
	}

	store.Set(core.GatewayToken, "gw", time.Now())
	store.Set(core.DocumentAuthorityToken, "doc", time.Now())

	tok, ok := store.Get(core.GatewayToken)
	if !ok || tok.Value != "gw" {
		t.Fatalf("Get(gateway) = %+v, %v; want value 'gw'", tok, ok)
	}
	if !tok.ExpiresAt.After(tok.IssuedAt) {
		t.Fatalf("expiry %v not after issuance %v", tok.ExpiresAt, tok.IssuedAt)
	}

	store.Clear(core.GatewayToken)
	if _, ok := store.Get(core.GatewayToken); ok {
		t.Fatal("Clear did not drop the gateway token")
	}
	if !store.Valid(core.DocumentAuthorityToken) {
		t.Fatal("Clear dropped the other kind too")
	}

	store.ClearAll()
	if store.Valid(core.DocumentAuthorityToken) {
		t.Fatal("ClearAll left a valid token behind")
	}
}
