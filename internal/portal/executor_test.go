package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testBackoff() Backoff {
	return Backoff{InitialDelay: time.Millisecond, Multiplier: 2, MaxDelay: 10 * time.Millisecond}
}

func newTestExecutor(stub *portalStub, maxRetries int) *Executor {
	auth, _ := stub.authenticator()
	return NewExecutor(stub.server.URL, stub.server.Client(), auth, testBackoff(), maxRetries, zerolog.Nop())
}

func TestExecuteSuccessAfterTransientFailures(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	stub.opStatuses = []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK}
	exec := newTestExecutor(stub, 3)

	body, err := exec.Execute(context.Background(), http.MethodPost, "/einvoice/generate", map[string]string{"doc": "x"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(string(body), "GEN") {
		t.Errorf("Execute() body = %s, want the scripted success body", body)
	}
	if _, _, opCalls := stub.counts(); opCalls != 3 {
		t.Errorf("operation calls = %d, want 3", opCalls)
	}
}

func TestExecuteClientErrorNotRetried(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	stub.opStatuses = []int{http.StatusBadRequest}
	exec := newTestExecutor(stub, 3)

	_, err := exec.Execute(context.Background(), http.MethodPost, "/einvoice/generate", nil)
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("Execute() error = %v, want *ClientError", err)
	}
	if clientErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", clientErr.StatusCode)
	}
	if !strings.Contains(clientErr.Message, "scripted failure 400") {
		t.Errorf("message = %q, want the portal's message", clientErr.Message)
	}
	if _, _, opCalls := stub.counts(); opCalls != 1 {
		t.Errorf("operation calls = %d, want exactly 1 (no retries)", opCalls)
	}
}

func TestExecuteReauthenticatesOn401(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	stub.opStatuses = []int{http.StatusUnauthorized, http.StatusOK}
	exec := newTestExecutor(stub, 3)

	_, err := exec.Execute(context.Background(), http.MethodGet, "/einvoice/status/ref-1", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// the 401 clears both tokens: exactly one extra full login cycle
	gatewayLogins, documentLogins, opCalls := stub.counts()
	if opCalls != 2 {
		t.Errorf("operation calls = %d, want 2", opCalls)
	}
	if gatewayLogins != 2 || documentLogins != 2 {
		t.Errorf("logins = %d gateway / %d document, want 2 / 2", gatewayLogins, documentLogins)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	stub.opStatuses = []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable}
	exec := newTestExecutor(stub, 3)

	_, err := exec.Execute(context.Background(), http.MethodPost, "/einvoice/generate", nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Execute() error = %v, want *RequestError", err)
	}
	if reqErr.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", reqErr.Attempts)
	}
	if reqErr.Last == nil || !strings.Contains(reqErr.Last.Error(), "503") {
		t.Errorf("last cause = %v, want the final 503", reqErr.Last)
	}
	if _, _, opCalls := stub.counts(); opCalls != 3 {
		t.Errorf("operation calls = %d, want 3", opCalls)
	}
}

func TestExecuteAuthErrorNotRetried(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	stub.gatewayLoginStatus = http.StatusForbidden
	exec := newTestExecutor(stub, 3)

	_, err := exec.Execute(context.Background(), http.MethodPost, "/einvoice/generate", nil)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Execute() error = %v, want *AuthError", err)
	}
	gatewayLogins, _, opCalls := stub.counts()
	if gatewayLogins != 1 {
		t.Errorf("gateway logins = %d, want 1 (no auth retries)", gatewayLogins)
	}
	if opCalls != 0 {
		t.Errorf("operation calls = %d, want 0", opCalls)
	}
}

func TestExecuteCancelledDuringBackoff(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	stub.opStatuses = []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable}
	auth, _ := stub.authenticator()
	// long backoff so cancellation lands in the sleep
	backoff := Backoff{InitialDelay: 10 * time.Second, Multiplier: 2, MaxDelay: 30 * time.Second}
	exec := NewExecutor(stub.server.URL, stub.server.Client(), auth, backoff, 3, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := exec.Execute(ctx, http.MethodPost, "/einvoice/generate", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Execute() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Execute() took %v, should have aborted during the first backoff sleep", elapsed)
	}
	if _, _, opCalls := stub.counts(); opCalls != 1 {
		t.Errorf("operation calls = %d, want 1", opCalls)
	}
}

func TestExecuteAttachesBothTokens(t *testing.T) {
	stub := newPortalStub()
	defer stub.close()
	exec := newTestExecutor(stub, 3)

	if _, err := exec.Execute(context.Background(), http.MethodPost, "/einvoice/generate", map[string]string{"doc": "x"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	stub.mu.Lock()
	header := stub.lastOpHeader
	stub.mu.Unlock()

	if got := header.Get("Authorization"); got != "Bearer gw-token-1" {
		t.Errorf("Authorization = %q, want the gateway token", got)
	}
	if got := header.Get("x-auth-token"); got != "doc-token-1" {
		t.Errorf("x-auth-token = %q, want the document-authority token", got)
	}
	if got := header.Get("x-api-version"); got != "1.0" {
		t.Errorf("x-api-version = %q, want 1.0", got)
	}
	if header.Get("X-Request-Id") == "" {
		t.Error("X-Request-ID header missing")
	}
	if got := header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}
