package portal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/rs/zerolog"

	"github.com/finlync/taxgate/internal/core"
)

// portalStub scripts the portal's two login endpoints plus one document
// operation endpoint. Operation responses are consumed from opStatuses in
// order; once exhausted, 200 with opBody is served.
type portalStub struct {
	mu sync.Mutex

	gatewayLogins  int
	documentLogins int
	opCalls        int

	gatewayLoginStatus int           // 0 means success
	documentErrDetails []ErrorDetail // served inside a 200 body when set

	opStatuses []int
	opBody     string

	lastOpHeader http.Header

	server *httptest.Server
}

func newPortalStub() *portalStub {
	stub := &portalStub{
		opBody: `{"data":{"Data":{"Status":"GEN"}}}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /authenticate", stub.handleGatewayLogin)
	mux.HandleFunc("POST /einvoice/authenticate", stub.handleDocumentLogin)
	mux.HandleFunc("/", stub.handleOperation)
	stub.server = httptest.NewServer(mux)
	return stub
}

func (s *portalStub) handleGatewayLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gatewayLogins++
	if s.gatewayLoginStatus != 0 {
		w.WriteHeader(s.gatewayLoginStatus)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"access_token": fmt.Sprintf("gw-token-%d", s.gatewayLogins)},
	})
}

func (s *portalStub) handleDocumentLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documentLogins++
	inner := map[string]any{}
	if len(s.documentErrDetails) > 0 {
		inner["ErrorDetails"] = s.documentErrDetails
	} else {
		inner["AuthToken"] = fmt.Sprintf("doc-token-%d", s.documentLogins)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"Data": inner},
	})
}

func (s *portalStub) handleOperation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastOpHeader = r.Header.Clone()
	status := http.StatusOK
	if s.opCalls < len(s.opStatuses) {
		status = s.opStatuses[s.opCalls]
	}
	s.opCalls++

	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"message":"scripted failure %d"}`, status)
		return
	}
	_, _ = w.Write([]byte(s.opBody))
}

func (s *portalStub) counts() (gatewayLogins, documentLogins, opCalls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gatewayLogins, s.documentLogins, s.opCalls
}

func (s *portalStub) close() {
	s.server.Close()
}

func (s *portalStub) credentials() core.Credentials {
	return core.Credentials{
		BaseURL:        s.server.URL,
		Environment:    "sandbox",
		APIKey:         "test-key",
		APISecret:      "test-secret",
		Username:       "apiuser",
		Password:       "apipass",
		RegistrationID: "29ABCDE1234F1Z5",
	}
}

func (s *portalStub) authenticator() (*Authenticator, *TokenStore) {
	store := NewTokenStore()
	auth := NewAuthenticator(s.credentials(), store, s.server.Client(), zerolog.Nop())
	return auth, store
}
