package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/finlync/taxgate/internal/core"
)

const (
	gatewayLoginPath  = "/authenticate"
	documentLoginPath = "/einvoice/authenticate"

	apiVersion = "1.0"
)

// Authenticator performs the two-stage portal login and owns all writes to
// the TokenStore. ValidToken is the single entry point callers use; nobody
// else reads the store directly.
//
// Refresh sequences are serialized per token kind: the lock spans the
// check-authenticate-store step only, so two concurrent callers never
// refresh the same token twice or clear a token the other just refreshed.
type Authenticator struct {
	creds      core.Credentials
	store      *TokenStore
	httpClient *http.Client
	logger     zerolog.Logger

	gatewayMu  sync.Mutex
	documentMu sync.Mutex
}

func NewAuthenticator(creds core.Credentials, store *TokenStore, httpClient *http.Client, logger zerolog.Logger) *Authenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Authenticator{
		creds:      creds,
		store:      store,
		httpClient: httpClient,
		logger:     logger,
	}
}

// ValidToken returns a usable token of the given kind, authenticating with
// the portal first if the cached token is absent or expired.
func (a *Authenticator) ValidToken(ctx context.Context, kind core.TokenKind) (string, error) {
	mu, err := a.lockFor(kind)
	if err != nil {
		return "", err
	}
	mu.Lock()
	defer mu.Unlock()

	if tok, ok := a.store.Get(kind); ok && tok.Valid(time.Now()) {
		return tok.Value, nil
	}

	switch kind {
	case core.GatewayToken:
		err = a.authenticateGateway(ctx)
	case core.DocumentAuthorityToken:
		err = a.authenticateDocumentAuthority(ctx)
	}
	if err != nil {
		return "", err
	}

	tok, ok := a.store.Get(kind)
	if !ok {
		return "", fmt.Errorf("no %s token stored after authentication", kind)
	}
	return tok.Value, nil
}

// Invalidate drops both tokens, forcing a full re-authentication on the
// next ValidToken call. Called when the portal rejects a request with 401.
func (a *Authenticator) Invalidate() {
	a.store.ClearAll()
}

func (a *Authenticator) lockFor(kind core.TokenKind) (*sync.Mutex, error) {
	switch kind {
	case core.GatewayToken:
		return &a.gatewayMu, nil
	case core.DocumentAuthorityToken:
		return &a.documentMu, nil
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
}

type gatewayLoginResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// authenticateGateway logs in to the portal's gateway layer using the API
// key pair and stores the resulting token.
func (a *Authenticator) authenticateGateway(ctx context.Context) error {
	a.logger.Debug().Str("stage", string(StageGateway)).Msg("authenticating with portal")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.creds.BaseURL+gatewayLoginPath, nil)
	if err != nil {
		return fmt.Errorf("creating gateway login request: %w", err)
	}
	req.Header.Set("x-api-key", a.creds.APIKey)
	req.Header.Set("x-api-secret", a.creds.APISecret)
	req.Header.Set("x-api-version", apiVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway login: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Stage: StageGateway, Wrapped: fmt.Errorf("portal returned status %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("gateway login: unexpected status %d", resp.StatusCode)
	}

	var result gatewayLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("gateway login: decoding response: %w", err)
	}
	if result.Data.AccessToken == "" {
		return fmt.Errorf("gateway login: response contained no access token")
	}

	a.store.Set(core.GatewayToken, result.Data.AccessToken, time.Now())
	return nil
}

type documentLoginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	RegistrationID string `json:"registration_id"`
}

// The document-authority layer wraps its payload in a second Data envelope
// and has been observed returning the token under both casings.
type documentLoginResponse struct {
	Data struct {
		Data struct {
			AuthToken    string        `json:"AuthToken"`
			AltAuthToken string        `json:"authToken"`
			ErrorDetails []ErrorDetail `json:"ErrorDetails"`
		} `json:"Data"`
	} `json:"data"`
}

// authenticateDocumentAuthority logs in to the document-authority layer.
// It needs a valid gateway token first and fetches one transitively.
//
// Business-rule rejections (wrong registration identifier, inactive
// account) arrive as ErrorDetails inside a 200 response, so the body is
// checked even on HTTP success.
func (a *Authenticator) authenticateDocumentAuthority(ctx context.Context) error {
	gatewayToken, err := a.ValidToken(ctx, core.GatewayToken)
	if err != nil {
		return err
	}

	a.logger.Debug().Str("stage", string(StageDocumentAuthority)).Msg("authenticating with portal")

	payload, err := json.Marshal(documentLoginRequest{
		Username:       a.creds.Username,
		Password:       a.creds.Password,
		RegistrationID: a.creds.RegistrationID,
	})
	if err != nil {
		return fmt.Errorf("marshalling document login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.creds.BaseURL+documentLoginPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating document login request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+gatewayToken)
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("document login: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Stage: StageDocumentAuthority, Wrapped: fmt.Errorf("portal returned status %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("document login: unexpected status %d", resp.StatusCode)
	}

	var result documentLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("document login: decoding response: %w", err)
	}
	if details := result.Data.Data.ErrorDetails; len(details) > 0 {
		return &AuthError{Stage: StageDocumentAuthority, Details: details}
	}

	token := result.Data.Data.AuthToken
	if token == "" {
		token = result.Data.Data.AltAuthToken
	}
	if token == "" {
		return fmt.Errorf("document login: response contained no auth token")
	}

	a.store.Set(core.DocumentAuthorityToken, token, time.Now())
	return nil
}
