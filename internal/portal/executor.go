package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/finlync/taxgate/internal/core"
)

// DefaultMaxRetries is the total number of attempts one Execute call makes
// against transient failures.
const DefaultMaxRetries = 3

// Executor runs one portal request to completion: obtain both tokens, issue
// the call, classify the outcome, retry with exponential backoff where that
// can help. Strictly sequential within one call; both the network calls and
// the backoff sleeps abort when the context is cancelled.
type Executor struct {
	baseURL    string
	httpClient *http.Client
	auth       *Authenticator
	backoff    Backoff
	maxRetries int
	logger     zerolog.Logger
}

func NewExecutor(baseURL string, httpClient *http.Client, auth *Authenticator, backoff Backoff, maxRetries int, logger zerolog.Logger) *Executor {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Executor{
		baseURL:    baseURL,
		httpClient: httpClient,
		auth:       auth,
		backoff:    backoff,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Execute performs an authenticated portal call and returns the raw
// response body. A nil payload sends no body.
//
// Classification: 2xx returns immediately; 4xx other than 401 surfaces a
// ClientError without further attempts; 401 clears both tokens so the next
// attempt re-authenticates; everything else (5xx, timeout, connection
// error) is retried until the attempt budget runs out, at which point a
// RequestError carrying the last cause is returned.
func (e *Executor) Execute(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("marshalling payload: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := e.backoff.Delay(attempt - 1)
			e.logger.Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				AnErr("cause", lastErr).
				Str("path", path).
				Msg("retrying portal request")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		respBody, err := e.attempt(ctx, method, path, body)
		if err == nil {
			return respBody, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, &RequestError{Attempts: e.maxRetries, Last: lastErr}
}

func (e *Executor) attempt(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	// A submission always needs both tokens; the document-authority token
	// alone is useless to the portal.
	gatewayToken, err := e.auth.ValidToken(ctx, core.GatewayToken)
	if err != nil {
		return nil, err
	}
	documentToken, err := e.auth.ValidToken(ctx, core.DocumentAuthorityToken)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+gatewayToken)
	req.Header.Set("x-auth-token", documentToken)
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("X-Request-ID", xid.New().String())
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading portal response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized:
		// Token rejected mid-flight. Clear both so the next attempt runs
		// the full login sequence again.
		e.auth.Invalidate()
		e.logger.Debug().Str("path", path).Msg("portal rejected tokens, cleared for re-authentication")
		return nil, fmt.Errorf("portal rejected credentials (status 401)")
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return nil, clientErrorFromBody(resp.StatusCode, data)
	default:
		return nil, fmt.Errorf("portal returned status %d", resp.StatusCode)
	}
}

// retryable reports whether another attempt could change the outcome.
// Authentication and client rejections are configuration/input problems;
// cancellation belongs to the caller.
func retryable(err error) bool {
	var authErr *AuthError
	var clientErr *ClientError
	if errors.As(err, &authErr) || errors.As(err, &clientErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// clientErrorFromBody extracts a human-readable message from a 4xx body.
// The portal is inconsistent: sometimes {"message": ...}, sometimes the
// nested ErrorDetails envelope.
func clientErrorFromBody(status int, body []byte) *ClientError {
	var envelope struct {
		Message string `json:"message"`
		Data    struct {
			Data struct {
				ErrorDetails []ErrorDetail `json:"ErrorDetails"`
			} `json:"Data"`
		} `json:"data"`
	}
	clientErr := &ClientError{StatusCode: status}
	if err := json.Unmarshal(body, &envelope); err == nil {
		clientErr.Message = envelope.Message
		clientErr.Details = envelope.Data.Data.ErrorDetails
		if clientErr.Message == "" && len(clientErr.Details) > 0 {
			clientErr.Message = clientErr.Details[0].Message
		}
	}
	if clientErr.Message == "" {
		clientErr.Message = string(body)
	}
	return clientErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
