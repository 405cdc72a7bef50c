package portal

import (
	"fmt"
	"strings"
)

// Stage names the authentication layer that rejected us.
type Stage string

const (
	StageGateway           Stage = "gateway"
	StageDocumentAuthority Stage = "document_authority"
)

// ErrorDetail is a single business-rule error as reported by the portal.
// The portal embeds these inside otherwise success-shaped response bodies.
type ErrorDetail struct {
	Code    string `json:"ErrorCode"`
	Message string `json:"ErrorMessage"`
}

// AuthError means the portal rejected our credentials or registration
// identifier at one of the two login stages. It is a configuration problem
// for the caller, not a transient condition.
type AuthError struct {
	Stage   Stage
	Details []ErrorDetail
	Wrapped error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("authentication failed at %s stage", e.Stage)
	if len(e.Details) > 0 {
		parts := make([]string, 0, len(e.Details))
		for _, d := range e.Details {
			parts = append(parts, fmt.Sprintf("%s: %s", d.Code, d.Message))
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Wrapped
}

// ClientError means the portal rejected the request as malformed or
// semantically invalid (4xx other than 401, or a business rejection inside
// a 200 body). Retrying cannot change the outcome.
type ClientError struct {
	StatusCode int
	Message    string
	Details    []ErrorDetail
}

func (e *ClientError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("portal rejected request (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("portal rejected request (status %d)", e.StatusCode)
}

// RequestError means the retry budget was exhausted against transient
// conditions. Last carries the final underlying cause for diagnostics.
type RequestError struct {
	Attempts int
	Last     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RequestError) Unwrap() error {
	return e.Last
}
