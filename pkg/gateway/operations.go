package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/finlync/taxgate/internal/core"
	"github.com/finlync/taxgate/internal/portal"
	"github.com/finlync/taxgate/internal/validation"
)

const (
	submitPath = "/einvoice/generate"
	cancelPath = "/einvoice/cancel/%s"
	statusPath = "/einvoice/status/%s"
)

// portalEnvelope is the nested Data-in-data response shape the portal wraps
// around every document operation.
type portalEnvelope struct {
	Data struct {
		Data struct {
			ReferenceNumber      string               `json:"Irn"`
			AcknowledgmentNumber string               `json:"AckNo"`
			AcknowledgmentDate   string               `json:"AckDt"`
			SignedPayload        string               `json:"SignedInvoice"`
			Status               string               `json:"Status"`
			CancelDate           string               `json:"CancelDate"`
			ErrorDetails         []portal.ErrorDetail `json:"ErrorDetails"`
		} `json:"Data"`
	} `json:"data"`
}

// Submit validates the document locally and, if it passes, submits it to
// the portal. On validation failure no network call is made and a
// *validation.Error carries the field-addressed problems. Warnings never
// block submission; they are logged.
//
// Submit is not idempotent: a retry after a timeout whose request did reach
// the authority can produce a duplicate submission on the portal side.
func (c *Client) Submit(ctx context.Context, doc *core.DocumentPayload) (*core.SubmissionResult, error) {
	result := validation.ValidateDocument(doc)
	for _, warning := range result.Warnings {
		c.logger.Warn().Str("document", doc.DocumentNumber).Msgf("document warning: %s", warning)
	}
	if !result.IsValid() {
		return nil, &validation.Error{Errors: result.Errors}
	}

	body, err := c.exec.Execute(ctx, http.MethodPost, submitPath, doc)
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("submitting document: %w", err)
	}
	if envelope.Data.Data.ReferenceNumber == "" {
		return nil, fmt.Errorf("submitting document: portal response contained no reference number")
	}

	return &core.SubmissionResult{
		ReferenceNumber:      envelope.Data.Data.ReferenceNumber,
		AcknowledgmentNumber: envelope.Data.Data.AcknowledgmentNumber,
		AcknowledgmentDate:   envelope.Data.Data.AcknowledgmentDate,
		SignedPayload:        envelope.Data.Data.SignedPayload,
	}, nil
}

type cancelRequest struct {
	Reason  string `json:"reason"`
	Remarks string `json:"remarks,omitempty"`
}

// Cancel cancels a previously submitted document. A non-empty reason is
// required; remarks are optional free text.
func (c *Client) Cancel(ctx context.Context, referenceNumber, reason, remarks string) (*core.CancelResult, error) {
	if referenceNumber == "" {
		return nil, &validation.Error{Errors: []string{"reference_number: reference number is required"}}
	}
	if reason == "" {
		return nil, &validation.Error{Errors: []string{"reason: cancellation reason is required"}}
	}

	path := fmt.Sprintf(cancelPath, referenceNumber)
	body, err := c.exec.Execute(ctx, http.MethodPost, path, cancelRequest{Reason: reason, Remarks: remarks})
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("cancelling document: %w", err)
	}

	status := mapStatus(envelope.Data.Data.Status)
	if status == "" {
		status = core.StatusCancelled
	}
	return &core.CancelResult{
		ReferenceNumber: referenceNumber,
		Status:          status,
	}, nil
}

// GetStatus queries the portal for the current state of a document.
// Read-only and idempotent; safe to retry unconditionally.
func (c *Client) GetStatus(ctx context.Context, referenceNumber string) (*core.DocumentStatus, error) {
	if referenceNumber == "" {
		return nil, &validation.Error{Errors: []string{"reference_number: reference number is required"}}
	}

	path := fmt.Sprintf(statusPath, referenceNumber)
	body, err := c.exec.Execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("querying document status: %w", err)
	}

	status := &core.DocumentStatus{
		ReferenceNumber:      referenceNumber,
		Status:               mapStatus(envelope.Data.Data.Status),
		AcknowledgmentNumber: envelope.Data.Data.AcknowledgmentNumber,
		AcknowledgmentDate:   envelope.Data.Data.AcknowledgmentDate,
		CancelDate:           envelope.Data.Data.CancelDate,
	}
	if envelope.Data.Data.ReferenceNumber != "" {
		status.ReferenceNumber = envelope.Data.Data.ReferenceNumber
	}
	return status, nil
}

// decodeEnvelope parses a document-operation response. Business rejections
// can arrive inside a success-shaped body, so ErrorDetails is checked even
// on 2xx responses.
func decodeEnvelope(body []byte) (*portalEnvelope, error) {
	var envelope portalEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding portal response: %w", err)
	}
	if details := envelope.Data.Data.ErrorDetails; len(details) > 0 {
		return nil, &portal.ClientError{
			StatusCode: http.StatusOK,
			Message:    details[0].Message,
			Details:    details,
		}
	}
	return &envelope, nil
}

// mapStatus normalizes the portal's status codes to the gateway's
// lifecycle names. Unknown values pass through unchanged.
func mapStatus(portalStatus string) string {
	switch portalStatus {
	case "GEN", "ACT":
		return core.StatusGenerated
	case "CNL":
		return core.StatusCancelled
	default:
		return portalStatus
	}
}
