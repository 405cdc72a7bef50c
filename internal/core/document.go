package core

// DocumentPayload is an electronic invoice or goods-movement document as
// submitted to the tax authority portal. The business schema (tax splits,
// party addresses, ...) lives with the caller; this type carries the fields
// the gateway needs for pre-flight validation plus the raw line items.
type DocumentPayload struct {
	// DocumentDate is the document issue date in portal format (DD/MM/YYYY).
	DocumentDate string `json:"document_date" yaml:"document_date"`

	// DocumentNumber is the caller-assigned document number.
	DocumentNumber string `json:"document_number" yaml:"document_number"`

	// IssuerRegistrationID is the issuing company's tax registration identifier.
	IssuerRegistrationID string `json:"issuer_registration_id" yaml:"issuer_registration_id"`

	// RecipientName is the legal name of the document recipient.
	RecipientName string `json:"recipient_name" yaml:"recipient_name"`

	// RecipientRegistrationID is the recipient's registration identifier.
	// Optional; unregistered recipients leave it empty.
	RecipientRegistrationID string `json:"recipient_registration_id,omitempty" yaml:"recipient_registration_id"`

	LineItems []LineItem `json:"line_items" yaml:"line_items"`

	// TotalValue is the total invoice value including taxes.
	TotalValue float64 `json:"total_value" yaml:"total_value"`
}

// LineItem is a single position on a document.
type LineItem struct {
	SequenceNumber int     `json:"sequence_number" yaml:"sequence_number"`
	Description    string  `json:"description" yaml:"description"`
	Classification string  `json:"classification_code" yaml:"classification_code"`
	Quantity       float64 `json:"quantity" yaml:"quantity"`
	UnitPrice      float64 `json:"unit_price" yaml:"unit_price"`
	LineTotal      float64 `json:"line_total" yaml:"line_total"`
}

// SubmissionResult is returned by the portal once a document has been
// accepted and a legally binding reference number was issued.
type SubmissionResult struct {
	// ReferenceNumber is the authority-issued unique identifier proving
	// the document was accepted.
	ReferenceNumber string `json:"reference_number"`

	AcknowledgmentNumber string `json:"acknowledgment_number"`
	AcknowledgmentDate   string `json:"acknowledgment_date"`

	// SignedPayload contains the authority-signed document, if the portal
	// returns one.
	SignedPayload string `json:"signed_payload,omitempty"`
}

// CancelResult is returned after a document was cancelled on the portal.
type CancelResult struct {
	ReferenceNumber string `json:"reference_number"`
	Status          string `json:"status"`
}

// DocumentStatus is the portal's view of a submitted document.
type DocumentStatus struct {
	ReferenceNumber      string `json:"reference_number"`
	Status               string `json:"status"`
	AcknowledgmentNumber string `json:"acknowledgment_number,omitempty"`
	AcknowledgmentDate   string `json:"acknowledgment_date,omitempty"`
	CancelDate           string `json:"cancel_date,omitempty"`
}

// Document lifecycle states as observed through the gateway.
const (
	StatusGenerated = "generated"
	StatusCancelled = "cancelled"
)
