// Package validation holds the pre-flight document checks. They run before
// any network activity so malformed documents are rejected locally instead
// of burning a portal round-trip on a guaranteed rejection.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/finlync/taxgate/internal/core"
)

// registrationIDPattern is the fixed 15-character registration identifier
// format: {2 digits}{5 letters}{4 digits}{1 letter}{1 alnum}Z{1 alnum}.
var registrationIDPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][A-Z0-9]Z[A-Z0-9]$`)

// ValidRegistrationID reports whether id matches the registration
// identifier format.
func ValidRegistrationID(id string) bool {
	return registrationIDPattern.MatchString(id)
}

// Result is the outcome of validating one document. Errors block
// submission; warnings are informational only.
type Result struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether the document may be submitted.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Error is returned by Submit when a document fails validation. The caller
// corrects the document and tries again; nothing was sent to the portal.
type Error struct {
	Errors []string
}

func (e *Error) Error() string {
	return "document validation failed: " + strings.Join(e.Errors, "; ")
}

// ValidateDocument checks a document against the portal's structural rules.
// Pure and synchronous; produces a fresh Result per call.
func ValidateDocument(doc *core.DocumentPayload) Result {
	var result Result

	err := validation.ValidateStruct(doc,
		validation.Field(&doc.DocumentDate,
			validation.Required.Error("document date is required")),
		validation.Field(&doc.DocumentNumber,
			validation.Required.Error("document number is required")),
		validation.Field(&doc.IssuerRegistrationID,
			validation.Required.Error("issuer registration identifier is required"),
			validation.Match(registrationIDPattern).Error("must be a valid 15-character registration identifier")),
		validation.Field(&doc.RecipientName,
			validation.Required.Error("recipient name is required")),
		validation.Field(&doc.RecipientRegistrationID,
			validation.Match(registrationIDPattern).Error("must be a valid 15-character registration identifier")),
		validation.Field(&doc.LineItems,
			validation.Required.Error("at least one line item is required"),
			validation.Each(validation.By(validateLineItem))),
		validation.Field(&doc.TotalValue,
			validation.Required.Error("total invoice value must be greater than zero"),
			validation.Min(0.0).Exclusive().Error("total invoice value must be greater than zero")),
	)
	appendErrors("", err, &result.Errors)

	for i, item := range doc.LineItems {
		if item.Classification != "" && len(item.Classification) < 6 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("line_items.%d.classification_code: classification code shorter than 6 characters", i))
		}
	}

	return result
}

func validateLineItem(value any) error {
	item, ok := value.(core.LineItem)
	if !ok {
		return fmt.Errorf("unexpected line item type %T", value)
	}
	return validation.ValidateStruct(&item,
		validation.Field(&item.SequenceNumber,
			validation.Required.Error("sequence number is required")),
		validation.Field(&item.Description,
			validation.Required.Error("description is required")),
		validation.Field(&item.Classification,
			validation.Required.Error("classification code is required")),
		validation.Field(&item.Quantity,
			validation.Required.Error("quantity is required")),
		validation.Field(&item.UnitPrice,
			validation.Required.Error("unit price is required")),
		validation.Field(&item.LineTotal,
			validation.Required.Error("line total is required")),
	)
}

// appendErrors flattens the nested validation.Errors maps into sorted
// "path: message" strings so callers get a stable, field-addressed list.
func appendErrors(prefix string, err error, out *[]string) {
	if err == nil {
		return
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			appendErrors(key, errs[k], out)
		}
		return
	}

	if prefix != "" {
		*out = append(*out, fmt.Sprintf("%s: %v", prefix, err))
		return
	}
	*out = append(*out, err.Error())
}
