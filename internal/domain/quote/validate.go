package quote

import (
	"errors"
	"fmt"
	"time"
)

// RejectionCode identifies the first validation check a quote failed.
type RejectionCode string

const (
	RejectMissingField      RejectionCode = "missing_field"
	RejectNegativePrice     RejectionCode = "negative_price"
	RejectInsufficientStock RejectionCode = "insufficient_stock"
	RejectExpired           RejectionCode = "expired"
)

var ErrQuoteRejected = errors.New("quote rejected")

// RejectionError carries the reason code for audit rows. Matches
// ErrQuoteRejected under errors.Is.
type RejectionError struct {
	Code  RejectionCode
	Field string
}

func (e *RejectionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("quote rejected: %s (%s)", e.Code, e.Field)
	}
	return fmt.Sprintf("quote rejected: %s", e.Code)
}

func (e *RejectionError) Unwrap() error {
	return ErrQuoteRejected
}

func reject(code RejectionCode, field string) error {
	return &RejectionError{Code: code, Field: field}
}

// Validate runs the ingestion checks in order and stops at the first
// failure. requestedQty is the requirement's quantity; now is ingestion time.
func Validate(q VendorQuote, requestedQty int, now time.Time) error {
	switch {
	case q.QuoteID == "":
		return reject(RejectMissingField, "quoteId")
	case q.RequirementID == "":
		return reject(RejectMissingField, "requirementId")
	case q.VendorID == "":
		return reject(RejectMissingField, "vendorId")
	case q.BrandType == "":
		return reject(RejectMissingField, "brandType")
	case q.Availability == "":
		return reject(RejectMissingField, "availabilityStatus")
	}

	if q.UnitPrice.IsNegative() {
		return reject(RejectNegativePrice, "unitPrice")
	}

	// Backordered and special-order vendors legitimately quote with zero
	// current stock.
	if q.Availability != AvailabilityBackordered && q.Availability != AvailabilitySpecialOrder {
		if q.QuantityAvailable < requestedQty {
			return reject(RejectInsufficientStock, "quantityAvailable")
		}
	}

	if q.Expired(now) {
		return reject(RejectExpired, "expiresAt")
	}

	return nil
}
