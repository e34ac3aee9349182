package ports

import (
	"context"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
)

// VendorGateway is one vendor-integration collaborator, already translated
// to the canonical quote contract by its adapter.
type VendorGateway interface {
	VendorID() string
	// RequestQuote asks the vendor for an offer against one requirement.
	// Implementations must honor ctx cancellation and deadlines.
	RequestQuote(ctx context.Context, req part.Requirement) (quote.VendorQuote, error)
}
