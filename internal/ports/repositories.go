package ports

import (
	"context"
	"errors"

	"partsource/internal/domain/part"
	"partsource/internal/domain/po"
	"partsource/internal/domain/quote"
	"partsource/internal/domain/sourcing"
)

var ErrNotFound = errors.New("record not found")

type RequirementRepository interface {
	Create(ctx context.Context, req part.Requirement) error
	Get(ctx context.Context, requirementID string) (part.Requirement, error)
	ListByIDs(ctx context.Context, requirementIDs []string) ([]part.Requirement, error)
	// UpdateStatus applies a guarded status change: the row must still be in
	// from, otherwise nothing mutates and an error returns.
	UpdateStatus(ctx context.Context, requirementID string, from, to part.Status) error
	SetSelectedQuote(ctx context.Context, requirementID, quoteID string) error
}

type QuoteRepository interface {
	// Save inserts an audit row. Saving the same quote id again is a no-op.
	Save(ctx context.Context, rec quote.Record) error
	Get(ctx context.Context, quoteID string) (quote.Record, error)
	ListByRequirement(ctx context.Context, requirementID string) ([]quote.Record, error)
	// MarkSuperseded flips earlier valid rows for the same
	// (requirement, vendor) pair, keeping them for audit.
	MarkSuperseded(ctx context.Context, requirementID, vendorID, exceptQuoteID string) error
}

type SourcingRequestRepository interface {
	Create(ctx context.Context, req sourcing.Request) error
	Get(ctx context.Context, requestID string) (sourcing.Request, error)
	// UpdateState applies a guarded state change mirroring
	// RequirementRepository.UpdateStatus.
	UpdateState(ctx context.Context, requestID string, from, to sourcing.State) error
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, order po.PurchaseOrder) error
	Get(ctx context.Context, poNumber string) (po.PurchaseOrder, error)
	ListByRepairOrder(ctx context.Context, repairOrderID string) ([]po.PurchaseOrder, error)
}

// SequenceKey scopes a PO counter: one strictly increasing sequence per
// repair order, vendor and month.
type SequenceKey struct {
	RepairOrderID string
	VendorID      string
	YearMonth     string
}

type SequenceRepository interface {
	// Next atomically claims and returns the next value (starting at 1).
	// A detected write race returns sourcing.ErrSequenceConflict.
	Next(ctx context.Context, key SequenceKey) (int, error)
}
