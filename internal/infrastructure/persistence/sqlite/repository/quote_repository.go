package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"partsource/internal/domain/quote"
	"partsource/internal/errs"
	"partsource/internal/infrastructure/persistence/sqlite/model"
	"partsource/internal/ports"
)

type QuoteRepository struct {
	base
}

var _ ports.QuoteRepository = (*QuoteRepository)(nil)

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{base{db: db}}
}

// Save inserts an audit row. Resubmitting the same quote id is a no-op, so
// duplicate submissions never double-count.
func (r *QuoteRepository) Save(ctx context.Context, rec quote.Record) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := mapQuoteToRow(rec)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quote_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert quote")
	}
	return nil
}

func (r *QuoteRepository) Get(ctx context.Context, quoteID string) (quote.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quote.Record{}, err
	}

	var row model.Quote
	if err := db.Where("quote_id = ?", quoteID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quote.Record{}, fmt.Errorf("%w: quote %q", ports.ErrNotFound, quoteID)
		}
		return quote.Record{}, errs.Wrap(err, "query quote")
	}

	return mapQuoteFromRow(row), nil
}

func (r *QuoteRepository) ListByRequirement(ctx context.Context, requirementID string) ([]quote.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Quote
	if err := db.Where("requirement_id = ?", requirementID).
		Order("received_at asc, quote_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query quotes by requirement")
	}

	items := make([]quote.Record, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapQuoteFromRow(row))
	}
	return items, nil
}

func (r *QuoteRepository) MarkSuperseded(ctx context.Context, requirementID, vendorID, exceptQuoteID string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Quote{}).
		Where("requirement_id = ? AND vendor_id = ? AND quote_id <> ? AND disposition = ?",
			requirementID, vendorID, exceptQuoteID, string(quote.DispositionValid)).
		Update("disposition", string(quote.DispositionSuperseded))
	if result.Error != nil {
		return errs.Wrap(result.Error, "mark quotes superseded")
	}
	return nil
}

func mapQuoteToRow(rec quote.Record) model.Quote {
	q := rec.Quote
	row := model.Quote{
		QuoteID:           q.QuoteID,
		RequirementID:     q.RequirementID,
		VendorID:          q.VendorID,
		BrandType:         string(q.BrandType),
		Condition:         q.Condition,
		UnitPrice:         formatDecimal(q.UnitPrice),
		ShippingCost:      formatDecimal(q.ShippingCost),
		CoreCharge:        formatDecimalPtr(q.CoreCharge),
		Availability:      string(q.Availability),
		QuantityAvailable: q.QuantityAvailable,
		LeadTimeDaysMin:   q.LeadTimeDaysMin,
		LeadTimeDaysMax:   q.LeadTimeDaysMax,
		WarrantyMonths:    q.WarrantyMonths,
		ReceivedAt:        formatTime(q.ReceivedAt),
		ExpiresAt:         formatTimePtr(q.ExpiresAt),
		Disposition:       string(rec.Disposition),
	}
	if rec.RejectionCode != "" {
		code := string(rec.RejectionCode)
		row.RejectionCode = &code
	}
	return row
}

func mapQuoteFromRow(row model.Quote) quote.Record {
	rec := quote.Record{
		Quote: quote.VendorQuote{
			QuoteID:           row.QuoteID,
			RequirementID:     row.RequirementID,
			VendorID:          row.VendorID,
			BrandType:         quote.BrandType(row.BrandType),
			Condition:         row.Condition,
			UnitPrice:         parseDecimal(row.UnitPrice),
			ShippingCost:      parseDecimal(row.ShippingCost),
			CoreCharge:        parseDecimalPtr(row.CoreCharge),
			Availability:      quote.Availability(row.Availability),
			QuantityAvailable: row.QuantityAvailable,
			LeadTimeDaysMin:   row.LeadTimeDaysMin,
			LeadTimeDaysMax:   row.LeadTimeDaysMax,
			WarrantyMonths:    row.WarrantyMonths,
			ReceivedAt:        parseTime(row.ReceivedAt),
			ExpiresAt:         parseTimePtr(row.ExpiresAt),
		},
		Disposition: quote.Disposition(row.Disposition),
	}
	if row.RejectionCode != nil {
		rec.RejectionCode = quote.RejectionCode(*row.RejectionCode)
	}
	return rec
}
