package vendors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
	"partsource/internal/errs"
	"partsource/internal/ports"
)

// quoteBook is the on-disk format for offline runs: canned offers per
// vendor, keyed by requirement id or OEM part number.
type quoteBook struct {
	Vendors []bookVendor `json:"vendors"`
}

type bookVendor struct {
	VendorID string      `json:"vendorId"`
	Offers   []bookOffer `json:"offers"`
}

type bookOffer struct {
	RequirementID     string  `json:"requirementId,omitempty"`
	OEMPartNumber     string  `json:"oemPartNumber,omitempty"`
	BrandType         string  `json:"brandType"`
	Condition         string  `json:"condition,omitempty"`
	UnitPrice         string  `json:"unitPrice"`
	ShippingCost      string  `json:"shippingCost,omitempty"`
	CoreCharge        *string `json:"coreCharge,omitempty"`
	Availability      string  `json:"availabilityStatus"`
	QuantityAvailable int     `json:"quantityAvailable"`
	LeadTimeDaysMin   *int    `json:"leadTimeDaysMin,omitempty"`
	LeadTimeDaysMax   *int    `json:"leadTimeDaysMax,omitempty"`
	WarrantyMonths    int     `json:"warrantyMonths,omitempty"`
}

// FileGateway serves quotes out of a loaded book. It stands in for live
// vendor integrations during offline runs and demos.
type FileGateway struct {
	vendorID string
	offers   []bookOffer
}

var _ ports.VendorGateway = (*FileGateway)(nil)

// LoadQuoteBook parses the book and returns one gateway per vendor entry.
func LoadQuoteBook(_ context.Context, path string) ([]ports.VendorGateway, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read quote book %q", path)
	}

	var book quoteBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, errs.Wrapf(err, "parse quote book %q", path)
	}

	gateways := make([]ports.VendorGateway, 0, len(book.Vendors))
	for _, v := range book.Vendors {
		if v.VendorID == "" {
			return nil, fmt.Errorf("quote book %q: vendor entry without vendorId", path)
		}
		gateways = append(gateways, &FileGateway{vendorID: v.VendorID, offers: v.Offers})
	}
	return gateways, nil
}

func (g *FileGateway) VendorID() string {
	return g.vendorID
}

func (g *FileGateway) RequestQuote(ctx context.Context, req part.Requirement) (quote.VendorQuote, error) {
	if err := ctx.Err(); err != nil {
		return quote.VendorQuote{}, err
	}

	for _, offer := range g.offers {
		if !offer.matches(req) {
			continue
		}
		return offer.toQuote(g.vendorID, req.RequirementID)
	}
	return quote.VendorQuote{}, fmt.Errorf("vendor %q has no offer for requirement %q", g.vendorID, req.RequirementID)
}

func (o bookOffer) matches(req part.Requirement) bool {
	if o.RequirementID != "" {
		return o.RequirementID == req.RequirementID
	}
	return o.OEMPartNumber != "" && o.OEMPartNumber == req.OEMPartNumber
}

func (o bookOffer) toQuote(vendorID, requirementID string) (quote.VendorQuote, error) {
	unitPrice, err := decimal.NewFromString(o.UnitPrice)
	if err != nil {
		return quote.VendorQuote{}, errs.Wrapf(err, "vendor %q unit price", vendorID)
	}
	brand, err := quote.ParseBrandType(o.BrandType)
	if err != nil {
		return quote.VendorQuote{}, errs.Wrapf(err, "vendor %q offer", vendorID)
	}
	availability, err := quote.ParseAvailability(o.Availability)
	if err != nil {
		return quote.VendorQuote{}, errs.Wrapf(err, "vendor %q offer", vendorID)
	}

	q := quote.VendorQuote{
		QuoteID:           uuid.NewString(),
		RequirementID:     requirementID,
		VendorID:          vendorID,
		BrandType:         brand,
		Condition:         o.Condition,
		UnitPrice:         unitPrice,
		Availability:      availability,
		QuantityAvailable: o.QuantityAvailable,
		LeadTimeDaysMin:   o.LeadTimeDaysMin,
		LeadTimeDaysMax:   o.LeadTimeDaysMax,
		WarrantyMonths:    o.WarrantyMonths,
		ReceivedAt:        time.Now().UTC(),
	}

	if o.ShippingCost != "" {
		shipping, err := decimal.NewFromString(o.ShippingCost)
		if err != nil {
			return quote.VendorQuote{}, errs.Wrapf(err, "vendor %q shipping cost", vendorID)
		}
		q.ShippingCost = shipping
	}
	if o.CoreCharge != nil {
		core, err := decimal.NewFromString(*o.CoreCharge)
		if err != nil {
			return quote.VendorQuote{}, errs.Wrapf(err, "vendor %q core charge", vendorID)
		}
		q.CoreCharge = &core
	}
	return q, nil
}
