package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BrandType classifies the part's provenance for quality scoring.
type BrandType string

const (
	BrandOEM            BrandType = "oem"
	BrandOEMEquivalent  BrandType = "oem_equivalent"
	BrandAftermarket    BrandType = "aftermarket"
	BrandRecycled       BrandType = "recycled"
	BrandRemanufactured BrandType = "remanufactured"
)

// Availability is the vendor-reported stock position for a quote.
type Availability string

const (
	AvailabilityInStock      Availability = "in_stock"
	AvailabilityLimited      Availability = "limited"
	AvailabilityBackordered  Availability = "backordered"
	AvailabilitySpecialOrder Availability = "special_order"
	AvailabilityUnavailable  Availability = "unavailable"
)

// VendorQuote is one vendor's offer against one part requirement. Immutable
// after validation; a resubmission supersedes, it never mutates.
type VendorQuote struct {
	QuoteID           string
	RequirementID     string
	VendorID          string
	BrandType         BrandType
	Condition         string
	UnitPrice         decimal.Decimal
	ShippingCost      decimal.Decimal
	CoreCharge        *decimal.Decimal
	Availability      Availability
	QuantityAvailable int
	LeadTimeDaysMin   *int
	LeadTimeDaysMax   *int
	WarrantyMonths    int
	ReceivedAt        time.Time
	ExpiresAt         *time.Time
}

func ParseBrandType(raw string) (BrandType, error) {
	switch BrandType(strings.ToLower(strings.TrimSpace(raw))) {
	case BrandOEM:
		return BrandOEM, nil
	case BrandOEMEquivalent:
		return BrandOEMEquivalent, nil
	case BrandAftermarket:
		return BrandAftermarket, nil
	case BrandRecycled:
		return BrandRecycled, nil
	case BrandRemanufactured:
		return BrandRemanufactured, nil
	default:
		return "", fmt.Errorf("unknown brand type %q", raw)
	}
}

func ParseAvailability(raw string) (Availability, error) {
	switch Availability(strings.ToLower(strings.TrimSpace(raw))) {
	case AvailabilityInStock:
		return AvailabilityInStock, nil
	case AvailabilityLimited:
		return AvailabilityLimited, nil
	case AvailabilityBackordered:
		return AvailabilityBackordered, nil
	case AvailabilitySpecialOrder:
		return AvailabilitySpecialOrder, nil
	case AvailabilityUnavailable:
		return AvailabilityUnavailable, nil
	default:
		return "", fmt.Errorf("unknown availability %q", raw)
	}
}

// TotalLandedCost is the comparable cost of the quote for the requested
// quantity: unit price x quantity + shipping + net core charge.
func (q VendorQuote) TotalLandedCost(quantity int) decimal.Decimal {
	cost := q.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Add(q.ShippingCost)
	if q.CoreCharge != nil && q.CoreCharge.IsPositive() {
		cost = cost.Add(*q.CoreCharge)
	}
	return cost
}

// AvgLeadTimeDays averages the quoted lead-time bounds. A single bound is
// used as both ends. Returns false when the vendor quoted no lead time.
func (q VendorQuote) AvgLeadTimeDays() (float64, bool) {
	switch {
	case q.LeadTimeDaysMin != nil && q.LeadTimeDaysMax != nil:
		return float64(*q.LeadTimeDaysMin+*q.LeadTimeDaysMax) / 2, true
	case q.LeadTimeDaysMin != nil:
		return float64(*q.LeadTimeDaysMin), true
	case q.LeadTimeDaysMax != nil:
		return float64(*q.LeadTimeDaysMax), true
	default:
		return 0, false
	}
}

// Expired reports whether the quote has aged out relative to now.
func (q VendorQuote) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && !q.ExpiresAt.After(now)
}
