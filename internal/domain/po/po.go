package po

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
)

// Status tracks a purchase order after creation. Line items freeze once the
// order is sent.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSent              Status = "sent"
	StatusConfirmed         Status = "confirmed"
	StatusShipped           Status = "shipped"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

type LineItem struct {
	RequirementID string
	QuoteID       string
	Quantity      int
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
}

type PurchaseOrder struct {
	PONumber      string
	VendorID      string
	RepairOrderID string
	LineItems     []LineItem
	Subtotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        Status
	CreatedAt     time.Time
}

// Win pairs a requirement with its selected quote, ready for grouping.
type Win struct {
	Requirement part.Requirement
	Quote       quote.VendorQuote
}

// TotalsPolicy is the shop-configurable aggregation rule set. The default
// sums the constituent quotes' shipping and adds no tax or discount.
type TotalsPolicy struct {
	SumQuoteShipping bool
	TaxRatePct       decimal.Decimal
	DiscountPct      decimal.Decimal
}

func DefaultTotalsPolicy() TotalsPolicy {
	return TotalsPolicy{SumQuoteShipping: true}
}

// GroupByVendor buckets wins per vendor, vendors and lines ordered
// deterministically.
func GroupByVendor(wins []Win) [][]Win {
	byVendor := make(map[string][]Win)
	for _, w := range wins {
		byVendor[w.Quote.VendorID] = append(byVendor[w.Quote.VendorID], w)
	}

	vendors := make([]string, 0, len(byVendor))
	for vendorID := range byVendor {
		vendors = append(vendors, vendorID)
	}
	sort.Strings(vendors)

	groups := make([][]Win, 0, len(vendors))
	for _, vendorID := range vendors {
		group := byVendor[vendorID]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Requirement.RequirementID < group[j].Requirement.RequirementID
		})
		groups = append(groups, group)
	}
	return groups
}

// Assemble builds one draft purchase order for a single vendor group. The
// caller supplies the already-allocated PO number.
func Assemble(poNumber string, group []Win, policy TotalsPolicy, now time.Time) (PurchaseOrder, error) {
	if len(group) == 0 {
		return PurchaseOrder{}, fmt.Errorf("empty vendor group")
	}

	vendorID := group[0].Quote.VendorID
	repairOrderID := group[0].Requirement.RepairOrderID

	order := PurchaseOrder{
		PONumber:      poNumber,
		VendorID:      vendorID,
		RepairOrderID: repairOrderID,
		Status:        StatusDraft,
		CreatedAt:     now,
	}

	for _, w := range group {
		if w.Quote.VendorID != vendorID {
			return PurchaseOrder{}, fmt.Errorf("mixed vendors in group: %q and %q", vendorID, w.Quote.VendorID)
		}
		if w.Requirement.RepairOrderID != repairOrderID {
			return PurchaseOrder{}, fmt.Errorf("mixed repair orders in group: %q and %q", repairOrderID, w.Requirement.RepairOrderID)
		}

		// Line totals are landed: unit price x quantity + shipping + net
		// core charge. Summing subtotals across the request's orders then
		// reproduces the selected landed costs exactly.
		lineTotal := w.Quote.TotalLandedCost(w.Requirement.Quantity)
		if !policy.SumQuoteShipping {
			lineTotal = lineTotal.Sub(w.Quote.ShippingCost)
		}

		order.LineItems = append(order.LineItems, LineItem{
			RequirementID: w.Requirement.RequirementID,
			QuoteID:       w.Quote.QuoteID,
			Quantity:      w.Requirement.Quantity,
			UnitPrice:     w.Quote.UnitPrice,
			LineTotal:     lineTotal,
		})
		order.Subtotal = order.Subtotal.Add(lineTotal)

		if policy.SumQuoteShipping {
			order.ShippingTotal = order.ShippingTotal.Add(w.Quote.ShippingCost)
		}
	}

	order.TaxTotal = order.Subtotal.Mul(policy.TaxRatePct).Div(decimal.NewFromInt(100))
	order.DiscountTotal = order.Subtotal.Mul(policy.DiscountPct).Div(decimal.NewFromInt(100))
	order.TotalAmount = order.Subtotal.
		Add(order.TaxTotal).
		Sub(order.DiscountTotal)

	return order, nil
}

// VendorCode derives the fixed 4-character vendor identifier used in PO
// numbers: leading alphanumerics of the vendor id, upper-cased, padded
// with X.
func VendorCode(vendorID string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(vendorID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	code := b.String()
	for len(code) < 4 {
		code += "X"
	}
	return code
}

// YearMonth renders the YYMM segment of a PO number.
func YearMonth(at time.Time) string {
	return at.Format("0601")
}

// FormatNumber renders "{repairOrder}-{YYMM}-{vendorCode}-{seq}" with a
// zero-padded three-digit sequence.
func FormatNumber(repairOrderID string, at time.Time, vendorID string, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%03d", repairOrderID, YearMonth(at), VendorCode(vendorID), seq)
}
