package quote

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNoEligibleQuotes = errors.New("no eligible quotes")

// SelectionPolicy carries the shop-level knobs for winner selection.
type SelectionPolicy struct {
	// TieEpsilon is the overall-score band, in points, within which quotes
	// count as tied and fall through to the cost/lead/vendor tie-break.
	TieEpsilon float64
	// OverridePremiumPct is how much more expensive (percent of landed
	// cost) a pinned vendor may be than the top-scored quote and still win.
	OverridePremiumPct float64
}

func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{TieEpsilon: 0.5, OverridePremiumPct: 10}
}

// Override pins a preferred vendor for a requirement.
type Override struct {
	VendorID string
}

// Selection is the outcome of one winner pick.
type Selection struct {
	Winner          ScoredQuote
	OverrideApplied bool
	// OverrideRejectedReason is set when an override was requested but the
	// top-scored quote won anyway.
	OverrideRejectedReason string
}

// SelectWinner picks the best quote from a pre-validated, unexpired, scored
// set. The same input set always yields the same winner.
func SelectWinner(scored []ScoredQuote, requestedQty int, policy SelectionPolicy, override *Override) (Selection, error) {
	if len(scored) == 0 {
		return Selection{}, ErrNoEligibleQuotes
	}

	maxOverall := scored[0].OverallScore
	for _, sq := range scored[1:] {
		if sq.OverallScore > maxOverall {
			maxOverall = sq.OverallScore
		}
	}

	// Everything within epsilon of the top competes on the tie-break chain;
	// score differences inside the band are noise by policy.
	best := ScoredQuote{}
	haveBest := false
	for _, sq := range scored {
		if sq.OverallScore < maxOverall-policy.TieEpsilon {
			continue
		}
		if !haveBest || tieBreakLess(sq, best, requestedQty) {
			best = sq
			haveBest = true
		}
	}

	selection := Selection{Winner: best}
	if override == nil || override.VendorID == "" || override.VendorID == best.Quote.VendorID {
		if override != nil && override.VendorID == best.Quote.VendorID {
			selection.OverrideApplied = true
		}
		return selection, nil
	}

	preferred, ok := findVendor(scored, override.VendorID)
	if !ok {
		selection.OverrideRejectedReason = fmt.Sprintf("no valid quote from preferred vendor %q", override.VendorID)
		return selection, nil
	}

	bestCost := best.Quote.TotalLandedCost(requestedQty)
	preferredCost := preferred.Quote.TotalLandedCost(requestedQty)
	limit := bestCost.Mul(decimal.NewFromFloat(1 + policy.OverridePremiumPct/100))
	if preferredCost.Cmp(limit) > 0 {
		selection.OverrideRejectedReason = fmt.Sprintf(
			"preferred vendor %q landed cost %s exceeds %s premium limit %s",
			override.VendorID, preferredCost, best.Quote.VendorID, limit)
		return selection, nil
	}

	selection.Winner = preferred
	selection.OverrideApplied = true
	return selection, nil
}

// tieBreakLess orders candidates inside the epsilon band: lower landed cost,
// then shorter lead time, then lexicographically smaller vendor id.
func tieBreakLess(a, b ScoredQuote, requestedQty int) bool {
	if c := a.Quote.TotalLandedCost(requestedQty).Cmp(b.Quote.TotalLandedCost(requestedQty)); c != 0 {
		return c < 0
	}

	leadA, okA := a.Quote.AvgLeadTimeDays()
	leadB, okB := b.Quote.AvgLeadTimeDays()
	switch {
	case okA && okB && leadA != leadB:
		return leadA < leadB
	case okA != okB:
		return okA
	}

	return a.Quote.VendorID < b.Quote.VendorID
}

func findVendor(scored []ScoredQuote, vendorID string) (ScoredQuote, bool) {
	for _, sq := range scored {
		if sq.Quote.VendorID == vendorID {
			return sq, true
		}
	}
	return ScoredQuote{}, false
}
