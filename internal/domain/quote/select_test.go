package quote

import (
	"errors"
	"testing"
)

func TestSelectWinnerPicksMaxOverall(t *testing.T) {
	quotes := []VendorQuote{
		priced("pricey-oem", 500, AvailabilityInStock, 2, 2, BrandOEM, 12),
		priced("cheap-aftermarket", 420, AvailabilityLimited, 5, 5, BrandAftermarket, 0),
		priced("worst", 600, AvailabilityBackordered, 10, 12, BrandRecycled, 0),
	}

	scored := Score(quotes, 1, DefaultWeights())
	selection, err := SelectWinner(scored, 1, DefaultSelectionPolicy(), nil)
	if err != nil {
		t.Fatalf("SelectWinner() error = %v", err)
	}

	// With a third competitor anchoring the price range, the OEM in-stock
	// quote wins on availability, lead time and quality despite its price.
	if selection.Winner.Quote.VendorID != "pricey-oem" {
		t.Fatalf("winner = %s", selection.Winner.Quote.VendorID)
	}
}

func TestSelectWinnerEmptySet(t *testing.T) {
	_, err := SelectWinner(nil, 1, DefaultSelectionPolicy(), nil)
	if !errors.Is(err, ErrNoEligibleQuotes) {
		t.Fatalf("SelectWinner() error = %v, want ErrNoEligibleQuotes", err)
	}
}

func TestSelectWinnerTieBreakWithinEpsilon(t *testing.T) {
	// Identical offers except landed cost; scores tie on everything but
	// price, which stays inside the epsilon band after weighting.
	a := priced("vendor-b", 1000, AvailabilityInStock, 3, 3, BrandOEM, 0)
	b := priced("vendor-a", 1001, AvailabilityInStock, 3, 3, BrandOEM, 0)

	scored := Score([]VendorQuote{a, b}, 1, DefaultWeights())
	policy := SelectionPolicy{TieEpsilon: 45, OverridePremiumPct: 10}

	selection, err := SelectWinner(scored, 1, policy, nil)
	if err != nil {
		t.Fatalf("SelectWinner() error = %v", err)
	}
	if selection.Winner.Quote.VendorID != "vendor-b" {
		t.Fatalf("winner = %s, want lower landed cost vendor-b", selection.Winner.Quote.VendorID)
	}
}

func TestSelectWinnerVendorIDBreaksExactTies(t *testing.T) {
	a := priced("zeta", 100, AvailabilityInStock, 2, 2, BrandOEM, 0)
	b := priced("alpha", 100, AvailabilityInStock, 2, 2, BrandOEM, 0)

	for i := 0; i < 20; i++ {
		scored := Score([]VendorQuote{a, b}, 1, DefaultWeights())
		selection, err := SelectWinner(scored, 1, DefaultSelectionPolicy(), nil)
		if err != nil {
			t.Fatalf("SelectWinner() error = %v", err)
		}
		if selection.Winner.Quote.VendorID != "alpha" {
			t.Fatalf("winner = %s, want deterministic alpha", selection.Winner.Quote.VendorID)
		}
	}
}

func TestSelectWinnerOverrideWithinPremium(t *testing.T) {
	top := priced("top", 100, AvailabilityInStock, 2, 2, BrandOEM, 0)
	preferred := priced("preferred", 105, AvailabilityInStock, 2, 2, BrandAftermarket, 0)

	scored := Score([]VendorQuote{top, preferred}, 1, DefaultWeights())
	selection, err := SelectWinner(scored, 1, DefaultSelectionPolicy(), &Override{VendorID: "preferred"})
	if err != nil {
		t.Fatalf("SelectWinner() error = %v", err)
	}

	if !selection.OverrideApplied {
		t.Fatalf("override not applied: %+v", selection)
	}
	if selection.Winner.Quote.VendorID != "preferred" {
		t.Fatalf("winner = %s", selection.Winner.Quote.VendorID)
	}
}

func TestSelectWinnerOverrideRejectedBeyondPremium(t *testing.T) {
	top := priced("top", 100, AvailabilityInStock, 2, 2, BrandOEM, 0)
	preferred := priced("preferred", 120, AvailabilityInStock, 2, 2, BrandOEM, 0)

	scored := Score([]VendorQuote{top, preferred}, 1, DefaultWeights())
	selection, err := SelectWinner(scored, 1, DefaultSelectionPolicy(), &Override{VendorID: "preferred"})
	if err != nil {
		t.Fatalf("SelectWinner() error = %v", err)
	}

	if selection.OverrideApplied {
		t.Fatalf("override should be rejected: %+v", selection)
	}
	if selection.OverrideRejectedReason == "" {
		t.Fatalf("missing override rejection reason")
	}
	if selection.Winner.Quote.VendorID != "top" {
		t.Fatalf("winner = %s, want top", selection.Winner.Quote.VendorID)
	}
}

func TestSelectWinnerOverrideVendorAbsent(t *testing.T) {
	scored := Score([]VendorQuote{priced("only", 100, AvailabilityInStock, 2, 2, BrandOEM, 0)}, 1, DefaultWeights())

	selection, err := SelectWinner(scored, 1, DefaultSelectionPolicy(), &Override{VendorID: "ghost"})
	if err != nil {
		t.Fatalf("SelectWinner() error = %v", err)
	}
	if selection.OverrideApplied || selection.OverrideRejectedReason == "" {
		t.Fatalf("absent override vendor should be rejected with reason: %+v", selection)
	}
}

func TestSelectWinnerSameInputSameWinner(t *testing.T) {
	quotes := []VendorQuote{
		priced("a", 400, AvailabilityInStock, 2, 4, BrandOEM, 12),
		priced("b", 380, AvailabilityLimited, 3, 5, BrandOEMEquivalent, 24),
		priced("c", 350, AvailabilitySpecialOrder, 7, 9, BrandAftermarket, 6),
	}

	first := ""
	for i := 0; i < 10; i++ {
		scored := Score(quotes, 2, DefaultWeights())
		selection, err := SelectWinner(scored, 2, DefaultSelectionPolicy(), nil)
		if err != nil {
			t.Fatalf("SelectWinner() error = %v", err)
		}
		if first == "" {
			first = selection.Winner.Quote.VendorID
			continue
		}
		if selection.Winner.Quote.VendorID != first {
			t.Fatalf("winner changed across runs: %s then %s", first, selection.Winner.Quote.VendorID)
		}
	}
}
