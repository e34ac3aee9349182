package quote

import "sort"

// Weights are the shop-configurable composite score weights. They must sum
// to 1.0; config validation enforces that before a scorer is built.
type Weights struct {
	Price        float64
	Availability float64
	LeadTime     float64
	Quality      float64
}

func DefaultWeights() Weights {
	return Weights{Price: 0.40, Availability: 0.20, LeadTime: 0.20, Quality: 0.20}
}

// ScoredQuote wraps a quote with its normalized sub-scores. It is derived
// state: recomputed on every scoring pass, never stored on its own.
type ScoredQuote struct {
	Quote             VendorQuote
	PriceScore        float64
	AvailabilityScore float64
	LeadTimeScore     float64
	QualityScore      float64
	OverallScore      float64
	Rank              int
}

var availabilityScores = map[Availability]float64{
	AvailabilityInStock:      100,
	AvailabilityLimited:      75,
	AvailabilitySpecialOrder: 50,
	AvailabilityBackordered:  25,
	AvailabilityUnavailable:  0,
}

var qualityBase = map[BrandType]float64{
	BrandOEM:            100,
	BrandOEMEquivalent:  85,
	BrandRemanufactured: 70,
	BrandAftermarket:    60,
	BrandRecycled:       50,
}

// Score normalizes each quote against the full competing set for one
// requirement and returns the set ranked best-first. Ranking order matches
// the selector's tie-break chain so that ranks are deterministic.
func Score(quotes []VendorQuote, requestedQty int, w Weights) []ScoredQuote {
	if len(quotes) == 0 {
		return nil
	}

	costs := make([]float64, len(quotes))
	minCost, maxCost := 0.0, 0.0
	for i, q := range quotes {
		costs[i], _ = q.TotalLandedCost(requestedQty).Float64()
		if i == 0 || costs[i] < minCost {
			minCost = costs[i]
		}
		if i == 0 || costs[i] > maxCost {
			maxCost = costs[i]
		}
	}

	// Quotes without a lead time are scored as the slowest competitor.
	leads := make([]float64, len(quotes))
	minLead, maxLead := 0.0, 0.0
	haveLead := false
	for _, q := range quotes {
		if avg, ok := q.AvgLeadTimeDays(); ok {
			if !haveLead || avg < minLead {
				minLead = avg
			}
			if !haveLead || avg > maxLead {
				maxLead = avg
			}
			haveLead = true
		}
	}
	for i, q := range quotes {
		if avg, ok := q.AvgLeadTimeDays(); ok {
			leads[i] = avg
		} else {
			leads[i] = maxLead
		}
	}

	scored := make([]ScoredQuote, len(quotes))
	for i, q := range quotes {
		sq := ScoredQuote{
			Quote:             q,
			PriceScore:        normalizeInverse(costs[i], minCost, maxCost),
			AvailabilityScore: availabilityScores[q.Availability],
			LeadTimeScore:     normalizeInverse(leads[i], minLead, maxLead),
			QualityScore:      qualityScore(q),
		}
		sq.OverallScore = w.Price*sq.PriceScore +
			w.Availability*sq.AvailabilityScore +
			w.LeadTime*sq.LeadTimeScore +
			w.Quality*sq.QualityScore
		scored[i] = sq
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return Less(scored[i], scored[j], requestedQty)
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return scored
}

// normalizeInverse maps value within [min, max] to [0, 100] with the lowest
// value scoring 100. A degenerate range scores everyone 100.
func normalizeInverse(value, min, max float64) float64 {
	if max <= min {
		return 100
	}
	return 100 * (1 - (value-min)/(max-min))
}

func qualityScore(q VendorQuote) float64 {
	base := qualityBase[q.BrandType]

	months := float64(q.WarrantyMonths)
	if months > 24 {
		months = 24
	}
	if months < 0 {
		months = 0
	}

	return base + months/24*10
}

// Less orders scored quotes best-first: higher overall score, then lower
// landed cost, then shorter lead time, then vendor id. The final vendor-id
// comparison makes the ordering total and repeatable.
func Less(a, b ScoredQuote, requestedQty int) bool {
	if a.OverallScore != b.OverallScore {
		return a.OverallScore > b.OverallScore
	}

	costA := a.Quote.TotalLandedCost(requestedQty)
	costB := b.Quote.TotalLandedCost(requestedQty)
	if c := costA.Cmp(costB); c != 0 {
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
