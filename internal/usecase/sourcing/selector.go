package sourcing

import (
	"context"
	"log/slog"

	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/part"
	"partsource/internal/domain/po"
	"partsource/internal/domain/quote"
	"partsource/internal/errs"
)

// selectWinners scores every requirement's competing set fresh and picks a
// winner per requirement. Requirements with no eligible quote come back in
// the unsourced list instead of failing the pass.
func (s *Service) selectWinners(ctx context.Context, requirements []part.Requirement) ([]po.Win, []string) {
	var wins []po.Win
	var unsourced []string

	var override *quote.Override
	if s.opts.PreferredVendor != "" {
		override = &quote.Override{VendorID: s.opts.PreferredVendor}
	}

	now := s.now()
	for _, req := range requirements {
		if req.CurrentStatus.Terminal() {
			continue
		}

		records, err := s.quotes.ListByRequirement(ctx, req.RequirementID)
		if err != nil {
			logging.Warn(ctx, "quote lookup failed",
				slog.String("component", "sourcing.select"),
				slog.String("requirement_id", req.RequirementID),
				slog.Any("err", errs.Loggable(err)))
			unsourced = append(unsourced, req.RequirementID)
			continue
		}

		eligible := make([]quote.VendorQuote, 0, len(records))
		for _, rec := range records {
			if rec.Disposition != quote.DispositionValid {
				continue
			}
			if rec.Quote.Expired(now) {
				continue
			}
			eligible = append(eligible, rec.Quote)
		}

		if len(eligible) == 0 {
			logging.Warn(ctx, "requirement unsourced at deadline",
				slog.String("component", "sourcing.select"),
				slog.String("requirement_id", req.RequirementID),
				slog.Int("audited_quotes", len(records)))
			unsourced = append(unsourced, req.RequirementID)
			continue
		}

		scored := quote.Score(eligible, req.Quantity, s.opts.Weights)
		selection, err := quote.SelectWinner(scored, req.Quantity, s.opts.Selection, override)
		if err != nil {
			unsourced = append(unsourced, req.RequirementID)
			continue
		}
		if selection.OverrideRejectedReason != "" {
			logging.Info(ctx, "vendor override rejected",
				slog.String("component", "sourcing.select"),
				slog.String("requirement_id", req.RequirementID),
				slog.String("reason", selection.OverrideRejectedReason))
		}

		winner := selection.Winner.Quote
		if err := s.requirements.SetSelectedQuote(ctx, req.RequirementID, winner.QuoteID); err != nil {
			logging.Warn(ctx, "selected quote not recorded",
				slog.String("requirement_id", req.RequirementID),
				slog.Any("err", errs.Loggable(err)))
			unsourced = append(unsourced, req.RequirementID)
			continue
		}

		req.SelectedQuoteID = winner.QuoteID
		wins = append(wins, po.Win{Requirement: req, Quote: winner})
	}

	return wins, unsourced
}
