package sourcing

import (
	"context"
	"errors"
	"log/slog"

	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/part"
	"partsource/internal/domain/po"
	domainsourcing "partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/ports"
)

// buildPurchaseOrders turns the winning quotes into one purchase order per
// vendor. Each vendor group commits or rolls back as a unit; a failing
// group never blocks the others. Returns the created PO numbers, the
// requirement ids they cover and the ids from failed groups.
func (s *Service) buildPurchaseOrders(ctx context.Context, request domainsourcing.Request, wins []po.Win) ([]string, []string, []string) {
	var poNumbers []string
	var orderedIDs []string
	var failedIDs []string

	for _, group := range po.GroupByVendor(wins) {
		order, events, err := s.buildVendorGroup(ctx, request, group)
		if err != nil {
			vendorID := group[0].Quote.VendorID
			logging.Error(ctx, "purchase order creation failed",
				slog.String("component", "sourcing.po"),
				slog.String("vendor_id", vendorID),
				slog.Any("err", errs.Loggable(err)))
			for _, w := range group {
				failedIDs = append(failedIDs, w.Requirement.RequirementID)
			}
			continue
		}

		poNumbers = append(poNumbers, order.PONumber)
		for _, line := range order.LineItems {
			orderedIDs = append(orderedIDs, line.RequirementID)
		}

		// Events only go out once the group is committed.
		for _, event := range events {
			s.publish(ctx, event)
		}
		s.publish(ctx, domainsourcing.PurchaseOrderCreated{
			PONumber:    order.PONumber,
			VendorID:    order.VendorID,
			TotalAmount: order.TotalAmount,
		})

		logging.Info(ctx, "purchase order created",
			slog.String("component", "sourcing.po"),
			slog.String("po_number", order.PONumber),
			slog.String("vendor_id", order.VendorID),
			slog.String("total", order.TotalAmount.String()))
	}

	return poNumbers, orderedIDs, failedIDs
}

// buildVendorGroup runs one vendor's PO inside a transaction: sequence
// claim, order insert and the needed/sourcing -> ordered transitions. Any
// line failing aborts the whole group with no partial mutation.
func (s *Service) buildVendorGroup(ctx context.Context, request domainsourcing.Request, group []po.Win) (po.PurchaseOrder, []domainsourcing.Event, error) {
	var order po.PurchaseOrder
	var events []domainsourcing.Event

	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		now := s.now()
		vendorID := group[0].Quote.VendorID

		key := ports.SequenceKey{
			RepairOrderID: request.RepairOrderID,
			VendorID:      vendorID,
			YearMonth:     po.YearMonth(now),
		}
		seq, err := s.sequences.Next(txCtx, key)
		if errors.Is(err, domainsourcing.ErrSequenceConflict) {
			// One bounded retry with a fresh read before surfacing.
			seq, err = s.sequences.Next(txCtx, key)
		}
		if err != nil {
			return errs.Wrap(err, "claim po sequence")
		}

		number := po.FormatNumber(request.RepairOrderID, now, vendorID, seq)
		order, err = po.Assemble(number, group, s.opts.Totals, now)
		if err != nil {
			return errs.Wrap(err, "assemble purchase order")
		}

		if err := s.orders.Create(txCtx, order); err != nil {
			return errs.Wrapf(err, "persist purchase order %q", number)
		}

		for _, w := range group {
			from := w.Requirement.CurrentStatus
			if err := part.Transition(from, part.StatusOrdered); err != nil {
				return errs.Wrapf(err, "requirement %q", w.Requirement.RequirementID)
			}
			if err := s.requirements.UpdateStatus(txCtx, w.Requirement.RequirementID, from, part.StatusOrdered); err != nil {
				return errs.Wrapf(err, "order requirement %q", w.Requirement.RequirementID)
			}
			events = append(events, domainsourcing.RequirementStatusChanged{
				RequirementID: w.Requirement.RequirementID,
				From:          from,
				To:            part.StatusOrdered,
			})
		}

		return nil
	})
	if err != nil {
		return po.PurchaseOrder{}, nil, err
	}

	return order, events, nil
}
