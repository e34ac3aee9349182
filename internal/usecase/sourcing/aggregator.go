package sourcing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
	domainsourcing "partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/ports"
)

// Resolve drives one request through aggregation, selection and purchase
// order creation, returning the final outcome summary.
func (s *Service) Resolve(ctx context.Context, requestID string) (domainsourcing.Outcome, error) {
	if ctx == nil {
		return domainsourcing.Outcome{}, errors.New("context is required")
	}

	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return domainsourcing.Outcome{}, errs.Wrap(err, "load sourcing request")
	}
	if request.State.Terminal() {
		return domainsourcing.Outcome{}, fmt.Errorf("%w: %s", domainsourcing.ErrAlreadyFinalized, request.State)
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "sourcing.resolve"),
		slog.String("request_id", request.RequestID))

	requirements, err := s.requirements.ListByIDs(ctx, request.RequirementIDs)
	if err != nil {
		return domainsourcing.Outcome{}, errs.Wrap(err, "load requirements")
	}

	if request.State == domainsourcing.StateOpen {
		if err := s.moveRequest(ctx, &request, domainsourcing.StateAggregating); err != nil {
			return domainsourcing.Outcome{}, err
		}
	}

	if request.State == domainsourcing.StateAggregating {
		s.markSourcing(logCtx, requirements)
		s.aggregate(logCtx, request, requirements)

		if err := s.moveRequest(ctx, &request, domainsourcing.StateSelecting); err != nil {
			return domainsourcing.Outcome{}, err
		}
	}

	// Reload: aggregation flipped statuses.
	requirements, err = s.requirements.ListByIDs(ctx, request.RequirementIDs)
	if err != nil {
		return domainsourcing.Outcome{}, errs.Wrap(err, "reload requirements")
	}

	wins, unsourced := s.selectWinners(logCtx, requirements)
	poNumbers, orderedIDs, failedIDs := s.buildPurchaseOrders(logCtx, request, wins)
	unsourced = append(unsourced, failedIDs...)

	// Requirements left behind go back to needed so a later request can
	// retry them.
	s.releaseUnsourced(logCtx, unsourced)

	final := domainsourcing.StateFailed
	switch {
	case len(orderedIDs) == len(requirements) && len(requirements) > 0:
		final = domainsourcing.StateOrdered
	case len(orderedIDs) > 0:
		final = domainsourcing.StatePartiallyOrdered
	}

	if err := s.moveRequest(ctx, &request, final); err != nil {
		return domainsourcing.Outcome{}, err
	}

	outcome := domainsourcing.Outcome{
		RequestID:      request.RequestID,
		State:          final,
		Ordered:        orderedIDs,
		Unsourced:      unsourced,
		PurchaseOrders: poNumbers,
	}
	s.cacheOutcome(ctx, outcome)
	s.publish(ctx, domainsourcing.SourcingRequestResolved{RequestID: request.RequestID, State: final})

	logging.Info(logCtx, "sourcing request resolved",
		slog.String("state", string(final)),
		slog.Int("ordered", len(orderedIDs)),
		slog.Int("unsourced", len(unsourced)),
		slog.Int("purchase_orders", len(poNumbers)))

	return outcome, nil
}

func (s *Service) moveRequest(ctx context.Context, request *domainsourcing.Request, to domainsourcing.State) error {
	if err := domainsourcing.TransitionState(request.State, to); err != nil {
		return err
	}
	if err := s.requests.UpdateState(ctx, request.RequestID, request.State, to); err != nil {
		return errs.Wrapf(err, "move request to %s", to)
	}
	request.State = to
	return nil
}

func (s *Service) markSourcing(ctx context.Context, requirements []part.Requirement) {
	for i := range requirements {
		req := &requirements[i]
		if req.CurrentStatus != part.StatusNeeded {
			continue
		}
		if err := s.transitionRequirement(ctx, req.RequirementID, part.StatusNeeded, part.StatusSourcing); err != nil {
			logging.Warn(ctx, "requirement not moved to sourcing",
				slog.String("requirement_id", req.RequirementID),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		req.CurrentStatus = part.StatusSourcing
	}
}

func (s *Service) releaseUnsourced(ctx context.Context, requirementIDs []string) {
	for _, id := range requirementIDs {
		err := s.transitionRequirement(ctx, id, part.StatusSourcing, part.StatusNeeded)
		if err != nil && !errors.Is(err, part.ErrInvalidTransition) {
			logging.Warn(ctx, "unsourced requirement not released",
				slog.String("requirement_id", id),
				slog.Any("err", errs.Loggable(err)))
		}
	}
}

// transitionRequirement checks legality, applies the guarded update and
// publishes the status event.
func (s *Service) transitionRequirement(ctx context.Context, requirementID string, from, to part.Status) error {
	if err := part.Transition(from, to); err != nil {
		return err
	}
	if err := s.requirements.UpdateStatus(ctx, requirementID, from, to); err != nil {
		return err
	}
	s.publish(ctx, domainsourcing.RequirementStatusChanged{RequirementID: requirementID, From: from, To: to})
	return nil
}

type vendorTask struct {
	requirement part.Requirement
	gateway     ports.VendorGateway
}

type collectedQuote struct {
	requirement part.Requirement
	quote       quote.VendorQuote
}

// aggregate fans one quote request out per (requirement, eligible vendor)
// pair over a bounded worker pool. The request deadline caps the whole
// pass; when it fires, still-running vendor calls are cancelled and their
// results discarded.
func (s *Service) aggregate(ctx context.Context, request domainsourcing.Request, requirements []part.Requirement) {
	tasks := s.buildTasks(ctx, requirements)
	if len(tasks) == 0 {
		return
	}

	aggCtx, cancel := context.WithDeadline(ctx, request.Deadline)
	defer cancel()
	s.trackAggregation(request.RequestID, cancel)
	defer s.untrackAggregation(request.RequestID)

	taskCh := make(chan vendorTask)
	results := make(chan collectedQuote, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < s.opts.WorkerPoolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				s.runVendorTask(aggCtx, task, results)
			}
		}()
	}

	go func() {
	feed:
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-aggCtx.Done():
				break feed
			}
		}
		close(taskCh)
		wg.Wait()
		close(results)
	}()

	// Single collector: ingestion is sequential so scoring inputs and
	// supersede bookkeeping never race.
	for collected := range results {
		if aggCtx.Err() != nil {
			// Deadline fired mid-flight; the quote still lands in the audit
			// log, marked late by ingestion.
			logging.Info(ctx, "quote arrived after aggregation deadline",
				slog.String("quote_id", collected.quote.QuoteID),
				slog.String("vendor_id", collected.quote.VendorID))
		}
		if _, err := s.ingestQuote(ctx, request, collected.requirement, collected.quote); err != nil {
			logging.Warn(ctx, "quote ingestion failed",
				slog.String("quote_id", collected.quote.QuoteID),
				slog.Any("err", errs.Loggable(err)))
		}
	}
}

// trackAggregation exposes an in-flight pass's cancel func so Cancel can
// cut still-running vendor calls short instead of waiting out the deadline.
func (s *Service) trackAggregation(requestID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggCancels[requestID] = cancel
}

func (s *Service) untrackAggregation(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.aggCancels, requestID)
}

func (s *Service) stopAggregation(requestID string) {
	s.mu.Lock()
	cancel, ok := s.aggCancels[requestID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *Service) buildTasks(ctx context.Context, requirements []part.Requirement) []vendorTask {
	byID := make(map[string]ports.VendorGateway, len(s.vendors))
	for _, gw := range s.vendors {
		byID[gw.VendorID()] = gw
	}

	var tasks []vendorTask
	for _, req := range requirements {
		if req.CurrentStatus.Terminal() {
			continue
		}

		gateways := s.vendors
		if ids, matched := EligibleVendorIDs(s.opts.Routing, req); matched {
			gateways = gateways[:0:0]
			for _, id := range ids {
				if gw, ok := byID[id]; ok {
					gateways = append(gateways, gw)
				}
			}
			if len(gateways) == 0 {
				logging.Warn(ctx, "routing rule matched but no vendor configured",
					slog.String("requirement_id", req.RequirementID))
			}
		}

		for _, gw := range gateways {
			tasks = append(tasks, vendorTask{requirement: req, gateway: gw})
		}
	}
	return tasks
}

func (s *Service) runVendorTask(ctx context.Context, task vendorTask, results chan<- collectedQuote) {
	taskCtx, cancel := context.WithTimeout(ctx, s.opts.VendorTimeout)
	defer cancel()

	q, err := task.gateway.RequestQuote(taskCtx, task.requirement)
	if err != nil {
		logging.Warn(ctx, "vendor quote request failed",
			slog.String("component", "sourcing.aggregate"),
			slog.String("vendor_id", task.gateway.VendorID()),
			slog.String("requirement_id", task.requirement.RequirementID),
			slog.Any("err", errs.Loggable(err)))
		return
	}

	select {
	case results <- collectedQuote{requirement: task.requirement, quote: q}:
	case <-ctx.Done():
	}
}
