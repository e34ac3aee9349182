package sourcing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/part"
	"partsource/internal/domain/po"
	"partsource/internal/domain/quote"
	domainsourcing "partsource/internal/domain/sourcing"
	"partsource/internal/errs"
	"partsource/internal/ports"
)

// Options carries the shop-configured decision parameters for one service
// instance.
type Options struct {
	Weights           quote.Weights
	Selection         quote.SelectionPolicy
	Totals            po.TotalsPolicy
	Routing           []RoutingRule
	// PreferredVendor pins a shop-level vendor override for every
	// requirement; empty means no override.
	PreferredVendor   string
	AggregationWindow time.Duration
	VendorTimeout     time.Duration
	WorkerPoolSize    int
}

func DefaultOptions() Options {
	return Options{
		Weights:           quote.DefaultWeights(),
		Selection:         quote.DefaultSelectionPolicy(),
		Totals:            po.DefaultTotalsPolicy(),
		AggregationWindow: 2 * time.Minute,
		VendorTimeout:     15 * time.Second,
		WorkerPoolSize:    8,
	}
}

// Service owns the sourcing request lifecycle end to end: quote ingestion,
// aggregation, selection and purchase order creation.
type Service struct {
	requests     ports.SourcingRequestRepository
	requirements ports.RequirementRepository
	quotes       ports.QuoteRepository
	orders       ports.PurchaseOrderRepository
	sequences    ports.SequenceRepository
	uow          ports.UnitOfWork
	publisher    ports.EventPublisher
	outcomes     ports.Cache
	vendors      []ports.VendorGateway
	opts         Options
	now          func() time.Time

	mu         sync.Mutex
	aggCancels map[string]context.CancelFunc
}

type Deps struct {
	Requests     ports.SourcingRequestRepository
	Requirements ports.RequirementRepository
	Quotes       ports.QuoteRepository
	Orders       ports.PurchaseOrderRepository
	Sequences    ports.SequenceRepository
	UnitOfWork   ports.UnitOfWork
	Publisher    ports.EventPublisher
	Outcomes     ports.Cache
	Vendors      []ports.VendorGateway
}

func NewService(deps Deps, opts Options) *Service {
	if opts.WorkerPoolSize < 1 {
		opts.WorkerPoolSize = 1
	}
	return &Service{
		requests:     deps.Requests,
		requirements: deps.Requirements,
		quotes:       deps.Quotes,
		orders:       deps.Orders,
		sequences:    deps.Sequences,
		uow:          deps.UnitOfWork,
		publisher:    deps.Publisher,
		outcomes:     deps.Outcomes,
		vendors:      deps.Vendors,
		opts:         opts,
		now:          time.Now,
		aggCancels:   make(map[string]context.CancelFunc),
	}
}

// WithClock overrides the service clock; tests pin time with it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type CreateRequestInput struct {
	RepairOrderID string
	Requirements  []part.Requirement
	// Deadline zero means now + the configured aggregation window.
	Deadline time.Time
}

// CreateRequest registers the requirements and opens a sourcing request
// over them.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (domainsourcing.Request, error) {
	if ctx == nil {
		return domainsourcing.Request{}, errors.New("context is required")
	}
	if input.RepairOrderID == "" {
		return domainsourcing.Request{}, errors.New("repair order id is required")
	}
	if len(input.Requirements) == 0 {
		return domainsourcing.Request{}, errors.New("at least one requirement is required")
	}

	deadline := input.Deadline
	if deadline.IsZero() {
		deadline = s.now().Add(s.opts.AggregationWindow)
	}

	request := domainsourcing.Request{
		RequestID:     uuid.NewString(),
		RepairOrderID: input.RepairOrderID,
		State:         domainsourcing.StateOpen,
		Deadline:      deadline,
		CreatedAt:     s.now(),
	}

	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, req := range input.Requirements {
			if req.RepairOrderID != input.RepairOrderID {
				return fmt.Errorf("requirement %q belongs to repair order %q, not %q",
					req.RequirementID, req.RepairOrderID, input.RepairOrderID)
			}
			if req.RequirementID == "" {
				return errors.New("requirement id is required")
			}
			if req.Quantity < 1 {
				return fmt.Errorf("requirement %q quantity must be positive", req.RequirementID)
			}
			if req.CurrentStatus == "" {
				req.CurrentStatus = part.StatusNeeded
			}

			if err := s.requirements.Create(txCtx, req); err != nil {
				return errs.Wrapf(err, "create requirement %q", req.RequirementID)
			}
			request.RequirementIDs = append(request.RequirementIDs, req.RequirementID)
		}

		if err := s.requests.Create(txCtx, request); err != nil {
			return errs.Wrap(err, "create sourcing request")
		}
		return nil
	})
	if err != nil {
		return domainsourcing.Request{}, err
	}

	logging.Info(ctx, "sourcing request created",
		slog.String("component", "sourcing.service"),
		slog.String("request_id", request.RequestID),
		slog.Int("requirements", len(request.RequirementIDs)))

	return request, nil
}

// SubmitQuote ingests one vendor submission for a requirement under an
// aggregating request. Invalid and late quotes are retained for audit with
// the matching disposition; resubmitting a known quote id returns the
// stored record unchanged.
func (s *Service) SubmitQuote(ctx context.Context, requestID string, q quote.VendorQuote) (quote.Record, error) {
	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return quote.Record{}, errs.Wrap(err, "load sourcing request")
	}
	if request.State.Terminal() {
		return quote.Record{}, fmt.Errorf("%w: %s", domainsourcing.ErrAlreadyFinalized, request.State)
	}

	requirement, err := s.requirements.Get(ctx, q.RequirementID)
	if err != nil {
		return quote.Record{}, errs.Wrapf(err, "load requirement %q", q.RequirementID)
	}

	return s.ingestQuote(ctx, request, requirement, q)
}

func (s *Service) ingestQuote(ctx context.Context, request domainsourcing.Request, requirement part.Requirement, q quote.VendorQuote) (quote.Record, error) {
	now := s.now()
	if q.ReceivedAt.IsZero() {
		q.ReceivedAt = now
	}

	rec := quote.Record{Quote: q, Disposition: quote.DispositionValid}

	if err := quote.Validate(q, requirement.Quantity, now); err != nil {
		var rejection *quote.RejectionError
		if !errors.As(err, &rejection) {
			return quote.Record{}, err
		}
		rec.Disposition = quote.DispositionRejected
		rec.RejectionCode = rejection.Code
		logging.Warn(ctx, "quote rejected",
			slog.String("component", "sourcing.service"),
			slog.String("quote_id", q.QuoteID),
			slog.String("vendor_id", q.VendorID),
			slog.String("reason", string(rejection.Code)))
	} else if now.After(request.Deadline) {
		// Late quotes are audited but never reopen a completed pass.
		rec.Disposition = quote.DispositionLate
	}

	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		// A known quote id is a resubmission: the stored row keeps its
		// disposition and must not unseat whatever superseded it since.
		existing, err := s.quotes.Get(txCtx, q.QuoteID)
		if err == nil {
			rec = existing
			return nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return errs.Wrapf(err, "look up quote %q", q.QuoteID)
		}

		if rec.Disposition == quote.DispositionValid {
			if err := s.quotes.MarkSuperseded(txCtx, q.RequirementID, q.VendorID, q.QuoteID); err != nil {
				return errs.Wrap(err, "supersede earlier quotes")
			}
		}
		if err := s.quotes.Save(txCtx, rec); err != nil {
			return errs.Wrapf(err, "save quote %q", q.QuoteID)
		}
		return nil
	})
	if err != nil {
		return quote.Record{}, err
	}

	return rec, nil
}

// Cancel aborts an unfinished request. Already-created purchase orders are
// never rolled back; cancelling a closed request is rejected.
func (s *Service) Cancel(ctx context.Context, requestID string) error {
	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return errs.Wrap(err, "load sourcing request")
	}

	if err := domainsourcing.TransitionState(request.State, domainsourcing.StateCancelled); err != nil {
		return err
	}
	if err := s.requests.UpdateState(ctx, requestID, request.State, domainsourcing.StateCancelled); err != nil {
		return err
	}

	// A concurrent resolve may still be gathering quotes for this request;
	// cut its vendor calls short. Its aggregating-to-selecting move then
	// fails on the state guard, so no orders are placed.
	s.stopAggregation(requestID)

	s.publish(ctx, domainsourcing.SourcingRequestResolved{
		RequestID: requestID,
		State:     domainsourcing.StateCancelled,
	})
	return nil
}

// Outcome returns the resolution summary for a request, served from the
// bounded cache when warm.
func (s *Service) Outcome(ctx context.Context, requestID string) (domainsourcing.Outcome, error) {
	if cached, found, err := s.outcomes.Get(ctx, outcomeKey(requestID)); err == nil && found {
		var outcome domainsourcing.Outcome
		if jsonErr := json.Unmarshal([]byte(cached), &outcome); jsonErr == nil {
			return outcome, nil
		}
	}

	request, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return domainsourcing.Outcome{}, errs.Wrap(err, "load sourcing request")
	}

	return s.buildOutcome(ctx, request)
}

func (s *Service) buildOutcome(ctx context.Context, request domainsourcing.Request) (domainsourcing.Outcome, error) {
	requirements, err := s.requirements.ListByIDs(ctx, request.RequirementIDs)
	if err != nil {
		return domainsourcing.Outcome{}, errs.Wrap(err, "load requirements")
	}

	outcome := domainsourcing.Outcome{
		RequestID:      request.RequestID,
		State:          request.State,
		Ordered:        []string{},
		Unsourced:      []string{},
		PurchaseOrders: []string{},
	}
	for _, req := range requirements {
		if req.CurrentStatus == part.StatusOrdered {
			outcome.Ordered = append(outcome.Ordered, req.RequirementID)
		} else if !req.CurrentStatus.Terminal() {
			outcome.Unsourced = append(outcome.Unsourced, req.RequirementID)
		}
	}

	// A repair order can run several sourcing requests over time; only the
	// orders covering this request's requirements belong in its outcome.
	inRequest := make(map[string]struct{}, len(request.RequirementIDs))
	for _, id := range request.RequirementIDs {
		inRequest[id] = struct{}{}
	}
	orders, err := s.orders.ListByRepairOrder(ctx, request.RepairOrderID)
	if err != nil {
		return domainsourcing.Outcome{}, errs.Wrap(err, "load purchase orders")
	}
	for _, order := range orders {
		for _, line := range order.LineItems {
			if _, ok := inRequest[line.RequirementID]; ok {
				outcome.PurchaseOrders = append(outcome.PurchaseOrders, order.PONumber)
				break
			}
		}
	}

	return outcome, nil
}

func (s *Service) cacheOutcome(ctx context.Context, outcome domainsourcing.Outcome) {
	payload, err := json.Marshal(outcome)
	if err != nil {
		return
	}
	if err := s.outcomes.Set(ctx, outcomeKey(outcome.RequestID), string(payload), 0); err != nil {
		logging.Warn(ctx, "outcome cache write failed",
			slog.String("component", "sourcing.service"),
			slog.Any("err", errs.Loggable(err)))
	}
}

func outcomeKey(requestID string) string {
	return "outcome:" + requestID
}

func (s *Service) publish(ctx context.Context, event domainsourcing.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.Warn(ctx, "event publish failed",
			slog.String("component", "sourcing.service"),
			slog.String("subject", event.Subject()),
			slog.Any("err", errs.Loggable(err)))
	}
}
