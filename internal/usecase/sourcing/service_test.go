package sourcing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
	domainsourcing "partsource/internal/domain/sourcing"
	cacheinfra "partsource/internal/infrastructure/cache"
	eventsinfra "partsource/internal/infrastructure/events"
	"partsource/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "partsource/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "partsource/internal/infrastructure/persistence/sqlite/uow"
	"partsource/internal/ports"
)

// fakeVendor answers from a canned offer table, one offer per requirement.
type fakeVendor struct {
	id     string
	offers map[string]quote.VendorQuote
}

func (f *fakeVendor) VendorID() string { return f.id }

func (f *fakeVendor) RequestQuote(ctx context.Context, req part.Requirement) (quote.VendorQuote, error) {
	if err := ctx.Err(); err != nil {
		return quote.VendorQuote{}, err
	}
	q, ok := f.offers[req.RequirementID]
	if !ok {
		return quote.VendorQuote{}, fmt.Errorf("no offer for %q", req.RequirementID)
	}
	q.RequirementID = req.RequirementID
	return q, nil
}

// blockingVendor parks until its quote context ends, reporting how it was
// released.
type blockingVendor struct {
	id      string
	started chan struct{}
	release chan error
}

func (b *blockingVendor) VendorID() string { return b.id }

func (b *blockingVendor) RequestQuote(ctx context.Context, _ part.Requirement) (quote.VendorQuote, error) {
	close(b.started)
	<-ctx.Done()
	b.release <- ctx.Err()
	return quote.VendorQuote{}, ctx.Err()
}

type testHarness struct {
	service   *Service
	quotes    ports.QuoteRepository
	reqs      ports.RequirementRepository
	orders    ports.PurchaseOrderRepository
	outcomes  ports.Cache
	publisher *eventsinfra.MemoryPublisher
}

func setupService(t *testing.T, gateways []ports.VendorGateway, mutate func(*Options)) *testHarness {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "sourcing.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	opts := DefaultOptions()
	opts.WorkerPoolSize = 4
	if mutate != nil {
		mutate(&opts)
	}

	publisher := eventsinfra.NewMemoryPublisher()
	quotes := sqliterepo.NewQuoteRepository(db)
	reqs := sqliterepo.NewRequirementRepository(db)
	orders := sqliterepo.NewPurchaseOrderRepository(db)
	outcomes := cacheinfra.NewLRUCache(32, time.Minute)

	service := NewService(Deps{
		Requests:     sqliterepo.NewSourcingRequestRepository(db),
		Requirements: reqs,
		Quotes:       quotes,
		Orders:       orders,
		Sequences:    sqliterepo.NewSequenceRepository(db),
		UnitOfWork:   sqliteuow.NewUnitOfWork(db),
		Publisher:    publisher,
		Outcomes:     outcomes,
		Vendors:      gateways,
	}, opts)

	return &testHarness{
		service:   service,
		quotes:    quotes,
		reqs:      reqs,
		orders:    orders,
		outcomes:  outcomes,
		publisher: publisher,
	}
}

func offer(quoteID, vendorID, unitPrice string, brand quote.BrandType, avail quote.Availability, stock, leadMin, leadMax, warranty int) quote.VendorQuote {
	return quote.VendorQuote{
		QuoteID:           quoteID,
		VendorID:          vendorID,
		BrandType:         brand,
		Condition:         "new",
		UnitPrice:         decimal.RequireFromString(unitPrice),
		Availability:      avail,
		QuantityAvailable: stock,
		LeadTimeDaysMin:   &leadMin,
		LeadTimeDaysMax:   &leadMax,
		WarrantyMonths:    warranty,
	}
}

func bumperRequirement(id, repairOrderID string) part.Requirement {
	return part.Requirement{
		RequirementID:   id,
		RepairOrderID:   repairOrderID,
		PartDescription: "front bumper cover",
		OEMPartNumber:   "52119-06230",
		Quantity:        1,
		Category:        part.CategoryBody,
	}
}

func TestResolveEndToEnd(t *testing.T) {
	// Three competing quotes: the mid-priced OEM part in stock with a short
	// lead should beat the cheapest aftermarket offer on the composite score.
	gateways := []ports.VendorGateway{
		&fakeVendor{id: "oem-house", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-oem", "oem-house", "500", quote.BrandOEM, quote.AvailabilityInStock, 5, 2, 2, 12),
		}},
		&fakeVendor{id: "cheap-aftermarket", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-am", "cheap-aftermarket", "420", quote.BrandAftermarket, quote.AvailabilityLimited, 1, 5, 5, 6),
		}},
		&fakeVendor{id: "salvage-yard", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-rec", "salvage-yard", "600", quote.BrandRecycled, quote.AvailabilityBackordered, 0, 10, 14, 0),
		}},
	}
	h := setupService(t, gateways, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-1042",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-1042")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	outcome, err := h.service.Resolve(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if outcome.State != domainsourcing.StateOrdered {
		t.Fatalf("outcome state = %q, want ordered", outcome.State)
	}
	if len(outcome.PurchaseOrders) != 1 {
		t.Fatalf("purchase orders = %v", outcome.PurchaseOrders)
	}
	if len(outcome.Ordered) != 1 || outcome.Ordered[0] != "req-1" {
		t.Fatalf("ordered = %v", outcome.Ordered)
	}

	req, err := h.reqs.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("load requirement: %v", err)
	}
	if req.CurrentStatus != part.StatusOrdered {
		t.Fatalf("requirement status = %q, want ordered", req.CurrentStatus)
	}
	if req.SelectedQuoteID == "" {
		t.Fatalf("selected quote not recorded")
	}
	winner, err := h.quotes.Get(ctx, req.SelectedQuoteID)
	if err != nil {
		t.Fatalf("load winner: %v", err)
	}
	if winner.Quote.VendorID != "oem-house" {
		t.Fatalf("winner vendor = %q, want oem-house", winner.Quote.VendorID)
	}

	order, err := h.orders.Get(ctx, outcome.PurchaseOrders[0])
	if err != nil {
		t.Fatalf("load purchase order: %v", err)
	}
	if order.VendorID != "oem-house" || len(order.LineItems) != 1 {
		t.Fatalf("order = %+v", order)
	}
	if !strings.HasPrefix(order.PONumber, "RO-1042-") || !strings.HasSuffix(order.PONumber, "-001") {
		t.Fatalf("po number = %q", order.PONumber)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("subtotal = %s, want 500", order.Subtotal)
	}

	var sawPOCreated, sawResolved bool
	for _, event := range h.publisher.Events() {
		switch event.Subject() {
		case "sourcing.po.created":
			sawPOCreated = true
		case "sourcing.request.resolved":
			sawResolved = true
		}
	}
	if !sawPOCreated || !sawResolved {
		t.Fatalf("events missing: po.created=%v resolved=%v", sawPOCreated, sawResolved)
	}
}

func TestResolvePartialOrderReleasesUnsourced(t *testing.T) {
	// Only req-1 gets an offer; req-2 stays unsourced and returns to needed.
	gateways := []ports.VendorGateway{
		&fakeVendor{id: "keystone", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-1", "keystone", "150", quote.BrandAftermarket, quote.AvailabilityInStock, 3, 2, 4, 12),
		}},
	}
	h := setupService(t, gateways, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-2001",
		Requirements: []part.Requirement{
			bumperRequirement("req-1", "RO-2001"),
			bumperRequirement("req-2", "RO-2001"),
		},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	outcome, err := h.service.Resolve(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if outcome.State != domainsourcing.StatePartiallyOrdered {
		t.Fatalf("outcome state = %q, want partially_ordered", outcome.State)
	}
	if len(outcome.Unsourced) != 1 || outcome.Unsourced[0] != "req-2" {
		t.Fatalf("unsourced = %v", outcome.Unsourced)
	}

	released, err := h.reqs.Get(ctx, "req-2")
	if err != nil {
		t.Fatalf("load requirement: %v", err)
	}
	if released.CurrentStatus != part.StatusNeeded {
		t.Fatalf("req-2 status = %q, want needed", released.CurrentStatus)
	}
}

func TestResolveFailsWithNoQuotes(t *testing.T) {
	h := setupService(t, nil, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-3001",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-3001")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	outcome, err := h.service.Resolve(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.State != domainsourcing.StateFailed {
		t.Fatalf("outcome state = %q, want failed", outcome.State)
	}

	// Resolving again is rejected: the request is closed.
	if _, err := h.service.Resolve(ctx, request.RequestID); !errors.Is(err, domainsourcing.ErrAlreadyFinalized) {
		t.Fatalf("second Resolve() error = %v, want ErrAlreadyFinalized", err)
	}
}

func TestSubmitQuoteDispositions(t *testing.T) {
	h := setupService(t, nil, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-4001",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-4001")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	valid := offer("q-1", "keystone", "180", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12)
	valid.RequirementID = "req-1"
	rec, err := h.service.SubmitQuote(ctx, request.RequestID, valid)
	if err != nil {
		t.Fatalf("SubmitQuote() error = %v", err)
	}
	if rec.Disposition != quote.DispositionValid {
		t.Fatalf("disposition = %q, want valid", rec.Disposition)
	}

	// Duplicate quote id: accepted, but no second audit row.
	if _, err := h.service.SubmitQuote(ctx, request.RequestID, valid); err != nil {
		t.Fatalf("SubmitQuote(duplicate) error = %v", err)
	}

	// A fresh quote from the same vendor supersedes the first.
	fresher := offer("q-2", "keystone", "170", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12)
	fresher.RequirementID = "req-1"
	if _, err := h.service.SubmitQuote(ctx, request.RequestID, fresher); err != nil {
		t.Fatalf("SubmitQuote(fresher) error = %v", err)
	}

	// Rejected quote keeps its reason code in the audit trail.
	bad := offer("q-3", "lkq", "-5", quote.BrandRecycled, quote.AvailabilityInStock, 2, 3, 5, 0)
	bad.RequirementID = "req-1"
	rec, err = h.service.SubmitQuote(ctx, request.RequestID, bad)
	if err != nil {
		t.Fatalf("SubmitQuote(bad) error = %v", err)
	}
	if rec.Disposition != quote.DispositionRejected || rec.RejectionCode != quote.RejectNegativePrice {
		t.Fatalf("bad quote = %q/%q", rec.Disposition, rec.RejectionCode)
	}

	records, err := h.quotes.ListByRequirement(ctx, "req-1")
	if err != nil {
		t.Fatalf("ListByRequirement() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("audit rows = %d, want 3", len(records))
	}
	byID := make(map[string]quote.Record, len(records))
	for _, r := range records {
		byID[r.Quote.QuoteID] = r
	}
	if byID["q-1"].Disposition != quote.DispositionSuperseded {
		t.Fatalf("q-1 disposition = %q, want superseded", byID["q-1"].Disposition)
	}
	if byID["q-2"].Disposition != quote.DispositionValid {
		t.Fatalf("q-2 disposition = %q, want valid", byID["q-2"].Disposition)
	}
}

func TestResubmittedQuoteCannotUnseatNewer(t *testing.T) {
	h := setupService(t, nil, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-4002",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-4002")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	first := offer("q-1", "keystone", "180", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12)
	first.RequirementID = "req-1"
	if _, err := h.service.SubmitQuote(ctx, request.RequestID, first); err != nil {
		t.Fatalf("SubmitQuote(first) error = %v", err)
	}

	second := offer("q-2", "keystone", "170", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12)
	second.RequirementID = "req-1"
	if _, err := h.service.SubmitQuote(ctx, request.RequestID, second); err != nil {
		t.Fatalf("SubmitQuote(second) error = %v", err)
	}

	// A stale retransmission of q-1 must not supersede q-2; the stored
	// record comes back with its superseded disposition.
	rec, err := h.service.SubmitQuote(ctx, request.RequestID, first)
	if err != nil {
		t.Fatalf("SubmitQuote(resubmitted) error = %v", err)
	}
	if rec.Disposition != quote.DispositionSuperseded {
		t.Fatalf("resubmitted disposition = %q, want superseded", rec.Disposition)
	}

	records, err := h.quotes.ListByRequirement(ctx, "req-1")
	if err != nil {
		t.Fatalf("ListByRequirement() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("audit rows = %d, want 2", len(records))
	}
	byID := make(map[string]quote.Record, len(records))
	for _, r := range records {
		byID[r.Quote.QuoteID] = r
	}
	if byID["q-1"].Disposition != quote.DispositionSuperseded {
		t.Fatalf("q-1 disposition = %q, want superseded", byID["q-1"].Disposition)
	}
	if byID["q-2"].Disposition != quote.DispositionValid {
		t.Fatalf("q-2 disposition = %q, want valid", byID["q-2"].Disposition)
	}
}

func TestSubmitQuoteAfterDeadlineIsLate(t *testing.T) {
	h := setupService(t, nil, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-5001",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-5001")},
		Deadline:      time.Now().UTC().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	q := offer("q-late", "keystone", "200", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12)
	q.RequirementID = "req-1"
	rec, err := h.service.SubmitQuote(ctx, request.RequestID, q)
	if err != nil {
		t.Fatalf("SubmitQuote() error = %v", err)
	}
	if rec.Disposition != quote.DispositionLate {
		t.Fatalf("disposition = %q, want late", rec.Disposition)
	}

	// Late quotes never compete: resolving finds nothing eligible.
	outcome, err := h.service.Resolve(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.State != domainsourcing.StateFailed {
		t.Fatalf("outcome state = %q, want failed", outcome.State)
	}
}

func TestCancelClosesRequest(t *testing.T) {
	h := setupService(t, nil, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-6001",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-6001")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	if err := h.service.Cancel(ctx, request.RequestID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := h.service.Cancel(ctx, request.RequestID); !errors.Is(err, domainsourcing.ErrAlreadyFinalized) {
		t.Fatalf("second Cancel() error = %v, want ErrAlreadyFinalized", err)
	}
	if _, err := h.service.Resolve(ctx, request.RequestID); !errors.Is(err, domainsourcing.ErrAlreadyFinalized) {
		t.Fatalf("Resolve() after cancel error = %v, want ErrAlreadyFinalized", err)
	}
}

func TestCancelStopsInFlightAggregation(t *testing.T) {
	vendor := &blockingVendor{
		id:      "slow-house",
		started: make(chan struct{}),
		release: make(chan error, 1),
	}
	h := setupService(t, []ports.VendorGateway{vendor}, func(o *Options) {
		// Long window and timeout: only cancellation can release the vendor.
		o.AggregationWindow = time.Hour
		o.VendorTimeout = time.Hour
	})
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-6002",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-6002")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	resolveErr := make(chan error, 1)
	go func() {
		_, err := h.service.Resolve(ctx, request.RequestID)
		resolveErr <- err
	}()

	<-vendor.started
	if err := h.service.Cancel(ctx, request.RequestID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if err := <-vendor.release; !errors.Is(err, context.Canceled) {
		t.Fatalf("vendor context error = %v, want canceled", err)
	}
	if err := <-resolveErr; err == nil {
		t.Fatalf("Resolve() on a cancelled request must fail the state guard")
	}

	released, err := h.reqs.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("load requirement: %v", err)
	}
	if released.CurrentStatus == part.StatusOrdered {
		t.Fatalf("req-1 status = %q, no order may follow a cancel", released.CurrentStatus)
	}
}

func TestPreferredVendorOverrideWithinPremium(t *testing.T) {
	// lkq scores best on price; the shop's preferred vendor keystone is 5%
	// more expensive, inside the 10% premium, so keystone wins.
	gateways := []ports.VendorGateway{
		&fakeVendor{id: "lkq", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-lkq", "lkq", "200", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12),
		}},
		&fakeVendor{id: "keystone", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-key", "keystone", "210", quote.BrandAftermarket, quote.AvailabilityInStock, 2, 3, 5, 12),
		}},
	}
	h := setupService(t, gateways, func(o *Options) {
		o.PreferredVendor = "keystone"
	})
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-7001",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-7001")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	outcome, err := h.service.Resolve(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if outcome.State != domainsourcing.StateOrdered {
		t.Fatalf("outcome state = %q, want ordered", outcome.State)
	}

	order, err := h.orders.Get(ctx, outcome.PurchaseOrders[0])
	if err != nil {
		t.Fatalf("load purchase order: %v", err)
	}
	if order.VendorID != "keystone" {
		t.Fatalf("order vendor = %q, want keystone (override)", order.VendorID)
	}
}

func TestSequenceAdvancesAcrossRequests(t *testing.T) {
	gateways := []ports.VendorGateway{
		&fakeVendor{id: "keystone", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-1", "keystone", "150", quote.BrandAftermarket, quote.AvailabilityInStock, 3, 2, 4, 12),
			"req-2": offer("q-2", "keystone", "90", quote.BrandAftermarket, quote.AvailabilityInStock, 3, 2, 4, 12),
		}},
	}
	h := setupService(t, gateways, nil)
	ctx := context.Background()

	for i, reqID := range []string{"req-1", "req-2"} {
		request, err := h.service.CreateRequest(ctx, CreateRequestInput{
			RepairOrderID: "RO-8001",
			Requirements:  []part.Requirement{bumperRequirement(reqID, "RO-8001")},
		})
		if err != nil {
			t.Fatalf("CreateRequest(%d) error = %v", i, err)
		}
		outcome, err := h.service.Resolve(ctx, request.RequestID)
		if err != nil {
			t.Fatalf("Resolve(%d) error = %v", i, err)
		}
		wantSuffix := fmt.Sprintf("-%03d", i+1)
		if len(outcome.PurchaseOrders) != 1 || !strings.HasSuffix(outcome.PurchaseOrders[0], wantSuffix) {
			t.Fatalf("purchase orders = %v, want suffix %s", outcome.PurchaseOrders, wantSuffix)
		}
	}

	orders, err := h.orders.ListByRepairOrder(ctx, "RO-8001")
	if err != nil {
		t.Fatalf("ListByRepairOrder() error = %v", err)
	}
	if len(orders) != 2 || orders[0].PONumber == orders[1].PONumber {
		t.Fatalf("po numbers must be unique: %v", orders)
	}
}

func TestOutcomeScopedToRequest(t *testing.T) {
	// Two sequential requests on one repair order each produce a purchase
	// order; a rebuilt outcome must only list its own request's orders.
	gateways := []ports.VendorGateway{
		&fakeVendor{id: "keystone", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-1", "keystone", "150", quote.BrandAftermarket, quote.AvailabilityInStock, 3, 2, 4, 12),
			"req-2": offer("q-2", "keystone", "90", quote.BrandAftermarket, quote.AvailabilityInStock, 3, 2, 4, 12),
		}},
	}
	h := setupService(t, gateways, nil)
	ctx := context.Background()

	resolved := make(map[string][]string, 2)
	var requestIDs []string
	for _, reqID := range []string{"req-1", "req-2"} {
		request, err := h.service.CreateRequest(ctx, CreateRequestInput{
			RepairOrderID: "RO-9101",
			Requirements:  []part.Requirement{bumperRequirement(reqID, "RO-9101")},
		})
		if err != nil {
			t.Fatalf("CreateRequest(%s) error = %v", reqID, err)
		}
		outcome, err := h.service.Resolve(ctx, request.RequestID)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", reqID, err)
		}
		if len(outcome.PurchaseOrders) != 1 {
			t.Fatalf("Resolve(%s) purchase orders = %v", reqID, outcome.PurchaseOrders)
		}
		resolved[request.RequestID] = outcome.PurchaseOrders
		requestIDs = append(requestIDs, request.RequestID)
	}

	for _, id := range requestIDs {
		// Drop the cached copy so the outcome is rebuilt from storage.
		if err := h.outcomes.Delete(ctx, outcomeKey(id)); err != nil {
			t.Fatalf("cache delete: %v", err)
		}
		outcome, err := h.service.Outcome(ctx, id)
		if err != nil {
			t.Fatalf("Outcome() error = %v", err)
		}
		want := resolved[id]
		if len(outcome.PurchaseOrders) != 1 || outcome.PurchaseOrders[0] != want[0] {
			t.Fatalf("Outcome() purchase orders = %v, want %v", outcome.PurchaseOrders, want)
		}
	}
}

func TestOutcomeServedFromCache(t *testing.T) {
	gateways := []ports.VendorGateway{
		&fakeVendor{id: "keystone", offers: map[string]quote.VendorQuote{
			"req-1": offer("q-1", "keystone", "150", quote.BrandAftermarket, quote.AvailabilityInStock, 3, 2, 4, 12),
		}},
	}
	h := setupService(t, gateways, nil)
	ctx := context.Background()

	request, err := h.service.CreateRequest(ctx, CreateRequestInput{
		RepairOrderID: "RO-9001",
		Requirements:  []part.Requirement{bumperRequirement("req-1", "RO-9001")},
	})
	if err != nil {
		t.Fatalf("CreateRequest() error = %v", err)
	}

	resolved, err := h.service.Resolve(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	cached, err := h.service.Outcome(ctx, request.RequestID)
	if err != nil {
		t.Fatalf("Outcome() error = %v", err)
	}
	if cached.RequestID != resolved.RequestID || cached.State != resolved.State {
		t.Fatalf("Outcome() = %+v, want %+v", cached, resolved)
	}
	if len(cached.PurchaseOrders) != len(resolved.PurchaseOrders) {
		t.Fatalf("Outcome() purchase orders = %v", cached.PurchaseOrders)
	}
}
