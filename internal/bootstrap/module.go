package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"partsource/internal/bootstrap/config"
	"partsource/internal/bootstrap/database"
	"partsource/internal/bootstrap/logging"
	"partsource/internal/domain/quote"
	"partsource/internal/errs"
	cacheinfra "partsource/internal/infrastructure/cache"
	eventsinfra "partsource/internal/infrastructure/events"
	sqliterepo "partsource/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "partsource/internal/infrastructure/persistence/sqlite/uow"
	"partsource/internal/infrastructure/vendors"
	"partsource/internal/ports"
	"partsource/internal/usecase/sourcing"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRequirementRepository,
			fx.As(new(ports.RequirementRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewQuoteRepository,
			fx.As(new(ports.QuoteRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSourcingRequestRepository,
			fx.As(new(ports.SourcingRequestRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewPurchaseOrderRepository,
			fx.As(new(ports.PurchaseOrderRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSequenceRepository,
			fx.As(new(ports.SequenceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideCache),
	fx.Provide(providePublisher),
	fx.Provide(provideVendors),
	fx.Provide(provideService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideCache(cfg config.Config) ports.Cache {
	return cacheinfra.NewLRUCache(cfg.Cache.OutcomeCapacity, cfg.Cache.OutcomeTTL)
}

// providePublisher connects to NATS when a broker url is configured,
// otherwise events stay in-process.
func providePublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	if cfg.Events.NATSURL == "" {
		return eventsinfra.NewMemoryPublisher(), nil
	}

	conn, err := eventsinfra.Connect(cfg.Events.NATSURL)
	if err != nil {
		return nil, err
	}
	logging.Info(ctx, "connected to nats",
		slog.String("component", "bootstrap.fx"),
		slog.String("url", cfg.Events.NATSURL))

	publisher := eventsinfra.NewNATSPublisher(conn)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher, nil
}

type vendorParams struct {
	fx.In

	Ctx           context.Context
	QuoteBookFile string `name:"quoteBookFile"`
}

// provideVendors loads the static quote book when one is given. Without it
// the service runs with no gateways and quotes arrive through the API.
func provideVendors(p vendorParams) ([]ports.VendorGateway, error) {
	if p.QuoteBookFile == "" {
		return nil, nil
	}
	return vendors.LoadQuoteBook(p.Ctx, p.QuoteBookFile)
}

func provideService(
	cfg config.Config,
	requests ports.SourcingRequestRepository,
	requirements ports.RequirementRepository,
	quotes ports.QuoteRepository,
	orders ports.PurchaseOrderRepository,
	sequences ports.SequenceRepository,
	uow ports.UnitOfWork,
	publisher ports.EventPublisher,
	cache ports.Cache,
	gateways []ports.VendorGateway,
) (*sourcing.Service, error) {
	opts := sourcing.DefaultOptions()
	opts.Weights.Price = cfg.Sourcing.PriceWeight
	opts.Weights.Availability = cfg.Sourcing.AvailabilityWeight
	opts.Weights.LeadTime = cfg.Sourcing.LeadTimeWeight
	opts.Weights.Quality = cfg.Sourcing.QualityWeight
	opts.Selection.TieEpsilon = cfg.Sourcing.TieEpsilon
	opts.Selection.OverridePremiumPct = cfg.Sourcing.OverridePremiumPct
	opts.AggregationWindow = cfg.Sourcing.AggregationWindow
	opts.VendorTimeout = cfg.Sourcing.VendorTimeout
	opts.WorkerPoolSize = cfg.Sourcing.WorkerPoolSize
	opts.PreferredVendor = cfg.Sourcing.PreferredVendor
	for i, rule := range cfg.Sourcing.Routing {
		var brand quote.BrandType
		if rule.BrandPreference != "" {
			parsed, err := quote.ParseBrandType(rule.BrandPreference)
			if err != nil {
				return nil, errs.Wrapf(err, "routing rule %d brand preference", i)
			}
			brand = parsed
		}
		opts.Routing = append(opts.Routing, sourcing.RoutingRule{
			CategoryPattern: rule.CategoryPattern,
			BrandPreference: brand,
			VendorIDs:       rule.VendorIDs,
		})
	}

	return sourcing.NewService(sourcing.Deps{
		Requests:     requests,
		Requirements: requirements,
		Quotes:       quotes,
		Orders:       orders,
		Sequences:    sequences,
		UnitOfWork:   uow,
		Publisher:    publisher,
		Outcomes:     cache,
		Vendors:      gateways,
	}, opts), nil
}
