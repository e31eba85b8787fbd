package app

import (
	"github.com/yungbote/vowbridge-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	catalogmod "github.com/yungbote/vowbridge-backend/internal/modules/catalog"
	eventsmod "github.com/yungbote/vowbridge-backend/internal/modules/events"
	registrymod "github.com/yungbote/vowbridge-backend/internal/modules/registry"
	usersmod "github.com/yungbote/vowbridge-backend/internal/modules/users"
	vendorsmod "github.com/yungbote/vowbridge-backend/internal/modules/vendors"
	"github.com/yungbote/vowbridge-backend/internal/observability"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/temporalx/settlement"
	"gorm.io/gorm"
)

type Services struct {
	Ledger domainagg.ContributionLedger

	Users    usersmod.Usecases
	Events   eventsmod.Usecases
	Catalog  catalogmod.Usecases
	Registry registrymod.Usecases
	Vendors  vendorsmod.Usecases
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)}

	ledger := aggregates.NewContributionLedger(aggregates.ContributionLedgerDeps{
		Base:          base,
		Items:         r.RegistryItems,
		Contributions: r.Contributions,
		PaymentEvents: r.PaymentEvents,
	})
	scheduler := settlement.NewScheduler(log, c.Temporal, c.TemporalCfg.TaskQueue, c.TemporalCfg.SettlementWindow)

	return Services{
		Ledger: ledger,
		Users:  usersmod.New(usersmod.UsecasesDeps{Log: log, Users: r.Users}),
		Events: eventsmod.New(eventsmod.UsecasesDeps{
			Log:               log,
			Events:            r.Events,
			Guests:            r.Guests,
			Timeline:          r.Timeline,
			Mail:              c.Mail,
			PublicURL:         cfg.Registry.PublicURL,
			InviteConcurrency: cfg.Invites.Concurrency,
		}),
		Catalog: catalogmod.New(catalogmod.UsecasesDeps{Log: log, Categories: r.Categories, Products: r.Products}),
		Registry: registrymod.New(registrymod.UsecasesDeps{
			Log:           log,
			Events:        r.Events,
			Products:      r.Products,
			Items:         r.RegistryItems,
			Contributions: r.Contributions,
			Ledger:        ledger,
			Payments:      c.Payments,
			Publisher:     c.Bus,
			Scheduler:     scheduler,
			Metrics:       metrics,
			Mail:          c.Mail,
			PublicURL:     cfg.Registry.PublicURL,
			Currency:      cfg.Registry.Currency,
		}),
		Vendors: vendorsmod.New(vendorsmod.UsecasesDeps{
			Log:       log,
			Vendors:   r.Vendors,
			Reviews:   r.Reviews,
			Portfolio: r.Portfolio,
			Bookings:  r.Bookings,
			Events:    r.Events,
			ReviewAgg: aggregates.NewVendorReviewAggregate(aggregates.VendorReviewDeps{
				Base: base, Vendors: r.Vendors, Reviews: r.Reviews,
			}),
			BookingAgg:     aggregates.NewBookingAggregate(aggregates.BookingDeps{Base: base, Bookings: r.Bookings}),
			Media:          c.Media,
			Moderator:      c.Moderator,
			MaxUploadBytes: cfg.Media.MaxBytes,
			MaxImageDim:    cfg.Media.MaxDimension,
		}),
	}
}
