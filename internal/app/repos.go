package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type Repos struct {
	Users repos.UserRepo

	Events   repos.EventRepo
	Guests   repos.GuestRepo
	Timeline repos.TimelineItemRepo

	Categories repos.CategoryRepo
	Products   repos.ProductRepo

	RegistryItems repos.RegistryItemRepo
	Contributions repos.ContributionRepo
	PaymentEvents repos.PaymentEventRepo

	Vendors   repos.VendorRepo
	Reviews   repos.VendorReviewRepo
	Portfolio repos.PortfolioRepo
	Bookings  repos.BookingRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users: repos.NewUserRepo(db, log),

		Events:   repos.NewEventRepo(db, log),
		Guests:   repos.NewGuestRepo(db, log),
		Timeline: repos.NewTimelineItemRepo(db, log),

		Categories: repos.NewCategoryRepo(db, log),
		Products:   repos.NewProductRepo(db, log),

		RegistryItems: repos.NewRegistryItemRepo(db, log),
		Contributions: repos.NewContributionRepo(db, log),
		PaymentEvents: repos.NewPaymentEventRepo(db, log),

		Vendors:   repos.NewVendorRepo(db, log),
		Reviews:   repos.NewVendorReviewRepo(db, log),
		Portfolio: repos.NewPortfolioRepo(db, log),
		Bookings:  repos.NewBookingRepo(db, log),
	}
}
