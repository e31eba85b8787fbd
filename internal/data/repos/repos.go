package repos

import (
	"github.com/yungbote/vowbridge-backend/internal/data/repos/catalog"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/events"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/registry"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/user"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type EventRepo = events.EventRepo
type GuestRepo = events.GuestRepo
type TimelineItemRepo = events.TimelineItemRepo

type CategoryRepo = catalog.CategoryRepo
type ProductRepo = catalog.ProductRepo
type ProductFilter = catalog.ProductFilter

type RegistryItemRepo = registry.RegistryItemRepo
type ContributionRepo = registry.ContributionRepo
type PaymentEventRepo = registry.PaymentEventRepo

type VendorRepo = vendors.VendorRepo
type VendorFilter = vendors.VendorFilter
type VendorReviewRepo = vendors.VendorReviewRepo
type ReviewStats = vendors.ReviewStats
type PortfolioRepo = vendors.PortfolioRepo
type BookingRepo = vendors.BookingRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewEventRepo(db *gorm.DB, log *logger.Logger) EventRepo { return events.NewEventRepo(db, log) }
func NewGuestRepo(db *gorm.DB, log *logger.Logger) GuestRepo { return events.NewGuestRepo(db, log) }
func NewTimelineItemRepo(db *gorm.DB, log *logger.Logger) TimelineItemRepo {
	return events.NewTimelineItemRepo(db, log)
}

func NewCategoryRepo(db *gorm.DB, log *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, log)
}
func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, log)
}

func NewRegistryItemRepo(db *gorm.DB, log *logger.Logger) RegistryItemRepo {
	return registry.NewRegistryItemRepo(db, log)
}
func NewContributionRepo(db *gorm.DB, log *logger.Logger) ContributionRepo {
	return registry.NewContributionRepo(db, log)
}
func NewPaymentEventRepo(db *gorm.DB, log *logger.Logger) PaymentEventRepo {
	return registry.NewPaymentEventRepo(db, log)
}

func NewVendorRepo(db *gorm.DB, log *logger.Logger) VendorRepo { return vendors.NewVendorRepo(db, log) }
func NewVendorReviewRepo(db *gorm.DB, log *logger.Logger) VendorReviewRepo {
	return vendors.NewVendorReviewRepo(db, log)
}
func NewPortfolioRepo(db *gorm.DB, log *logger.Logger) PortfolioRepo {
	return vendors.NewPortfolioRepo(db, log)
}
func NewBookingRepo(db *gorm.DB, log *logger.Logger) BookingRepo {
	return vendors.NewBookingRepo(db, log)
}
