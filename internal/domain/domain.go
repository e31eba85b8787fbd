package domain

import (
	"github.com/yungbote/vowbridge-backend/internal/domain/catalog"
	"github.com/yungbote/vowbridge-backend/internal/domain/events"
	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/domain/user"
	"github.com/yungbote/vowbridge-backend/internal/domain/vendors"
)

type User = user.User

type Event = events.Event
type Guest = events.Guest
type TimelineItem = events.TimelineItem

type Category = catalog.Category
type Product = catalog.Product

type RegistryItem = registry.RegistryItem
type RegistryItemView = registry.RegistryItemView
type RegistryProgress = registry.RegistryProgress
type Contribution = registry.Contribution
type PaymentEvent = registry.PaymentEvent

type Vendor = vendors.Vendor
type VendorReview = vendors.VendorReview
type PortfolioItem = vendors.PortfolioItem
type Booking = vendors.Booking

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Event{},
		&Category{},
		&Product{},
		&RegistryItem{},
		&Contribution{},
		&PaymentEvent{},
		&Guest{},
		&TimelineItem{},
		&Vendor{},
		&VendorReview{},
		&PortfolioItem{},
		&Booking{},
	}
}
