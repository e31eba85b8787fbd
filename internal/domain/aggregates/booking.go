package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/vowbridge-backend/internal/domain/vendors"
)

var BookingContract = Contract{
	Name:   "Vendors.Booking",
	Tables: []string{"bookings"},
	Notes:  "Status changes compare-and-set on the current status; no row lock.",
}

type BookingAggregate interface {
	Aggregate

	// UpdateStatus moves a booking from ExpectedStatus to Status. A stale ExpectedStatus
	// yields CodeConflict.
	UpdateStatus(ctx context.Context, in UpdateBookingStatusInput) (vendors.Booking, error)
}

type UpdateBookingStatusInput struct {
	BookingID      uuid.UUID
	ExpectedStatus string
	Status         string
	Price          *decimal.Decimal
}
