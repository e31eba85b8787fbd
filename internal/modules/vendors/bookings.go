package vendors

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	domvendors "github.com/yungbote/vowbridge-backend/internal/domain/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type CreateBookingInput struct {
	UserID      uuid.UUID
	VendorID    uuid.UUID
	EventID     uuid.UUID
	ServiceDate time.Time
	Duration    *int
	Notes       string
}

// CreateBooking opens an inquiry from an event owner to a vendor.
func (u Usecases) CreateBooking(ctx context.Context, in CreateBookingInput) (*types.Booking, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	if in.EventID == uuid.Nil {
		return nil, apierr.Validation("missing_event_id", "eventId is required")
	}
	if in.ServiceDate.IsZero() {
		return nil, apierr.Validation("missing_service_date", "serviceDate is required")
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return nil, apierr.Validation("invalid_duration", "duration must be a positive number of hours")
	}
	v, err := u.loadVendor(ctx, in.VendorID)
	if err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	ev, err := u.deps.Events.GetByID(dbc, in.EventID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_event_failed", err)
	}
	if ev == nil {
		return nil, apierr.NotFound("event_not_found", "event not found")
	}
	if ev.UserID != in.UserID {
		return nil, apierr.Forbidden("not_event_owner", "you can only book vendors for your own events")
	}

	b := &types.Booking{
		ID:          uuid.New(),
		VendorID:    v.ID,
		EventID:     ev.ID,
		UserID:      in.UserID,
		ServiceDate: in.ServiceDate.UTC(),
		Duration:    in.Duration,
		Status:      domvendors.BookingInquiry,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if err := u.deps.Bookings.Create(dbc, b); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_booking_failed", err)
	}
	return b, nil
}

// MyBookings lists bookings for the caller's vendor listing, latest service date first.
func (u Usecases) MyBookings(ctx context.Context, userID uuid.UUID) ([]*types.Booking, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	v, err := u.deps.Vendors.GetByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_vendor_failed", err)
	}
	if v == nil {
		return []*types.Booking{}, nil
	}
	rows, err := u.deps.Bookings.ListByVendor(dbc, v.ID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_bookings_failed", err)
	}
	return rows, nil
}

type UpdateBookingStatusInput struct {
	UserID         uuid.UUID
	BookingID      uuid.UUID
	Status         string
	ExpectedStatus string
	Price          *decimal.Decimal
}

// UpdateBookingStatus lets the vendor owner make any allowed transition; the requester may
// only cancel.
func (u Usecases) UpdateBookingStatus(ctx context.Context, in UpdateBookingStatusInput) (*types.Booking, error) {
	if err := requireUser(in.UserID); err != nil {
		return nil, err
	}
	if in.BookingID == uuid.Nil {
		return nil, apierr.Validation("invalid_booking_id", "booking id is required")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if !domvendors.ValidBookingStatus(status) {
		return nil, apierr.Validation("invalid_status", "unknown booking status")
	}

	dbc := dbctx.Context{Ctx: ctx}
	b, err := u.deps.Bookings.GetByID(dbc, in.BookingID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_booking_failed", err)
	}
	if b == nil {
		return nil, apierr.NotFound("booking_not_found", "booking not found")
	}
	v, err := u.loadVendor(ctx, b.VendorID)
	if err != nil {
		return nil, err
	}
	switch {
	case v.UserID == in.UserID:
	case b.UserID == in.UserID:
		if status != domvendors.BookingCancelled || in.Price != nil {
			return nil, apierr.Forbidden("requester_can_only_cancel", "only the vendor can change this booking")
		}
	default:
		return nil, apierr.Forbidden("not_booking_party", "you are not a party to this booking")
	}

	updated, err := u.deps.BookingAgg.UpdateStatus(ctx, domainagg.UpdateBookingStatusInput{
		BookingID:      b.ID,
		ExpectedStatus: strings.ToLower(strings.TrimSpace(in.ExpectedStatus)),
		Status:         status,
		Price:          in.Price,
	})
	if err != nil {
		return nil, apierr.FromAggregate(err, "update_booking_status_failed")
	}
	return &updated, nil
}
