package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/domain/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type BookingDeps struct {
	Base BaseDeps

	Bookings repos.BookingRepo
}

type bookingAggregate struct {
	deps BookingDeps
}

func NewBookingAggregate(deps BookingDeps) domainagg.BookingAggregate {
	deps.Base = deps.Base.withDefaults()
	return &bookingAggregate{deps: deps}
}

func (a *bookingAggregate) Contract() domainagg.Contract {
	return domainagg.BookingContract
}

func (a *bookingAggregate) UpdateStatus(ctx context.Context, in domainagg.UpdateBookingStatusInput) (vendors.Booking, error) {
	op := domainagg.BookingContract.Op("UpdateStatus")
	var out vendors.Booking

	status := strings.TrimSpace(in.Status)
	if in.BookingID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "booking id is required", nil)
	}
	if !vendors.ValidBookingStatus(status) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid booking status %q", in.Status), nil)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "price must not be negative", nil)
	}
	if a.deps.Bookings == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "booking repo not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		b, err := a.deps.Bookings.GetByID(dbc, in.BookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return NotFoundError("booking not found")
		}
		expected := strings.TrimSpace(in.ExpectedStatus)
		if expected == "" {
			expected = b.Status
		}
		if err := RequireStatusAllowed(b.Status, expected); err != nil {
			return ConflictError(fmt.Sprintf("booking is %s, expected %s", b.Status, expected))
		}
		if vendors.IsTerminalBookingStatus(b.Status) && status != b.Status {
			return InvariantError(fmt.Sprintf("booking is %s and cannot change", b.Status))
		}

		updates := map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}
		if in.Price != nil {
			updates["price"] = *in.Price
		}
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, vendors.Booking{}.TableName(), b.ID, []string{expected}, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "booking status changed concurrently"); err != nil {
			return err
		}

		updated, err := a.deps.Bookings.GetByID(dbc, b.ID)
		if err != nil {
			return err
		}
		out = *updated
		return nil
	})
	if err != nil {
		return vendors.Booking{}, err
	}
	return out, nil
}
