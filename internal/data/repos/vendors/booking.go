package vendors

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type BookingRepo interface {
	Create(dbc dbctx.Context, b *types.Booking) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Booking, error)
	// ListByVendor returns bookings with the latest service date first.
	ListByVendor(dbc dbctx.Context, vendorID uuid.UUID) ([]*types.Booking, error)
}

type bookingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookingRepo(db *gorm.DB, baseLog *logger.Logger) BookingRepo {
	return &bookingRepo{db: db, log: baseLog.With("repo", "BookingRepo")}
}

func (r *bookingRepo) Create(dbc dbctx.Context, b *types.Booking) error {
	if b == nil {
		return nil
	}
	return dbc.DB(r.db).Create(b).Error
}

func (r *bookingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Booking, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Booking
	if err := dbc.DB(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *bookingRepo) ListByVendor(dbc dbctx.Context, vendorID uuid.UUID) ([]*types.Booking, error) {
	var out []*types.Booking
	err := dbc.DB(r.db).
		Where("vendor_id = ?", vendorID).
		Order("service_date DESC").
		Find(&out).Error
	return out, err
}
