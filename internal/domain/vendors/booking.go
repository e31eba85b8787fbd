package vendors

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BookingInquiry   = "inquiry"
	BookingQuoted    = "quoted"
	BookingBooked    = "booked"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"vendorId"`
	EventID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"eventId"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	ServiceDate time.Time        `gorm:"column:service_date;not null;index" json:"serviceDate"`
	Duration    *int             `gorm:"column:duration" json:"duration,omitempty"` // hours
	Price       *decimal.Decimal `gorm:"column:price;type:numeric(12,2)" json:"price,omitempty"`
	Status      string           `gorm:"column:status;not null" json:"status"`
	Notes       string           `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt   time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"not null" json:"updatedAt"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BookingInquiry
	}
	return nil
}

func ValidBookingStatus(s string) bool {
	switch s {
	case BookingInquiry, BookingQuoted, BookingBooked, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// IsTerminalBookingStatus reports statuses a booking can never leave.
func IsTerminalBookingStatus(s string) bool {
	return s == BookingCompleted || s == BookingCancelled
}
