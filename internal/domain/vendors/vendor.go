package vendors

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var Categories = []string{
	"photographer", "venue", "caterer", "planner", "dj",
	"florist", "baker", "musician", "videographer", "decorator",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Vendor is a marketplace listing. Rating and ReviewCount are maintained by the
// review aggregate and always reflect every review row for the vendor.
type Vendor struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	BusinessName  string           `gorm:"column:business_name;not null" json:"businessName"`
	Description   string           `gorm:"column:description;type:text" json:"description,omitempty"`
	Category      string           `gorm:"column:category;not null;index" json:"category"`
	Location      string           `gorm:"column:location" json:"location,omitempty"`
	Website       string           `gorm:"column:website" json:"website,omitempty"`
	Phone         string           `gorm:"column:phone" json:"phone,omitempty"`
	StartingPrice *decimal.Decimal `gorm:"column:starting_price;type:numeric(12,2)" json:"startingPrice,omitempty"`
	IsVerified    bool             `gorm:"column:is_verified;not null" json:"isVerified"`
	IsFeatured    bool             `gorm:"column:is_featured;not null" json:"isFeatured"`
	Rating        decimal.Decimal  `gorm:"column:rating;type:numeric(3,2);not null" json:"rating"`
	ReviewCount   int              `gorm:"column:review_count;not null" json:"reviewCount"`
	CreatedAt     time.Time        `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time        `gorm:"not null" json:"updatedAt"`
}

func (Vendor) TableName() string { return "vendors" }

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

type VendorReview struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"vendorId"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	EventID    *uuid.UUID `gorm:"type:uuid;column:event_id" json:"eventId,omitempty"`
	Rating     int        `gorm:"column:rating;not null" json:"rating"`
	Title      string     `gorm:"column:title" json:"title,omitempty"`
	Comment    string     `gorm:"column:comment;type:text" json:"comment,omitempty"`
	IsVerified bool       `gorm:"column:is_verified;not null" json:"isVerified"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updatedAt"`
}

func (VendorReview) TableName() string { return "vendor_reviews" }

func (r *VendorReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

const (
	MinRating = 1
	MaxRating = 5
)

type PortfolioItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"vendorId"`
	ImageURL     string    `gorm:"column:image_url;not null" json:"imageUrl"`
	StorageKey   string    `gorm:"column:storage_key" json:"-"`
	Caption      string    `gorm:"column:caption;type:text" json:"caption,omitempty"`
	DisplayOrder int       `gorm:"column:display_order;not null" json:"displayOrder"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

func (PortfolioItem) TableName() string { return "vendor_portfolio" }

func (p *PortfolioItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
