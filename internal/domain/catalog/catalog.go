package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description string     `gorm:"column:description;type:text" json:"description,omitempty"`
	ImageURL    string     `gorm:"column:image_url" json:"imageUrl,omitempty"`
	ParentID    *uuid.UUID `gorm:"type:uuid;column:parent_id;index" json:"parentId,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description   string          `gorm:"column:description;type:text" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	ImageURL      string          `gorm:"column:image_url" json:"imageUrl,omitempty"`
	Brand         string          `gorm:"column:brand" json:"brand,omitempty"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;column:category_id;index" json:"categoryId,omitempty"`
	IsAvailable   bool            `gorm:"column:is_available;not null" json:"isAvailable"`
	StockQuantity int             `gorm:"column:stock_quantity;not null" json:"stockQuantity"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
