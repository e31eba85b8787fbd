package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/vowbridge-backend/internal/domain/catalog"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// RegistryItem is a gift on an event's registry funded by contributions.
// CurrentAmount is the sum of completed contributions and only moves inside
// contribution-ledger transactions.
type RegistryItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EventID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"eventId"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	TargetAmount  decimal.Decimal `gorm:"column:target_amount;type:numeric(12,2);not null" json:"targetAmount"`
	CurrentAmount decimal.Decimal `gorm:"column:current_amount;type:numeric(12,2);not null" json:"currentAmount"`
	Priority      string          `gorm:"column:priority;not null" json:"priority"`
	IsPublic      bool            `gorm:"column:is_public;not null" json:"isPublic"`
	IsPurchased   bool            `gorm:"column:is_purchased;not null" json:"isPurchased"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updatedAt"`
}

func (RegistryItem) TableName() string { return "registry_items" }

func (r *RegistryItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	return nil
}

// SQLite keeps numeric columns as REAL, so sums read back with float noise.
func (r *RegistryItem) AfterFind(tx *gorm.DB) error {
	r.TargetAmount = r.TargetAmount.Round(2)
	r.CurrentAmount = r.CurrentAmount.Round(2)
	return nil
}

// MaxAmount is the largest value a numeric(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidAmount reports whether d is a positive whole-cent amount that fits a money column.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThanOrEqual(MaxAmount)
}

// IsCompleted is derived, never stored.
func (r RegistryItem) IsCompleted() bool {
	return r.CurrentAmount.GreaterThanOrEqual(r.TargetAmount)
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// PriorityOrdinal ranks high before medium before low.
func PriorityOrdinal(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// RegistryItemView is the public listing shape of an item.
type RegistryItemView struct {
	RegistryItem
	Product     *catalog.Product `json:"product,omitempty"`
	IsCompleted bool             `json:"isCompleted"`
}

func NewRegistryItemView(item RegistryItem, product *catalog.Product) RegistryItemView {
	return RegistryItemView{RegistryItem: item, Product: product, IsCompleted: item.IsCompleted()}
}

// RegistryProgress is published after every committed change to an item's total.
type RegistryProgress struct {
	EventID       uuid.UUID       `json:"eventId"`
	ItemID        uuid.UUID       `json:"itemId"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	IsCompleted   bool            `json:"isCompleted"`
}
