package registry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ContributionPending   = "pending"
	ContributionCompleted = "completed"
	ContributionFailed    = "failed"
	ContributionRefunded  = "refunded"
)

// Contribution is an append-only ledger row. Only Status and PaymentReference change.
type Contribution struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RegistryItemID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"registryItemId"`
	ContributorEmail string          `gorm:"column:contributor_email;not null" json:"-"`
	ContributorName  string          `gorm:"column:contributor_name" json:"contributorName,omitempty"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Message          string          `gorm:"column:message;type:text" json:"message,omitempty"`
	IsAnonymous      bool            `gorm:"column:is_anonymous;not null" json:"isAnonymous"`
	PaymentReference *string         `gorm:"column:payment_reference;index" json:"paymentReference,omitempty"`
	IdempotencyKey   *string         `gorm:"column:idempotency_key;uniqueIndex" json:"-"`
	Status           string          `gorm:"column:status;not null;index" json:"status"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Contribution) TableName() string { return "contributions" }

func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = ContributionPending
	}
	return nil
}

func (c *Contribution) AfterFind(tx *gorm.DB) error {
	c.Amount = c.Amount.Round(2)
	return nil
}

// PublicView strips contributor identity that must not leave the API.
func (c Contribution) PublicView() Contribution {
	out := c
	out.ContributorEmail = ""
	out.IdempotencyKey = nil
	if out.IsAnonymous {
		out.ContributorName = ""
	}
	return out
}

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRefunded  = "refunded"
)

// TargetStatus maps a payment outcome onto the contribution status it produces.
func TargetStatus(outcome string) (string, bool) {
	switch outcome {
	case OutcomeSucceeded:
		return ContributionCompleted, true
	case OutcomeFailed:
		return ContributionFailed, true
	case OutcomeRefunded:
		return ContributionRefunded, true
	}
	return "", false
}

// TotalDelta returns the sign applied to the item total for a status transition
// (+1, 0, -1) and whether the transition is allowed at all.
func TotalDelta(from, to string) (int, bool) {
	if from == to {
		return 0, true
	}
	switch {
	case from == ContributionPending && to == ContributionCompleted:
		return 1, true
	case from == ContributionPending && to == ContributionFailed:
		return 0, true
	case from == ContributionPending && to == ContributionRefunded:
		// refund delivered ahead of its success event; the total never moved
		return 0, true
	case from == ContributionFailed && to == ContributionCompleted:
		return 1, true
	case from == ContributionCompleted && to == ContributionRefunded:
		return -1, true
	}
	return 0, false
}

// PaymentEvent records each processed provider event exactly once.
type PaymentEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderEventID string         `gorm:"column:provider_event_id;not null;uniqueIndex" json:"providerEventId"`
	ContributionID  *uuid.UUID     `gorm:"type:uuid;column:contribution_id;index" json:"contributionId,omitempty"`
	Outcome         string         `gorm:"column:outcome;not null" json:"outcome"`
	Payload         datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"createdAt"`
}

func (PaymentEvent) TableName() string { return "payment_events" }

func (p *PaymentEvent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
