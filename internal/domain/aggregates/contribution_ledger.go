package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
)

var ContributionLedgerContract = Contract{
	Name:      "Registry.ContributionLedger",
	Tables:    []string{"registry_items", "contributions", "payment_events"},
	LockOrder: []string{"contributions", "registry_items"},
	Notes:     "registry_items.current_amount equals the sum of completed contributions.",
}

// ContributionLedger owns the contribution ledger and registry item totals.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInvariantViolation, CodeRetryable, CodeInternal.
type ContributionLedger interface {
	Aggregate

	// RecordContribution inserts a pending contribution. A repeated idempotency key returns
	// the existing row without writing.
	RecordContribution(ctx context.Context, in RecordContributionInput) (RecordContributionResult, error)

	// AttachPaymentReference stores the provider payment id on a contribution once it is known.
	AttachPaymentReference(ctx context.Context, contributionID uuid.UUID, paymentReference string) error

	// ApplyPaymentOutcome applies a provider outcome exactly once per provider event id.
	ApplyPaymentOutcome(ctx context.Context, in ApplyPaymentOutcomeInput) (ApplyPaymentOutcomeResult, error)
}

type RecordContributionInput struct {
	RegistryItemID   uuid.UUID
	Amount           decimal.Decimal
	ContributorEmail string
	ContributorName  string
	Message          string
	IsAnonymous      bool
	IdempotencyKey   string
}

type RecordContributionResult struct {
	Contribution registry.Contribution
	Item         registry.RegistryItem
	Replayed     bool
}

type ApplyPaymentOutcomeInput struct {
	ProviderEventID  string
	Outcome          string
	PaymentReference string
	// ContributionID comes from provider metadata when present; otherwise the
	// contribution is located by PaymentReference.
	ContributionID uuid.UUID
	Payload        []byte
}

type ApplyPaymentOutcomeResult struct {
	Contribution   registry.Contribution
	Item           registry.RegistryItem
	PreviousStatus string
	// TotalChanged is true when the item's current amount moved in this call.
	TotalChanged bool
	Replayed     bool
}
