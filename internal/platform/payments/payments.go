package payments

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/yungbote/vowbridge-backend/internal/pkg/errors"
)

// Provider creates payment intents and authenticates provider callbacks.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type IntentRequest struct {
	Amount         decimal.Decimal
	Currency       string
	ReceiptEmail   string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	Metadata     map[string]string
}

// WebhookEvent is a verified provider callback. Outcome is empty for event types
// the registry does not act on.
type WebhookEvent struct {
	ID               string
	Type             string
	Outcome          string
	PaymentReference string
	ContributionID   string
	Payload          []byte
}

const (
	MetadataContributionID = "contribution_id"
	MetadataRegistryItemID = "registry_item_id"
	MetadataEventID        = "event_id"
)

var (
	ErrInvalidSignature = errors.New("payments: invalid webhook signature")
	ErrInvalidAmount    = errors.New("payments: amount must be positive with at most two decimal places")
)

// ToMinorUnits converts a major-unit amount (dollars) to the provider's minor units (cents).
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return 0, ErrInvalidAmount
	}
	return amount.Shift(2).IntPart(), nil
}

// Disabled is used when no payment provider is configured. Every call fails with
// ErrProviderUnavailable so handlers answer 502 instead of crashing.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, pkgerrors.Unavailable("payments", "create intent")
}

func (Disabled) GetIntent(context.Context, string) (*Intent, error) {
	return nil, pkgerrors.Unavailable("payments", "get intent")
}

func (Disabled) ParseWebhook([]byte, string) (*WebhookEvent, error) {
	return nil, pkgerrors.Unavailable("payments", "parse webhook")
}

// Available reports whether p can actually take payments.
func Available(p Provider) bool {
	if p == nil {
		return false
	}
	_, off := p.(Disabled)
	return !off
}
