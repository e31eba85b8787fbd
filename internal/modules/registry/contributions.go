package registry

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	domregistry "github.com/yungbote/vowbridge-backend/internal/domain/registry"
	pkgerrors "github.com/yungbote/vowbridge-backend/internal/pkg/errors"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/payments"
)

type ContributeInput struct {
	ItemID         uuid.UUID
	Amount         decimal.Decimal
	Email          string
	Name           string
	Message        string
	IsAnonymous    bool
	IdempotencyKey string
}

type ContributeResult struct {
	Contribution types.Contribution `json:"contribution"`
	ClientSecret string             `json:"clientSecret,omitempty"`
	Replayed     bool               `json:"replayed"`
}

// Contribute records a pending contribution and opens a payment intent for it. Replays of
// the same idempotency key return the original contribution and, while it is still pending,
// the same client secret.
func (u Usecases) Contribute(ctx context.Context, in ContributeInput) (*ContributeResult, error) {
	if !payments.Available(u.deps.Payments) {
		return nil, apierr.Downstream("payments_unavailable", pkgerrors.Unavailable("payments", "contribute"))
	}
	item, err := u.loadItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsPublic {
		return nil, apierr.NotFound("registry_item_not_found", "registry item not found")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	rec, err := u.deps.Ledger.RecordContribution(ctx, domainagg.RecordContributionInput{
		RegistryItemID:   item.ID,
		Amount:           in.Amount,
		ContributorEmail: strings.ToLower(strings.TrimSpace(in.Email)),
		ContributorName:  strings.TrimSpace(in.Name),
		Message:          strings.TrimSpace(in.Message),
		IsAnonymous:      in.IsAnonymous,
		IdempotencyKey:   key,
	})
	if err != nil {
		return nil, apierr.FromAggregate(err, "record_contribution_failed")
	}
	if rec.Replayed {
		u.deps.Metrics.IncContributionRecorded("replayed")
	} else {
		u.deps.Metrics.IncContributionRecorded("created")
	}

	c := rec.Contribution
	out := &ContributeResult{Contribution: c.PublicView(), Replayed: rec.Replayed}
	if c.Status != domregistry.ContributionPending {
		return out, nil
	}

	if c.PaymentReference != nil && *c.PaymentReference != "" {
		intent, err := u.deps.Payments.GetIntent(ctx, *c.PaymentReference)
		if err != nil {
			return nil, apierr.Downstream("payment_provider_error", err)
		}
		out.ClientSecret = intent.ClientSecret
		return out, nil
	}

	intent, err := u.deps.Payments.CreateIntent(ctx, payments.IntentRequest{
		Amount:         c.Amount,
		Currency:       u.deps.Currency,
		ReceiptEmail:   c.ContributorEmail,
		Description:    "Registry contribution",
		IdempotencyKey: "contribution:" + c.ID.String(),
		Metadata: map[string]string{
			payments.MetadataContributionID: c.ID.String(),
			payments.MetadataRegistryItemID: item.ID.String(),
			payments.MetadataEventID:        item.EventID.String(),
		},
	})
	if err != nil {
		u.deps.Log.Warn("create payment intent failed", "contribution_id", c.ID, "error", err)
		return nil, apierr.Downstream("payment_provider_error", err)
	}
	if err := u.deps.Ledger.AttachPaymentReference(ctx, c.ID, intent.ID); err != nil {
		return nil, apierr.FromAggregate(err, "attach_payment_reference_failed")
	}
	ref := intent.ID
	out.Contribution.PaymentReference = &ref
	out.ClientSecret = intent.ClientSecret

	if err := u.deps.Scheduler.Start(ctx, c.ID); err != nil {
		u.deps.Log.Warn("start settlement workflow failed", "contribution_id", c.ID, "error", err)
	}
	return out, nil
}

// ListContributions returns an item's contributions newest first, stripped of contributor
// email and of names the contributor asked to hide.
func (u Usecases) ListContributions(ctx context.Context, callerID, itemID uuid.UUID) ([]types.Contribution, error) {
	if _, err := u.GetItem(ctx, callerID, itemID); err != nil {
		return nil, err
	}
	rows, err := u.deps.Contributions.ListByItem(dbctx.Context{Ctx: ctx}, itemID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_contributions_failed", err)
	}
	out := make([]types.Contribution, 0, len(rows))
	for _, c := range rows {
		out = append(out, c.PublicView())
	}
	return out, nil
}

type PaymentIntentInput struct {
	Amount         decimal.Decimal
	Email          string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

type PaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

// CreatePaymentIntent opens an intent that is not tied to a registry contribution.
func (u Usecases) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*PaymentIntentResult, error) {
	if _, err := payments.ToMinorUnits(in.Amount); err != nil {
		return nil, apierr.Validation("invalid_amount", "amount must be greater than zero with at most two decimals")
	}
	if !payments.Available(u.deps.Payments) {
		return nil, apierr.Downstream("payments_unavailable", pkgerrors.Unavailable("payments", "contribute"))
	}
	meta := make(map[string]string, len(in.Metadata))
	for k, v := range in.Metadata {
		// contribution metadata is reserved for intents created by Contribute
		if k == payments.MetadataContributionID {
			continue
		}
		meta[k] = v
	}
	intent, err := u.deps.Payments.CreateIntent(ctx, payments.IntentRequest{
		Amount:         in.Amount,
		Currency:       u.deps.Currency,
		ReceiptEmail:   strings.TrimSpace(in.Email),
		Description:    strings.TrimSpace(in.Description),
		IdempotencyKey: strings.TrimSpace(in.IdempotencyKey),
		Metadata:       meta,
	})
	if err != nil {
		return nil, apierr.Downstream("payment_provider_error", err)
	}
	return &PaymentIntentResult{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: intent.Status}, nil
}
