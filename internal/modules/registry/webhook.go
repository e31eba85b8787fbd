package registry

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	domregistry "github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/payments"
)

type WebhookResult struct {
	EventID  string `json:"eventId"`
	Outcome  string `json:"outcome,omitempty"`
	Applied  bool   `json:"applied"`
	Replayed bool   `json:"replayed"`
	Ignored  bool   `json:"ignored"`
}

// HandleWebhook verifies a provider callback and applies its outcome to the ledger.
// Events the ledger cannot apply (unknown contribution, illegal transition) are acknowledged
// so the provider stops redelivering them; transient failures return 500 so it retries.
func (u Usecases) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	evt, err := u.deps.Payments.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			return nil, apierr.Validation("invalid_signature", "webhook signature verification failed")
		}
		if !payments.Available(u.deps.Payments) {
			return nil, apierr.Downstream("payments_unavailable", err)
		}
		return nil, apierr.Validation("invalid_webhook", err.Error())
	}

	out := &WebhookResult{EventID: evt.ID, Outcome: evt.Outcome}
	if evt.Outcome == "" {
		out.Ignored = true
		return out, nil
	}

	var contributionID uuid.UUID
	if evt.ContributionID != "" {
		if id, perr := uuid.Parse(evt.ContributionID); perr == nil {
			contributionID = id
		}
	}

	res, err := u.deps.Ledger.ApplyPaymentOutcome(ctx, domainagg.ApplyPaymentOutcomeInput{
		ProviderEventID:  evt.ID,
		Outcome:          evt.Outcome,
		PaymentReference: evt.PaymentReference,
		ContributionID:   contributionID,
		Payload:          evt.Payload,
	})
	if err != nil {
		if !domainagg.Permanent(err) {
			return nil, apierr.New(http.StatusInternalServerError, "apply_payment_outcome_failed", err)
		}
		u.deps.Metrics.IncPaymentOutcome(evt.Outcome, "rejected")
		u.deps.Log.Warn("payment outcome not applied", "provider_event_id", evt.ID, "outcome", evt.Outcome, "error", err)
		out.Ignored = true
		return out, nil
	}

	switch {
	case res.Replayed:
		u.deps.Metrics.IncPaymentOutcome(evt.Outcome, "replayed")
		out.Replayed = true
	case res.PreviousStatus == res.Contribution.Status:
		u.deps.Metrics.IncPaymentOutcome(evt.Outcome, "noop")
	default:
		u.deps.Metrics.IncPaymentOutcome(evt.Outcome, "applied")
		out.Applied = true
		if res.Contribution.Status == domregistry.ContributionCompleted {
			u.sendReceipt(ctx, res.Item, res.Contribution)
		}
	}

	if res.TotalChanged {
		u.publishProgress(ctx, res.Item)
		u.publishContribution(ctx, res.Item, res.Contribution)
	}
	// The payment window closes once the contribution leaves pending, whichever event did it.
	if !res.Replayed && res.PreviousStatus == domregistry.ContributionPending && res.Contribution.Status != domregistry.ContributionPending {
		if err := u.deps.Scheduler.Settled(ctx, res.Contribution.ID); err != nil {
			u.deps.Log.Warn("signal settlement failed", "contribution_id", res.Contribution.ID, "error", err)
		}
	}
	return out, nil
}
