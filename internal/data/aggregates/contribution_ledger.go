package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"gorm.io/datatypes"
)

type ContributionLedgerDeps struct {
	Base BaseDeps

	Items         repos.RegistryItemRepo
	Contributions repos.ContributionRepo
	PaymentEvents repos.PaymentEventRepo
}

type contributionLedger struct {
	deps ContributionLedgerDeps
}

func NewContributionLedger(deps ContributionLedgerDeps) domainagg.ContributionLedger {
	deps.Base = deps.Base.withDefaults()
	return &contributionLedger{deps: deps}
}

func (a *contributionLedger) Contract() domainagg.Contract {
	return domainagg.ContributionLedgerContract
}

func (a *contributionLedger) configured() bool {
	return a.deps.Items != nil && a.deps.Contributions != nil && a.deps.PaymentEvents != nil
}

func (a *contributionLedger) RecordContribution(ctx context.Context, in domainagg.RecordContributionInput) (domainagg.RecordContributionResult, error) {
	op := domainagg.ContributionLedgerContract.Op("RecordContribution")
	var out domainagg.RecordContributionResult

	if in.RegistryItemID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "registry item id is required", nil)
	}
	if !in.Amount.IsPositive() {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "amount must be greater than zero", nil)
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "amount must have at most two decimal places", nil)
	}
	if in.Amount.GreaterThan(registry.MaxAmount) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "amount exceeds "+registry.MaxAmount.StringFixed(2), nil)
	}
	email := strings.TrimSpace(in.ContributorEmail)
	if email == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "contributor email is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "contributor email is invalid", err)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "contribution ledger repos not configured", nil)
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if key != "" {
			existing, err := a.deps.Contributions.GetByIdempotencyKey(dbc, key)
			if err != nil {
				return err
			}
			if existing != nil {
				item, err := a.deps.Items.GetByID(dbc, existing.RegistryItemID)
				if err != nil {
					return err
				}
				res, err := replayResult(existing, item, in)
				if err != nil {
					return err
				}
				out = res
				return nil
			}
		}

		item, err := a.deps.Items.GetByID(dbc, in.RegistryItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return NotFoundError("registry item not found")
		}

		row := &registry.Contribution{
			ID:               uuid.New(),
			RegistryItemID:   item.ID,
			ContributorEmail: email,
			ContributorName:  strings.TrimSpace(in.ContributorName),
			Amount:           in.Amount,
			Message:          strings.TrimSpace(in.Message),
			IsAnonymous:      in.IsAnonymous,
			Status:           registry.ContributionPending,
		}
		if key != "" {
			row.IdempotencyKey = &key
		}
		if err := a.deps.Contributions.Create(dbc, row); err != nil {
			return err
		}
		out = domainagg.RecordContributionResult{Contribution: *row, Item: *item}
		return nil
	})
	if err == nil {
		return out, nil
	}

	// A concurrent request with the same key won the unique index; hand back its row.
	if key != "" && domainagg.IsCode(err, domainagg.CodeConflict) {
		dbc := dbctx.Context{Ctx: ctx}
		existing, lookupErr := a.deps.Contributions.GetByIdempotencyKey(dbc, key)
		if lookupErr == nil && existing != nil {
			item, itemErr := a.deps.Items.GetByID(dbc, existing.RegistryItemID)
			if itemErr == nil {
				if res, replayErr := replayResult(existing, item, in); replayErr == nil {
					return res, nil
				}
			}
		}
	}
	return domainagg.RecordContributionResult{}, err
}

func replayResult(existing *registry.Contribution, item *registry.RegistryItem, in domainagg.RecordContributionInput) (domainagg.RecordContributionResult, error) {
	if existing.RegistryItemID != in.RegistryItemID || !existing.Amount.Equal(in.Amount) {
		return domainagg.RecordContributionResult{}, ConflictError("idempotency key was already used for a different contribution")
	}
	if item == nil {
		return domainagg.RecordContributionResult{}, NotFoundError("registry item not found")
	}
	return domainagg.RecordContributionResult{Contribution: *existing, Item: *item, Replayed: true}, nil
}

func (a *contributionLedger) AttachPaymentReference(ctx context.Context, contributionID uuid.UUID, paymentReference string) error {
	op := domainagg.ContributionLedgerContract.Op("AttachPaymentReference")
	if contributionID == uuid.Nil || strings.TrimSpace(paymentReference) == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "contribution id and payment reference are required", nil)
	}
	if !a.configured() {
		return domainagg.NewError(domainagg.CodeInternal, op, "contribution ledger repos not configured", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		c, err := a.deps.Contributions.LockByID(dbc, contributionID)
		if err != nil {
			return err
		}
		if c == nil {
			return NotFoundError("contribution not found")
		}
		if c.PaymentReference != nil && *c.PaymentReference != "" && *c.PaymentReference != paymentReference {
			return ConflictError("contribution already has a different payment reference")
		}
		return a.deps.Contributions.SetPaymentReference(dbc, contributionID, paymentReference)
	})
}

func (a *contributionLedger) ApplyPaymentOutcome(ctx context.Context, in domainagg.ApplyPaymentOutcomeInput) (domainagg.ApplyPaymentOutcomeResult, error) {
	op := domainagg.ContributionLedgerContract.Op("ApplyPaymentOutcome")
	var out domainagg.ApplyPaymentOutcomeResult

	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "provider event id is required", nil)
	}
	target, ok := registry.TargetStatus(strings.TrimSpace(in.Outcome))
	if !ok {
		return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unknown payment outcome %q", in.Outcome), nil)
	}
	ref := strings.TrimSpace(in.PaymentReference)
	if in.ContributionID == uuid.Nil && ref == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "contribution id or payment reference is required", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "contribution ledger repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		seen, err := a.deps.PaymentEvents.Exists(dbc, eventID)
		if err != nil {
			return err
		}
		if seen {
			res, err := a.snapshot(dbc, in.ContributionID, ref)
			if err != nil {
				return err
			}
			res.Replayed = true
			out = res
			return nil
		}

		c, err := a.lockContribution(dbc, in.ContributionID, ref)
		if err != nil {
			return err
		}
		prev := c.Status
		delta, allowed := registry.TotalDelta(prev, target)
		if !allowed {
			return InvariantError(fmt.Sprintf("contribution cannot move from %s to %s", prev, target))
		}

		if prev != target {
			moved, err := a.deps.Contributions.TransitionStatus(dbc, c.ID, prev, target, ref)
			if err != nil {
				return err
			}
			if !moved {
				// Without row locks (SQLite) another writer can land between read and update;
				// rerun so the transition is decided against the status that won.
				return RetryableError("contribution status changed concurrently")
			}
		} else if ref != "" && (c.PaymentReference == nil || *c.PaymentReference == "") {
			if err := a.deps.Contributions.SetPaymentReference(dbc, c.ID, ref); err != nil {
				return err
			}
		}

		if delta != 0 {
			if err := a.deps.Items.AddToCurrentAmount(dbc, c.RegistryItemID, c.Amount.Mul(decimal.NewFromInt(int64(delta)))); err != nil {
				return err
			}
		}

		evt := &registry.PaymentEvent{
			ProviderEventID: eventID,
			ContributionID:  &c.ID,
			Outcome:         strings.TrimSpace(in.Outcome),
		}
		if len(in.Payload) > 0 && json.Valid(in.Payload) {
			evt.Payload = datatypes.JSON(in.Payload)
		}
		if err := a.deps.PaymentEvents.Create(dbc, evt); err != nil {
			return err
		}

		res, err := a.snapshot(dbc, c.ID, "")
		if err != nil {
			return err
		}
		res.PreviousStatus = prev
		res.TotalChanged = delta != 0
		out = res
		return nil
	})
	if err == nil {
		return out, nil
	}

	// The same provider event raced us to the payment_events unique index.
	if domainagg.IsCode(err, domainagg.CodeConflict) {
		dbc := dbctx.Context{Ctx: ctx}
		if seen, existsErr := a.deps.PaymentEvents.Exists(dbc, eventID); existsErr == nil && seen {
			if res, snapErr := a.snapshot(dbc, in.ContributionID, ref); snapErr == nil {
				res.Replayed = true
				return res, nil
			}
		}
	}
	return domainagg.ApplyPaymentOutcomeResult{}, err
}

func (a *contributionLedger) lockContribution(dbc dbctx.Context, id uuid.UUID, ref string) (*registry.Contribution, error) {
	var (
		c   *registry.Contribution
		err error
	)
	if id != uuid.Nil {
		c, err = a.deps.Contributions.LockByID(dbc, id)
	} else {
		c, err = a.deps.Contributions.LockByPaymentReference(dbc, ref)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NotFoundError("contribution not found")
	}
	return c, nil
}

func (a *contributionLedger) snapshot(dbc dbctx.Context, id uuid.UUID, ref string) (domainagg.ApplyPaymentOutcomeResult, error) {
	var out domainagg.ApplyPaymentOutcomeResult
	c, err := a.lockContribution(dbc, id, ref)
	if err != nil {
		return out, err
	}
	item, err := a.deps.Items.GetByID(dbc, c.RegistryItemID)
	if err != nil {
		return out, err
	}
	if item == nil {
		return out, NotFoundError("registry item not found")
	}
	out.Contribution = *c
	out.Item = *item
	out.PreviousStatus = c.Status
	return out, nil
}
