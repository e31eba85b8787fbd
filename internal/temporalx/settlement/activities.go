package settlement

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type Activities struct {
	Log    *logger.Logger
	Ledger domainagg.ContributionLedger
}

// ExpireContribution fails a contribution still pending at the end of its payment window.
// Contributions that already moved on are left untouched.
func (a *Activities) ExpireContribution(ctx context.Context, contributionID string) (ExpireResult, error) {
	if a == nil || a.Ledger == nil {
		return ExpireResult{}, temporal.NewNonRetryableApplicationError("settlement activity not configured", "config", nil)
	}
	id, err := uuid.Parse(strings.TrimSpace(contributionID))
	if err != nil || id == uuid.Nil {
		return ExpireResult{}, temporal.NewNonRetryableApplicationError("invalid contribution_id", "validation", err)
	}

	res, err := a.Ledger.ApplyPaymentOutcome(ctx, domainagg.ApplyPaymentOutcomeInput{
		ProviderEventID: ExpireEventID(id.String()),
		Outcome:         registry.OutcomeFailed,
		ContributionID:  id,
	})
	switch domainagg.CodeOf(err) {
	case "":
	case domainagg.CodeInvariantViolation:
		// completed or refunded contributions do not expire
		return ExpireResult{Status: "unchanged"}, nil
	case domainagg.CodeNotFound, domainagg.CodeValidation:
		return ExpireResult{}, temporal.NewNonRetryableApplicationError(err.Error(), string(domainagg.CodeOf(err)), err)
	default:
		return ExpireResult{}, err
	}

	expired := !res.Replayed && res.PreviousStatus == registry.ContributionPending && res.Contribution.Status == registry.ContributionFailed
	if expired && a.Log != nil {
		a.Log.Info("contribution expired", "contribution_id", id)
	}
	return ExpireResult{Status: res.Contribution.Status, Expired: expired}, nil
}
