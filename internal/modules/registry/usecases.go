package registry

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domainagg "github.com/yungbote/vowbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/observability"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/platform/payments"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
	"github.com/yungbote/vowbridge-backend/internal/temporalx/settlement"
)

// Publisher delivers realtime messages to every API instance.
type Publisher interface {
	Publish(ctx context.Context, msg realtime.Message) error
}

type UsecasesDeps struct {
	Log *logger.Logger

	Events        repos.EventRepo
	Products      repos.ProductRepo
	Items         repos.RegistryItemRepo
	Contributions repos.ContributionRepo
	Ledger        domainagg.ContributionLedger

	Payments  payments.Provider
	Publisher Publisher
	Scheduler settlement.Scheduler
	Metrics   *observability.Metrics
	// Mail sends contribution receipts; receipts are skipped when nil.
	Mail sendgrid.Client

	// PublicURL is the web app origin used in share links.
	PublicURL string
	Currency  string
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "registry")
	if deps.Payments == nil {
		deps.Payments = payments.Disabled{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = settlement.Nop{}
	}
	deps.PublicURL = strings.TrimRight(strings.TrimSpace(deps.PublicURL), "/")
	if strings.TrimSpace(deps.Currency) == "" {
		deps.Currency = "usd"
	}
	return Usecases{deps: deps}
}

// RegistryURL is the public page guests open to contribute.
func (u Usecases) RegistryURL(eventID uuid.UUID) string {
	return u.deps.PublicURL + "/registry/" + eventID.String()
}

func (u Usecases) loadEvent(ctx context.Context, eventID uuid.UUID) (*types.Event, error) {
	if eventID == uuid.Nil {
		return nil, apierr.Validation("invalid_event_id", "event id is required")
	}
	ev, err := u.deps.Events.GetByID(dbctx.Context{Ctx: ctx}, eventID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_event_failed", err)
	}
	if ev == nil {
		return nil, apierr.NotFound("event_not_found", "event not found")
	}
	return ev, nil
}

func (u Usecases) loadItem(ctx context.Context, itemID uuid.UUID) (*types.RegistryItem, error) {
	if itemID == uuid.Nil {
		return nil, apierr.Validation("invalid_registry_item_id", "registry item id is required")
	}
	item, err := u.deps.Items.GetByID(dbctx.Context{Ctx: ctx}, itemID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_registry_item_failed", err)
	}
	if item == nil {
		return nil, apierr.NotFound("registry_item_not_found", "registry item not found")
	}
	return item, nil
}

func (u Usecases) requireOwner(ctx context.Context, userID, eventID uuid.UUID) (*types.Event, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	ev, err := u.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.UserID != userID {
		return nil, apierr.Forbidden("not_event_owner", "only the event owner can manage its registry")
	}
	return ev, nil
}
