package events

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Events   repos.EventRepo
	Guests   repos.GuestRepo
	Timeline repos.TimelineItemRepo

	// Mail is optional; invitations fail with 503 when it is nil.
	Mail sendgrid.Client
	// PublicURL is the web app origin used to build RSVP links.
	PublicURL string
	// InviteConcurrency bounds parallel invitation sends.
	InviteConcurrency int
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("module", "events")
	deps.PublicURL = strings.TrimRight(strings.TrimSpace(deps.PublicURL), "/")
	if deps.InviteConcurrency <= 0 {
		deps.InviteConcurrency = 4
	}
	return Usecases{deps: deps}
}

// OwnedEvent loads the event and checks that userID owns it.
func (u Usecases) OwnedEvent(ctx context.Context, userID, eventID uuid.UUID) (*types.Event, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	ev, err := u.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.UserID != userID {
		return nil, apierr.Forbidden("not_event_owner", "only the event owner can do this")
	}
	return ev, nil
}

func (u Usecases) loadEvent(ctx context.Context, eventID uuid.UUID) (*types.Event, error) {
	if eventID == uuid.Nil {
		return nil, apierr.Validation("invalid_event_id", "event id is required")
	}
	if u.deps.Events == nil {
		return nil, apierr.New(http.StatusInternalServerError, "events_not_configured", nil)
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
