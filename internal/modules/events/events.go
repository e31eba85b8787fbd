package events

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domevents "github.com/yungbote/vowbridge-backend/internal/domain/events"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type CreateEventInput struct {
	UserID      uuid.UUID
	Title       string
	Description string
	EventDate   time.Time
	Venue       string
	Address     string
	MaxGuests   *int
	Status      string
}

func (u Usecases) CreateEvent(ctx context.Context, in CreateEventInput) (*types.Event, error) {
	if in.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Validation("missing_title", "title is required")
	}
	if in.EventDate.IsZero() {
		return nil, apierr.Validation("missing_event_date", "eventDate is required")
	}
	if in.MaxGuests != nil && *in.MaxGuests < 0 {
		return nil, apierr.Validation("invalid_max_guests", "maxGuests cannot be negative")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = domevents.StatusPlanning
	}
	if !domevents.ValidStatus(status) {
		return nil, apierr.Validation("invalid_status", "status must be planning, active, completed or cancelled")
	}

	ev := &types.Event{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		EventDate:   in.EventDate.UTC(),
		Venue:       strings.TrimSpace(in.Venue),
		Address:     strings.TrimSpace(in.Address),
		MaxGuests:   in.MaxGuests,
		Status:      status,
	}
	if err := u.deps.Events.Create(dbctx.Context{Ctx: ctx}, ev); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_event_failed", err)
	}
	u.deps.Log.Info("event created", "event_id", ev.ID, "user_id", in.UserID)
	return ev, nil
}

func (u Usecases) ListEvents(ctx context.Context, userID uuid.UUID) ([]*types.Event, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	out, err := u.deps.Events.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_events_failed", err)
	}
	return out, nil
}

func (u Usecases) GetEvent(ctx context.Context, eventID uuid.UUID) (*types.Event, error) {
	return u.loadEvent(ctx, eventID)
}
