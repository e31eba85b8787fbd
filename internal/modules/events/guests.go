package events

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domevents "github.com/yungbote/vowbridge-backend/internal/domain/events"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

type AddGuestInput struct {
	OwnerID             uuid.UUID
	EventID             uuid.UUID
	GuestUserID         *uuid.UUID
	Email               string
	FirstName           string
	LastName            string
	PlusOneAllowed      bool
	DietaryRestrictions string
}

func (u Usecases) AddGuest(ctx context.Context, in AddGuestInput) (*types.Guest, error) {
	ev, err := u.OwnedEvent(ctx, in.OwnerID, in.EventID)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, apierr.Validation("missing_email", "guest email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apierr.Validation("invalid_email", "guest email is invalid")
	}

	dbc := dbctx.Context{Ctx: ctx}
	if ev.MaxGuests != nil {
		existing, err := u.deps.Guests.ListByEvent(dbc, ev.ID)
		if err != nil {
			return nil, apierr.New(http.StatusInternalServerError, "list_guests_failed", err)
		}
		if len(existing) >= *ev.MaxGuests {
			return nil, apierr.New(http.StatusConflict, "guest_limit_reached", nil)
		}
	}

	g := &types.Guest{
		ID:                  uuid.New(),
		EventID:             ev.ID,
		UserID:              in.GuestUserID,
		Email:               email,
		FirstName:           strings.TrimSpace(in.FirstName),
		LastName:            strings.TrimSpace(in.LastName),
		RSVPStatus:          domevents.RSVPPending,
		PlusOneAllowed:      in.PlusOneAllowed,
		DietaryRestrictions: strings.TrimSpace(in.DietaryRestrictions),
	}
	if err := u.deps.Guests.Create(dbc, g); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "add_guest_failed", err)
	}
	return g, nil
}

func (u Usecases) ListGuests(ctx context.Context, ownerID, eventID uuid.UUID) ([]*types.Guest, error) {
	if _, err := u.OwnedEvent(ctx, ownerID, eventID); err != nil {
		return nil, err
	}
	out, err := u.deps.Guests.ListByEvent(dbctx.Context{Ctx: ctx}, eventID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_guests_failed", err)
	}
	return out, nil
}

type UpdateRSVPInput struct {
	GuestID             uuid.UUID
	Status              string
	PlusOneRSVP         *string
	DietaryRestrictions *string
}

// UpdateRSVP is reachable without authentication: the guest id in the invitation link is the credential.
func (u Usecases) UpdateRSVP(ctx context.Context, in UpdateRSVPInput) (*types.Guest, error) {
	if in.GuestID == uuid.Nil {
		return nil, apierr.Validation("invalid_guest_id", "guest id is required")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != domevents.RSVPConfirmed && status != domevents.RSVPDeclined {
		return nil, apierr.Validation("invalid_rsvp_status", "Invalid RSVP status")
	}

	dbc := dbctx.Context{Ctx: ctx}
	g, err := u.deps.Guests.GetByID(dbc, in.GuestID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_guest_failed", err)
	}
	if g == nil {
		return nil, apierr.NotFound("guest_not_found", "guest not found")
	}

	updates := map[string]interface{}{"rsvp_status": status}
	if in.PlusOneRSVP != nil {
		plusOne := strings.ToLower(strings.TrimSpace(*in.PlusOneRSVP))
		if !g.PlusOneAllowed {
			return nil, apierr.Validation("plus_one_not_allowed", "this invitation does not include a plus-one")
		}
		if plusOne != domevents.RSVPConfirmed && plusOne != domevents.RSVPDeclined {
			return nil, apierr.Validation("invalid_plus_one_rsvp", "plusOneRsvp must be confirmed or declined")
		}
		if status == domevents.RSVPDeclined {
			plusOne = domevents.RSVPDeclined
		}
		updates["plus_one_rsvp"] = plusOne
	} else if status == domevents.RSVPDeclined && g.PlusOneAllowed {
		updates["plus_one_rsvp"] = domevents.RSVPDeclined
	}
	if in.DietaryRestrictions != nil {
		updates["dietary_restrictions"] = strings.TrimSpace(*in.DietaryRestrictions)
	}

	if err := u.deps.Guests.UpdateFields(dbc, g.ID, updates); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "update_rsvp_failed", err)
	}
	out, err := u.deps.Guests.GetByID(dbc, g.ID)
	if err != nil || out == nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_guest_failed", err)
	}
	return out, nil
}
