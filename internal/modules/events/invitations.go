package events

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	pkgerrors "github.com/yungbote/vowbridge-backend/internal/pkg/errors"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
)

type InvitationReport struct {
	Sent         int      `json:"sent"`
	Failed       int      `json:"failed"`
	FailedEmails []string `json:"failedEmails,omitempty"`
}

// SendInvitations emails every guest not yet invited. A failed send leaves the guest
// uninvited so the next call retries it.
func (u Usecases) SendInvitations(ctx context.Context, ownerID, eventID uuid.UUID) (InvitationReport, error) {
	var report InvitationReport
	ev, err := u.OwnedEvent(ctx, ownerID, eventID)
	if err != nil {
		return report, err
	}
	if u.deps.Mail == nil {
		return report, apierr.New(http.StatusServiceUnavailable, "email_unavailable", pkgerrors.Unavailable("email", "send invitations"))
	}

	dbc := dbctx.Context{Ctx: ctx}
	guests, err := u.deps.Guests.ListUninvited(dbc, ev.ID)
	if err != nil {
		return report, apierr.New(http.StatusInternalServerError, "list_guests_failed", err)
	}
	if len(guests) == 0 {
		return report, nil
	}

	var (
		mu   sync.Mutex
		sent []uuid.UUID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.deps.InviteConcurrency)
	for _, guest := range guests {
		guest := guest
		g.Go(func() error {
			_, sendErr := u.deps.Mail.Send(gctx, u.invitationEmail(ev, guest))
			mu.Lock()
			defer mu.Unlock()
			if sendErr != nil {
				u.deps.Log.Warn("invitation send failed", "guest_id", guest.ID, "error", sendErr)
				report.Failed++
				report.FailedEmails = append(report.FailedEmails, guest.Email)
				return nil
			}
			sent = append(sent, guest.ID)
			return nil
		})
	}
	_ = g.Wait()

	if len(sent) > 0 {
		if err := u.deps.Guests.MarkInvitationSent(dbc, sent); err != nil {
			return report, apierr.New(http.StatusInternalServerError, "mark_invited_failed", err)
		}
	}
	report.Sent = len(sent)
	u.deps.Log.Info("invitations sent", "event_id", ev.ID, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

func (u Usecases) invitationEmail(ev *types.Event, g *types.Guest) sendgrid.SendEmailRequest {
	name := strings.TrimSpace(g.FirstName + " " + g.LastName)
	rsvpURL := fmt.Sprintf("%s/rsvp/%s", u.deps.PublicURL, g.ID)
	when := ev.EventDate.Format("Monday, January 2, 2006")

	var text strings.Builder
	if name != "" {
		fmt.Fprintf(&text, "Dear %s,\n\n", name)
	}
	fmt.Fprintf(&text, "You are invited to %s on %s", ev.Title, when)
	if ev.Venue != "" {
		fmt.Fprintf(&text, " at %s", ev.Venue)
	}
	text.WriteString(".\n\n")
	fmt.Fprintf(&text, "Please let us know if you can make it: %s\n", rsvpURL)
	if g.PlusOneAllowed {
		text.WriteString("You are welcome to bring a guest.\n")
	}

	return sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: g.Email, Name: name}},
		Subject:    fmt.Sprintf("You're invited: %s", ev.Title),
		Text:       text.String(),
		Categories: []string{"invitation"},
		CustomArgs: map[string]string{"event_id": ev.ID.String(), "guest_id": g.ID.String()},
	}
}
