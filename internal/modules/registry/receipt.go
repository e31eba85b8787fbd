package registry

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
)

// sendReceipt emails the contributor once their payment settles. Failures are logged; the
// ledger has already committed.
func (u Usecases) sendReceipt(ctx context.Context, item types.RegistryItem, c types.Contribution) {
	if u.deps.Mail == nil || strings.TrimSpace(c.ContributorEmail) == "" {
		return
	}
	ev, err := u.deps.Events.GetByID(dbctx.Context{Ctx: ctx}, item.EventID)
	if err != nil || ev == nil {
		u.deps.Log.Warn("receipt skipped; event not loaded", "contribution_id", c.ID, "error", err)
		return
	}

	var text strings.Builder
	if c.ContributorName != "" {
		fmt.Fprintf(&text, "Hi %s,\n\n", c.ContributorName)
	}
	fmt.Fprintf(&text, "Thank you for your gift of %s %s toward the %s registry.\n",
		c.Amount.StringFixed(2), strings.ToUpper(u.deps.Currency), ev.Title)
	if c.Message != "" {
		fmt.Fprintf(&text, "\nYour message: %q\n", c.Message)
	}
	fmt.Fprintf(&text, "\nSee how the registry is coming along: %s\n", u.RegistryURL(ev.ID))

	_, err = u.deps.Mail.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: c.ContributorEmail, Name: c.ContributorName}},
		Subject:    fmt.Sprintf("Your gift for %s", ev.Title),
		Text:       text.String(),
		Categories: []string{"contribution_receipt"},
		CustomArgs: map[string]string{"contribution_id": c.ID.String(), "event_id": ev.ID.String()},
	})
	if err != nil {
		u.deps.Log.Warn("send contribution receipt failed", "contribution_id", c.ID, "error", err)
	}
}
