package events

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domevents "github.com/yungbote/vowbridge-backend/internal/domain/events"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sendgrid.SendEmailRequest
	failTo string
}

func (m *fakeMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(req.To) > 0 && req.To[0].Email == m.failTo {
		return nil, errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: http.StatusAccepted}, nil
}

type fixture struct {
	db    *gorm.DB
	uc    Usecases
	mail  *fakeMailer
	owner *types.User
	ev    *types.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "celebrant")
	ev := testutil.SeedEvent(t, ctx, db, owner.ID)
	mail := &fakeMailer{}
	uc := New(UsecasesDeps{
		Log:       log,
		Events:    repos.NewEventRepo(db, log),
		Guests:    repos.NewGuestRepo(db, log),
		Timeline:  repos.NewTimelineItemRepo(db, log),
		Mail:      mail,
		PublicURL: "https://vowbridge.test/",
	})
	return &fixture{db: db, uc: uc, mail: mail, owner: owner, ev: ev}
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected api error with status %d, got %v", status, err)
	}
	if ae.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, ae.Status, ae.Code)
	}
}

func TestCreateAndListEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.uc.CreateEvent(ctx, CreateEventInput{UserID: f.owner.ID, EventDate: time.Now()}); err == nil {
		t.Fatalf("expected missing title to fail")
	} else {
		wantStatus(t, err, http.StatusBadRequest)
	}

	later, err := f.uc.CreateEvent(ctx, CreateEventInput{
		UserID:    f.owner.ID,
		Title:     "  Reception  ",
		EventDate: time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if later.Title != "Reception" || later.Status != domevents.StatusPlanning {
		t.Fatalf("unexpected event: %+v", later)
	}

	list, err := f.uc.ListEvents(ctx, f.owner.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(list) != 2 || list[0].ID != later.ID {
		t.Fatalf("expected newest event date first, got %d events", len(list))
	}

	if _, err := f.uc.GetEvent(ctx, uuid.New()); err == nil {
		t.Fatalf("expected not found")
	} else {
		wantStatus(t, err, http.StatusNotFound)
	}
}

func TestGuestsRequireOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := testutil.SeedUser(t, ctx, f.db, "guest")

	_, err := f.uc.AddGuest(ctx, AddGuestInput{OwnerID: stranger.ID, EventID: f.ev.ID, Email: "x@example.com"})
	wantStatus(t, err, http.StatusForbidden)

	_, err = f.uc.ListGuests(ctx, uuid.Nil, f.ev.ID)
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestRSVPRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	solo, err := f.uc.AddGuest(ctx, AddGuestInput{OwnerID: f.owner.ID, EventID: f.ev.ID, Email: "Solo@Example.com", FirstName: "Sol"})
	if err != nil {
		t.Fatalf("AddGuest: %v", err)
	}
	if solo.Email != "solo@example.com" || solo.RSVPStatus != domevents.RSVPPending {
		t.Fatalf("unexpected guest: %+v", solo)
	}
	duo, err := f.uc.AddGuest(ctx, AddGuestInput{OwnerID: f.owner.ID, EventID: f.ev.ID, Email: "duo@example.com", FirstName: "Ada", PlusOneAllowed: true})
	if err != nil {
		t.Fatalf("AddGuest: %v", err)
	}

	_, err = f.uc.UpdateRSVP(ctx, UpdateRSVPInput{GuestID: solo.ID, Status: "maybe"})
	wantStatus(t, err, http.StatusBadRequest)

	yes := domevents.RSVPConfirmed
	_, err = f.uc.UpdateRSVP(ctx, UpdateRSVPInput{GuestID: solo.ID, Status: "confirmed", PlusOneRSVP: &yes})
	wantStatus(t, err, http.StatusBadRequest)

	diet := "vegetarian"
	got, err := f.uc.UpdateRSVP(ctx, UpdateRSVPInput{GuestID: duo.ID, Status: "confirmed", PlusOneRSVP: &yes, DietaryRestrictions: &diet})
	if err != nil {
		t.Fatalf("UpdateRSVP: %v", err)
	}
	if got.RSVPStatus != domevents.RSVPConfirmed || got.PlusOneRSVP == nil || *got.PlusOneRSVP != yes || got.DietaryRestrictions != diet {
		t.Fatalf("unexpected rsvp: %+v", got)
	}

	_, err = f.uc.UpdateRSVP(ctx, UpdateRSVPInput{GuestID: uuid.New(), Status: "declined"})
	wantStatus(t, err, http.StatusNotFound)

	guests, err := f.uc.ListGuests(ctx, f.owner.ID, f.ev.ID)
	if err != nil {
		t.Fatalf("ListGuests: %v", err)
	}
	if len(guests) != 2 || guests[0].FirstName != "Ada" {
		t.Fatalf("expected guests ordered by first name, got %d", len(guests))
	}
}

func TestGuestLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	one := 1
	ev, err := f.uc.CreateEvent(ctx, CreateEventInput{UserID: f.owner.ID, Title: "Brunch", EventDate: time.Now(), MaxGuests: &one})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if _, err := f.uc.AddGuest(ctx, AddGuestInput{OwnerID: f.owner.ID, EventID: ev.ID, Email: "a@example.com"}); err != nil {
		t.Fatalf("AddGuest: %v", err)
	}
	_, err = f.uc.AddGuest(ctx, AddGuestInput{OwnerID: f.owner.ID, EventID: ev.ID, Email: "b@example.com"})
	wantStatus(t, err, http.StatusConflict)
}

func TestSendInvitationsMarksOnlyDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, email := range []string{"a@example.com", "b@example.com", "bounce@example.com"} {
		if _, err := f.uc.AddGuest(ctx, AddGuestInput{OwnerID: f.owner.ID, EventID: f.ev.ID, Email: email}); err != nil {
			t.Fatalf("AddGuest: %v", err)
		}
	}
	f.mail.failTo = "bounce@example.com"

	report, err := f.uc.SendInvitations(ctx, f.owner.ID, f.ev.ID)
	if err != nil {
		t.Fatalf("SendInvitations: %v", err)
	}
	if report.Sent != 2 || report.Failed != 1 || len(report.FailedEmails) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, req := range f.mail.sent {
		if !strings.Contains(req.Text, "https://vowbridge.test/rsvp/") {
			t.Fatalf("invitation missing rsvp link: %q", req.Text)
		}
	}

	f.mail.failTo = ""
	report, err = f.uc.SendInvitations(ctx, f.owner.ID, f.ev.ID)
	if err != nil {
		t.Fatalf("SendInvitations retry: %v", err)
	}
	if report.Sent != 1 || report.Failed != 0 {
		t.Fatalf("retry should only send to the failed guest: %+v", report)
	}
}

func TestSendInvitationsWithoutMailer(t *testing.T) {
	f := newFixture(t)
	uc := f.uc
	uc.deps.Mail = nil
	_, err := uc.SendInvitations(context.Background(), f.owner.ID, f.ev.ID)
	wantStatus(t, err, http.StatusServiceUnavailable)
}

func TestTimelineOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2027, 6, 12, 16, 0, 0, 0, time.UTC)
	for _, in := range []AddTimelineItemInput{
		{Title: "Dinner", StartTime: base.Add(2 * time.Hour)},
		{Title: "Vows", StartTime: base, DisplayOrder: 1},
		{Title: "Processional", StartTime: base, DisplayOrder: 0},
	} {
		in.OwnerID = f.owner.ID
		in.EventID = f.ev.ID
		if _, err := f.uc.AddTimelineItem(ctx, in); err != nil {
			t.Fatalf("AddTimelineItem(%s): %v", in.Title, err)
		}
	}
	items, err := f.uc.ListTimeline(ctx, f.ev.ID)
	if err != nil {
		t.Fatalf("ListTimeline: %v", err)
	}
	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	if strings.Join(titles, ",") != "Processional,Vows,Dinner" {
		t.Fatalf("unexpected order: %v", titles)
	}
}
