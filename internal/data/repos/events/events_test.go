package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	"github.com/yungbote/vowbridge-backend/internal/platform/dbctx"
)

func TestEventRepoListByUserNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	owner := testutil.SeedUser(t, ctx, db, "celebrant")
	repo := NewEventRepo(db, testutil.Logger(t))

	early := &types.Event{UserID: owner.ID, Title: "Rehearsal", EventDate: time.Date(2027, 6, 11, 18, 0, 0, 0, time.UTC)}
	late := &types.Event{UserID: owner.ID, Title: "Wedding", EventDate: time.Date(2027, 6, 12, 16, 0, 0, 0, time.UTC)}
	for _, ev := range []*types.Event{early, late} {
		if err := repo.Create(dbc, ev); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if early.Status != "planning" {
		t.Fatalf("default status: got %q", early.Status)
	}

	list, err := repo.ListByUser(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].ID != late.ID || list[1].ID != early.ID {
		t.Fatalf("unexpected order: %+v", list)
	}

	other, err := repo.ListByUser(dbc, uuid.New())
	if err != nil || len(other) != 0 {
		t.Fatalf("ListByUser(other): %v %+v", err, other)
	}
}

func TestGuestRepoOrderingAndInvitations(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	owner := testutil.SeedUser(t, ctx, db, "celebrant")
	ev := testutil.SeedEvent(t, ctx, db, owner.ID)
	repo := NewGuestRepo(db, testutil.Logger(t))

	names := [][2]string{{"Zoe", "Adams"}, {"Ann", "Young"}, {"Ann", "Baker"}}
	for _, n := range names {
		if err := repo.Create(dbc, &types.Guest{EventID: ev.ID, Email: n[0] + "@x.io", FirstName: n[0], LastName: n[1]}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := repo.ListByEvent(dbc, ev.ID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	got := []string{}
	for _, g := range list {
		got = append(got, g.FirstName+" "+g.LastName)
		if g.RSVPStatus != "pending" {
			t.Fatalf("default rsvp: got %q", g.RSVPStatus)
		}
	}
	want := []string{"Ann Baker", "Ann Young", "Zoe Adams"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: want %v got %v", want, got)
		}
	}

	if err := repo.MarkInvitationSent(dbc, []uuid.UUID{list[0].ID}); err != nil {
		t.Fatalf("MarkInvitationSent: %v", err)
	}
	pending, err := repo.ListUninvited(dbc, ev.ID)
	if err != nil {
		t.Fatalf("ListUninvited: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 uninvited guests, got %d", len(pending))
	}
}

func TestTimelineOrdering(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	owner := testutil.SeedUser(t, ctx, db, "celebrant")
	ev := testutil.SeedEvent(t, ctx, db, owner.ID)
	repo := NewTimelineItemRepo(db, testutil.Logger(t))

	base := time.Date(2027, 6, 12, 15, 0, 0, 0, time.UTC)
	items := []*types.TimelineItem{
		{EventID: ev.ID, Title: "Dinner", StartTime: base.Add(3 * time.Hour)},
		{EventID: ev.ID, Title: "Photos", StartTime: base, DisplayOrder: 2},
		{EventID: ev.ID, Title: "Ceremony", StartTime: base, DisplayOrder: 1},
	}
	for _, it := range items {
		if err := repo.Create(dbc, it); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	list, err := repo.ListByEvent(dbc, ev.ID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(list) != 3 || list[0].Title != "Ceremony" || list[1].Title != "Photos" || list[2].Title != "Dinner" {
		t.Fatalf("unexpected order: %s, %s, %s", list[0].Title, list[1].Title, list[2].Title)
	}
}
