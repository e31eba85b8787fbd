package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/vowbridge-backend/internal/data/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domregistry "github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/apierr"
	"github.com/yungbote/vowbridge-backend/internal/platform/payments"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
)

type fakeProvider struct {
	mu      sync.Mutex
	created int
	intents map[string]*payments.Intent
	next    *payments.WebhookEvent
	failNew bool
}

func (p *fakeProvider) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNew {
		return nil, errors.New("card network down")
	}
	if p.intents == nil {
		p.intents = map[string]*payments.Intent{}
	}
	p.created++
	id := fmt.Sprintf("pi_%d", p.created)
	in := &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method", Metadata: req.Metadata}
	p.intents[id] = in
	return in, nil
}

func (p *fakeProvider) GetIntent(_ context.Context, id string) (*payments.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in, ok := p.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	return in, nil
}

func (p *fakeProvider) ParseWebhook(_ []byte, sig string) (*payments.WebhookEvent, error) {
	if sig != "valid" {
		return nil, payments.ErrInvalidSignature
	}
	return p.next, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg realtime.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) events(kind realtime.Event) []realtime.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []realtime.Message
	for _, m := range f.msgs {
		if m.Event == kind {
			out = append(out, m)
		}
	}
	return out
}

type fakeScheduler struct {
	started []uuid.UUID
	settled []uuid.UUID
}

func (s *fakeScheduler) Start(_ context.Context, id uuid.UUID) error {
	s.started = append(s.started, id)
	return nil
}

func (s *fakeScheduler) Settled(_ context.Context, id uuid.UUID) error {
	s.settled = append(s.settled, id)
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sendgrid.SendEmailRequest
}

func (m *recordingMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: http.StatusAccepted}, nil
}

type fixture struct {
	db      *gorm.DB
	uc      Usecases
	pay     *fakeProvider
	pub     *fakePublisher
	sched   *fakeScheduler
	mail    *recordingMailer
	owner   *types.User
	ev      *types.Event
	product *types.Product
	item    *types.RegistryItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "celebrant")
	ev := testutil.SeedEvent(t, ctx, db, owner.ID)
	product := testutil.SeedProduct(t, ctx, db, "Stand Mixer", 400)
	item := testutil.SeedRegistryItem(t, ctx, db, ev.ID, product.ID, decimal.NewFromInt(100), domregistry.PriorityHigh)

	items := repos.NewRegistryItemRepo(db, log)
	contr := repos.NewContributionRepo(db, log)
	ledger := aggregates.NewContributionLedger(aggregates.ContributionLedgerDeps{
		Base:          aggregates.BaseDeps{DB: db, Log: log},
		Items:         items,
		Contributions: contr,
		PaymentEvents: repos.NewPaymentEventRepo(db, log),
	})
	f := &fixture{
		db:      db,
		pay:     &fakeProvider{},
		pub:     &fakePublisher{},
		sched:   &fakeScheduler{},
		mail:    &recordingMailer{},
		owner:   owner,
		ev:      ev,
		product: product,
		item:    item,
	}
	f.uc = New(UsecasesDeps{
		Log:           log,
		Events:        repos.NewEventRepo(db, log),
		Products:      repos.NewProductRepo(db, log),
		Items:         items,
		Contributions: contr,
		Ledger:        ledger,
		Payments:      f.pay,
		Publisher:     f.pub,
		Scheduler:     f.sched,
		Mail:          f.mail,
		PublicURL:     "https://vowbridge.test/",
	})
	return f
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

func (f *fixture) contribute(t *testing.T, amount, key string, anonymous bool) *ContributeResult {
	t.Helper()
	res, err := f.uc.Contribute(context.Background(), ContributeInput{
		ItemID:         f.item.ID,
		Amount:         decimal.RequireFromString(amount),
		Email:          "Guest@Example.com",
		Name:           "Aunt May",
		Message:        "Congrats!",
		IsAnonymous:    anonymous,
		IdempotencyKey: key,
	})
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	return res
}

func (f *fixture) currentAmount(t *testing.T) decimal.Decimal {
	t.Helper()
	var item types.RegistryItem
	if err := f.db.First(&item, "id = ?", f.item.ID).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	return item.CurrentAmount
}

func TestContributeIsIdempotentPerKey(t *testing.T) {
	f := newFixture(t)

	first := f.contribute(t, "25.00", "key-1", false)
	if first.Replayed || first.ClientSecret == "" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Contribution.Status != domregistry.ContributionPending {
		t.Fatalf("expected pending, got %s", first.Contribution.Status)
	}
	if first.Contribution.ContributorEmail != "" {
		t.Fatalf("contributor email leaked in response")
	}

	again := f.contribute(t, "25.00", "key-1", false)
	if !again.Replayed || again.Contribution.ID != first.Contribution.ID {
		t.Fatalf("replay returned a different contribution: %+v", again)
	}
	if again.ClientSecret != first.ClientSecret {
		t.Fatalf("replay secret %q != %q", again.ClientSecret, first.ClientSecret)
	}
	if f.pay.created != 1 {
		t.Fatalf("expected one intent, got %d", f.pay.created)
	}
	if len(f.sched.started) != 1 {
		t.Fatalf("expected one settlement start, got %d", len(f.sched.started))
	}
	if !f.currentAmount(t).IsZero() {
		t.Fatalf("recording must not move the total")
	}
}

func TestContributeKeyReuseWithDifferentAmountConflicts(t *testing.T) {
	f := newFixture(t)
	f.contribute(t, "25.00", "key-1", false)
	_, err := f.uc.Contribute(context.Background(), ContributeInput{
		ItemID: f.item.ID, Amount: decimal.NewFromInt(30), Email: "guest@example.com", IdempotencyKey: "key-1",
	})
	wantStatus(t, err, http.StatusConflict)
}

func TestContributeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Contribute(ctx, ContributeInput{ItemID: f.item.ID, Amount: decimal.Zero, Email: "guest@example.com"})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.uc.Contribute(ctx, ContributeInput{ItemID: f.item.ID, Amount: decimal.NewFromInt(5)})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.uc.Contribute(ctx, ContributeInput{ItemID: f.item.ID, Amount: decimal.RequireFromString("10000000000"), Email: "guest@example.com"})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.uc.Contribute(ctx, ContributeInput{ItemID: uuid.New(), Amount: decimal.NewFromInt(5), Email: "guest@example.com"})
	wantStatus(t, err, http.StatusNotFound)
}

func TestContributeWithoutProviderFailsBeforeRecording(t *testing.T) {
	f := newFixture(t)
	f.uc.deps.Payments = payments.Disabled{}
	_, err := f.uc.Contribute(context.Background(), ContributeInput{
		ItemID: f.item.ID, Amount: decimal.NewFromInt(10), Email: "guest@example.com", IdempotencyKey: "k",
	})
	wantStatus(t, err, http.StatusBadGateway)

	var n int64
	f.db.Model(&types.Contribution{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no contribution rows, got %d", n)
	}
}

func TestContributeProviderErrorIsDownstream(t *testing.T) {
	f := newFixture(t)
	f.pay.failNew = true
	_, err := f.uc.Contribute(context.Background(), ContributeInput{
		ItemID: f.item.ID, Amount: decimal.NewFromInt(10), Email: "guest@example.com", IdempotencyKey: "k",
	})
	wantStatus(t, err, http.StatusBadGateway)
}

func TestWebhookSucceededMovesTotalOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.contribute(t, "40.00", "key-1", false)

	f.pay.next = &payments.WebhookEvent{
		ID:               "evt_1",
		Type:             "payment_intent.succeeded",
		Outcome:          domregistry.OutcomeSucceeded,
		PaymentReference: *res.Contribution.PaymentReference,
		ContributionID:   res.Contribution.ID.String(),
	}
	out, err := f.uc.HandleWebhook(ctx, []byte(`{}`), "valid")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !out.Applied || out.Replayed {
		t.Fatalf("unexpected webhook result: %+v", out)
	}
	if got := f.currentAmount(t); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected total 40, got %s", got)
	}
	if len(f.pub.events(realtime.EventRegistryProgress)) != 1 {
		t.Fatalf("expected one progress message")
	}
	if len(f.sched.settled) != 1 || f.sched.settled[0] != res.Contribution.ID {
		t.Fatalf("expected settlement signal for %s, got %v", res.Contribution.ID, f.sched.settled)
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0].To[0].Email != "guest@example.com" {
		t.Fatalf("expected one receipt to the contributor, got %+v", f.mail.sent)
	}

	out, err = f.uc.HandleWebhook(ctx, []byte(`{}`), "valid")
	if err != nil {
		t.Fatalf("replayed webhook: %v", err)
	}
	if !out.Replayed || out.Applied {
		t.Fatalf("expected replay, got %+v", out)
	}
	if got := f.currentAmount(t); !got.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("replay moved the total to %s", got)
	}
	if len(f.pub.events(realtime.EventRegistryProgress)) != 1 {
		t.Fatalf("replay must not publish progress")
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("replay must not send another receipt")
	}
}

func TestWebhookRefundThenIllegalTransitionIsAcknowledged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.contribute(t, "40.00", "key-1", false)
	ref := *res.Contribution.PaymentReference

	for i, outcome := range []string{domregistry.OutcomeSucceeded, domregistry.OutcomeRefunded} {
		f.pay.next = &payments.WebhookEvent{ID: fmt.Sprintf("evt_%d", i), Outcome: outcome, PaymentReference: ref}
		if _, err := f.uc.HandleWebhook(ctx, nil, "valid"); err != nil {
			t.Fatalf("%s: %v", outcome, err)
		}
	}
	if got := f.currentAmount(t); !got.IsZero() {
		t.Fatalf("refund should restore zero, got %s", got)
	}

	f.pay.next = &payments.WebhookEvent{ID: "evt_late", Outcome: domregistry.OutcomeSucceeded, PaymentReference: ref}
	out, err := f.uc.HandleWebhook(ctx, nil, "valid")
	if err != nil {
		t.Fatalf("late success should be acknowledged, got %v", err)
	}
	if !out.Ignored || out.Applied {
		t.Fatalf("expected ignored result, got %+v", out)
	}
	if got := f.currentAmount(t); !got.IsZero() {
		t.Fatalf("refunded contribution re-entered the total: %s", got)
	}
}

func TestWebhookRefundBeforeSuccessKeepsRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.contribute(t, "40.00", "key-1", false)
	ref := *res.Contribution.PaymentReference

	f.pay.next = &payments.WebhookEvent{ID: "evt_refund", Outcome: domregistry.OutcomeRefunded, PaymentReference: ref}
	out, err := f.uc.HandleWebhook(ctx, nil, "valid")
	if err != nil {
		t.Fatalf("early refund: %v", err)
	}
	if !out.Applied || out.Ignored {
		t.Fatalf("early refund should be applied, got %+v", out)
	}
	if len(f.sched.settled) != 1 || f.sched.settled[0] != res.Contribution.ID {
		t.Fatalf("early refund should close the payment window, got %v", f.sched.settled)
	}

	f.pay.next = &payments.WebhookEvent{ID: "evt_success", Outcome: domregistry.OutcomeSucceeded, PaymentReference: ref}
	out, err = f.uc.HandleWebhook(ctx, nil, "valid")
	if err != nil {
		t.Fatalf("late success should be acknowledged, got %v", err)
	}
	if !out.Ignored {
		t.Fatalf("success after refund should be ignored, got %+v", out)
	}
	if got := f.currentAmount(t); !got.IsZero() {
		t.Fatalf("refunded payment counted toward the total: %s", got)
	}
	if len(f.mail.sent) != 0 {
		t.Fatalf("no receipt for a refunded payment")
	}
}

func TestWebhookRejectsBadSignatureAndIgnoresUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.HandleWebhook(ctx, nil, "forged")
	wantStatus(t, err, http.StatusBadRequest)

	f.pay.next = &payments.WebhookEvent{ID: "evt_other", Type: "customer.created"}
	out, err := f.uc.HandleWebhook(ctx, nil, "valid")
	if err != nil || !out.Ignored {
		t.Fatalf("expected ignored event, got %+v %v", out, err)
	}

	f.pay.next = &payments.WebhookEvent{ID: "evt_missing", Outcome: domregistry.OutcomeSucceeded, PaymentReference: "pi_unknown"}
	out, err = f.uc.HandleWebhook(ctx, nil, "valid")
	if err != nil || !out.Ignored {
		t.Fatalf("expected unknown contribution to be acknowledged, got %+v %v", out, err)
	}
}

func TestListRegistryOrdersByPriorityThenAge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low := testutil.SeedRegistryItem(t, ctx, f.db, f.ev.ID, f.product.ID, decimal.NewFromInt(50), domregistry.PriorityLow)
	time.Sleep(5 * time.Millisecond)
	medium := testutil.SeedRegistryItem(t, ctx, f.db, f.ev.ID, f.product.ID, decimal.NewFromInt(50), domregistry.PriorityMedium)
	time.Sleep(5 * time.Millisecond)
	high2 := testutil.SeedRegistryItem(t, ctx, f.db, f.ev.ID, f.product.ID, decimal.NewFromInt(50), domregistry.PriorityHigh)
	hidden := testutil.SeedRegistryItem(t, ctx, f.db, f.ev.ID, f.product.ID, decimal.NewFromInt(50), domregistry.PriorityHigh)
	if err := f.db.Model(&types.RegistryItem{}).Where("id = ?", hidden.ID).Update("is_public", false).Error; err != nil {
		t.Fatalf("hide item: %v", err)
	}

	got, err := f.uc.ListRegistry(ctx, f.ev.ID)
	if err != nil {
		t.Fatalf("ListRegistry: %v", err)
	}
	want := []uuid.UUID{f.item.ID, high2.ID, medium.ID, low.ID}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s want %s", i, got[i].ID, id)
		}
		if got[i].Product == nil {
			t.Fatalf("position %d missing product", i)
		}
	}

	_, err = f.uc.ListRegistry(ctx, uuid.New())
	wantStatus(t, err, http.StatusNotFound)
}

func TestPrivateItemVisibleOnlyToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	private := false
	view, err := f.uc.CreateItem(ctx, CreateItemInput{
		OwnerID: f.owner.ID, EventID: f.ev.ID, ProductID: f.product.ID,
		TargetAmount: decimal.NewFromInt(80), Priority: "low", IsPublic: &private,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if _, err := f.uc.GetItem(ctx, f.owner.ID, view.ID); err != nil {
		t.Fatalf("owner should see private item: %v", err)
	}
	_, err = f.uc.GetItem(ctx, uuid.Nil, view.ID)
	wantStatus(t, err, http.StatusNotFound)

	_, err = f.uc.Contribute(ctx, ContributeInput{ItemID: view.ID, Amount: decimal.NewFromInt(5), Email: "guest@example.com"})
	wantStatus(t, err, http.StatusNotFound)
}

func TestCreateAndUpdateItemRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := testutil.SeedUser(t, ctx, f.db, "guest")

	_, err := f.uc.CreateItem(ctx, CreateItemInput{OwnerID: stranger.ID, EventID: f.ev.ID, ProductID: f.product.ID, TargetAmount: decimal.NewFromInt(10)})
	wantStatus(t, err, http.StatusForbidden)

	_, err = f.uc.CreateItem(ctx, CreateItemInput{OwnerID: uuid.Nil, EventID: f.ev.ID, ProductID: f.product.ID, TargetAmount: decimal.NewFromInt(10)})
	wantStatus(t, err, http.StatusUnauthorized)

	_, err = f.uc.CreateItem(ctx, CreateItemInput{OwnerID: f.owner.ID, EventID: f.ev.ID, ProductID: f.product.ID, TargetAmount: decimal.NewFromInt(10), Priority: "urgent"})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.uc.CreateItem(ctx, CreateItemInput{OwnerID: f.owner.ID, EventID: f.ev.ID, ProductID: uuid.New(), TargetAmount: decimal.NewFromInt(10)})
	wantStatus(t, err, http.StatusNotFound)

	target := decimal.NewFromInt(250)
	updated, err := f.uc.UpdateItem(ctx, UpdateItemInput{OwnerID: f.owner.ID, ItemID: f.item.ID, TargetAmount: &target})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !updated.TargetAmount.Equal(target) {
		t.Fatalf("target not updated: %s", updated.TargetAmount)
	}
	if len(f.pub.events(realtime.EventRegistryProgress)) != 1 {
		t.Fatalf("target change should publish progress")
	}

	_, err = f.uc.UpdateItem(ctx, UpdateItemInput{OwnerID: stranger.ID, ItemID: f.item.ID, TargetAmount: &target})
	wantStatus(t, err, http.StatusForbidden)

	_, err = f.uc.UpdateItem(ctx, UpdateItemInput{OwnerID: f.owner.ID, ItemID: f.item.ID})
	wantStatus(t, err, http.StatusBadRequest)

	tooLarge := decimal.RequireFromString("10000000000")
	_, err = f.uc.CreateItem(ctx, CreateItemInput{OwnerID: f.owner.ID, EventID: f.ev.ID, ProductID: f.product.ID, TargetAmount: tooLarge})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = f.uc.UpdateItem(ctx, UpdateItemInput{OwnerID: f.owner.ID, ItemID: f.item.ID, TargetAmount: &tooLarge})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestListContributionsHidesAnonymousNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.contribute(t, "10.00", "k-named", false)
	time.Sleep(5 * time.Millisecond)
	f.contribute(t, "15.00", "k-anon", true)

	rows, err := f.uc.ListContributions(ctx, uuid.Nil, f.item.ID)
	if err != nil {
		t.Fatalf("ListContributions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !rows[0].IsAnonymous || rows[0].ContributorName != "" {
		t.Fatalf("newest row should be anonymous without name: %+v", rows[0])
	}
	if rows[1].ContributorName != "Aunt May" {
		t.Fatalf("named contributor lost name: %+v", rows[1])
	}
	for _, r := range rows {
		if r.ContributorEmail != "" {
			t.Fatalf("email leaked: %+v", r)
		}
	}
}

func TestCreatePaymentIntentStripsContributionMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreatePaymentIntent(ctx, PaymentIntentInput{Amount: decimal.RequireFromString("1.005")})
	wantStatus(t, err, http.StatusBadRequest)

	res, err := f.uc.CreatePaymentIntent(ctx, PaymentIntentInput{
		Amount:   decimal.NewFromInt(12),
		Metadata: map[string]string{payments.MetadataContributionID: uuid.NewString(), "note": "gift"},
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent: %v", err)
	}
	intent, _ := f.pay.GetIntent(ctx, res.ID)
	if _, ok := intent.Metadata[payments.MetadataContributionID]; ok {
		t.Fatalf("contribution metadata should be stripped")
	}
	if intent.Metadata["note"] != "gift" {
		t.Fatalf("custom metadata lost: %v", intent.Metadata)
	}
}

func TestSnapshotAndQR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snap, err := f.uc.Snapshot(ctx, f.ev.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	progress, ok := snap.Data.([]types.RegistryProgress)
	if snap.Event != realtime.EventRegistrySnapshot || !ok || len(progress) != 1 || progress[0].ItemID != f.item.ID {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	png, err := f.uc.RegistryQR(ctx, f.ev.ID, 0)
	if err != nil {
		t.Fatalf("RegistryQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("expected PNG output")
	}
	if got := f.uc.RegistryURL(f.ev.ID); got != "https://vowbridge.test/registry/"+f.ev.ID.String() {
		t.Fatalf("unexpected registry url %q", got)
	}

	_, err = f.uc.RegistryQR(ctx, uuid.New(), 0)
	wantStatus(t, err, http.StatusNotFound)
}
