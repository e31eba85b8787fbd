package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/vowbridge-backend/internal/data/aggregates"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	"github.com/yungbote/vowbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/vowbridge-backend/internal/domain"
	domregistry "github.com/yungbote/vowbridge-backend/internal/domain/registry"
	vowhttp "github.com/yungbote/vowbridge-backend/internal/http"
	httpH "github.com/yungbote/vowbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/vowbridge-backend/internal/http/middleware"
	catalogmod "github.com/yungbote/vowbridge-backend/internal/modules/catalog"
	eventsmod "github.com/yungbote/vowbridge-backend/internal/modules/events"
	registrymod "github.com/yungbote/vowbridge-backend/internal/modules/registry"
	usersmod "github.com/yungbote/vowbridge-backend/internal/modules/users"
	vendorsmod "github.com/yungbote/vowbridge-backend/internal/modules/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/payments"
	"github.com/yungbote/vowbridge-backend/internal/realtime"
)

const testSecret = "test-secret"

type stubPayments struct {
	mu   sync.Mutex
	n    int
	next *payments.WebhookEvent
}

func (p *stubPayments) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	id := "pi_" + uuid.NewString()[:8]
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method", Metadata: req.Metadata}, nil
}

func (p *stubPayments) GetIntent(_ context.Context, id string) (*payments.Intent, error) {
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}, nil
}

func (p *stubPayments) ParseWebhook(_ []byte, sig string) (*payments.WebhookEvent, error) {
	if sig != "valid" {
		return nil, payments.ErrInvalidSignature
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.next == nil {
		return nil, errors.New("no event queued")
	}
	return p.next, nil
}

type memMedia struct {
	mu   sync.Mutex
	keys []string
}

func (m *memMedia) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return "https://cdn.vowbridge.test/" + key, nil
}

func (m *memMedia) Delete(context.Context, string) error { return nil }

type env struct {
	router *gin.Engine
	db     *gorm.DB
	pay    *stubPayments
	media  *memMedia
	hub    *realtime.Hub
	owner  *types.User
	ev     *types.Event
	item   *types.RegistryItem
}

type hubPublisher struct{ hub *realtime.Hub }

func (p hubPublisher) Publish(_ context.Context, msg realtime.Message) error {
	p.hub.Broadcast(msg)
	return nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, db, "celebrant")
	ev := testutil.SeedEvent(t, ctx, db, owner.ID)
	product := testutil.SeedProduct(t, ctx, db, "Dutch Oven", 300)
	item := testutil.SeedRegistryItem(t, ctx, db, ev.ID, product.ID, decimal.NewFromInt(100), domregistry.PriorityHigh)

	base := aggregates.BaseDeps{DB: db, Log: log}
	eventRepo := repos.NewEventRepo(db, log)
	items := repos.NewRegistryItemRepo(db, log)
	contr := repos.NewContributionRepo(db, log)
	vendorRepo := repos.NewVendorRepo(db, log)
	reviewRepo := repos.NewVendorReviewRepo(db, log)
	bookingRepo := repos.NewBookingRepo(db, log)

	hub := realtime.NewHub(log)
	pay := &stubPayments{}
	media := &memMedia{}

	registry := registrymod.New(registrymod.UsecasesDeps{
		Log:           log,
		Events:        eventRepo,
		Products:      repos.NewProductRepo(db, log),
		Items:         items,
		Contributions: contr,
		Ledger: aggregates.NewContributionLedger(aggregates.ContributionLedgerDeps{
			Base:          base,
			Items:         items,
			Contributions: contr,
			PaymentEvents: repos.NewPaymentEventRepo(db, log),
		}),
		Payments:  pay,
		Publisher: hubPublisher{hub: hub},
		PublicURL: "https://vowbridge.test",
	})
	vendors := vendorsmod.New(vendorsmod.UsecasesDeps{
		Log:        log,
		Vendors:    vendorRepo,
		Reviews:    reviewRepo,
		Portfolio:  repos.NewPortfolioRepo(db, log),
		Bookings:   bookingRepo,
		Events:     eventRepo,
		ReviewAgg:  aggregates.NewVendorReviewAggregate(aggregates.VendorReviewDeps{Base: base, Vendors: vendorRepo, Reviews: reviewRepo}),
		BookingAgg: aggregates.NewBookingAggregate(aggregates.BookingDeps{Base: base, Bookings: bookingRepo}),
		Media:      media,
	})

	router := vowhttp.NewRouter(vowhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{Secret: testSecret}),
		HealthHandler:  httpH.NewHealthHandler(db),
		UserHandler:    httpH.NewUserHandler(usersmod.New(usersmod.UsecasesDeps{Log: log, Users: repos.NewUserRepo(db, log)})),
		EventHandler: httpH.NewEventHandler(log, eventsmod.New(eventsmod.UsecasesDeps{
			Log:      log,
			Events:   eventRepo,
			Guests:   repos.NewGuestRepo(db, log),
			Timeline: repos.NewTimelineItemRepo(db, log),
		})),
		CatalogHandler: httpH.NewCatalogHandler(catalogmod.New(catalogmod.UsecasesDeps{
			Log:        log,
			Categories: repos.NewCategoryRepo(db, log),
			Products:   repos.NewProductRepo(db, log),
		})),
		RegistryHandler: httpH.NewRegistryHandler(log, registry),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub, registry, nil, nil),
		VendorHandler:   httpH.NewVendorHandler(log, vendors),
	})
	return &env{router: router, db: db, pay: pay, media: media, hub: hub, owner: owner, ev: ev, item: item}
}

func token(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, httpMW.Claims{
		Email: email,
		Role:  "celebrant",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

type req struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (e *env) do(t *testing.T, r req) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := r.body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	httpReq := httptest.NewRequest(r.method, r.path, body)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		httpReq.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httpReq)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, rec, &env)
	return env.Error.Code
}

func TestHealthcheck(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodGet, path: "/healthcheck"})
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers, got %v", rec.Header())
	}
}

func TestAuthUserUpsertsCaller(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodGet, path: "/api/auth/user"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	id := uuid.New()
	rec = e.do(t, req{method: http.MethodGet, path: "/api/auth/user", token: token(t, id, "Guest@Example.com")})
	if rec.Code != http.StatusOK {
		t.Fatalf("auth user: %d %s", rec.Code, rec.Body.String())
	}
	var u types.User
	decode(t, rec, &u)
	if u.ID != id || u.Email == nil || *u.Email != "guest@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestBadTokenRejectedOnPublicRoute(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodGet, path: "/api/events/" + e.ev.ID.String() + "/registry", token: "not-a-jwt"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestRegistryListIsPublic(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodGet, path: "/api/events/" + e.ev.ID.String() + "/registry"})
	if rec.Code != http.StatusOK {
		t.Fatalf("list registry: %d %s", rec.Code, rec.Body.String())
	}
	var rows []types.RegistryItemView
	decode(t, rec, &rows)
	if len(rows) != 1 || rows[0].ID != e.item.ID || rows[0].Product == nil {
		t.Fatalf("unexpected registry %+v", rows)
	}

	rec = e.do(t, req{method: http.MethodGet, path: "/api/events/nope/registry"})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_id" {
		t.Fatalf("expected 400 invalid_id, got %d %s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, req{method: http.MethodGet, path: "/api/events/" + uuid.NewString() + "/registry"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown event, got %d", rec.Code)
	}
}

func TestContributeThenWebhookMovesTotal(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{
		"registryItemId":   e.item.ID,
		"amount":           "25.00",
		"contributorEmail": "aunt@example.com",
		"contributorName":  "Aunt May",
	}
	headers := map[string]string{"Idempotency-Key": "checkout-1"}

	rec := e.do(t, req{method: http.MethodPost, path: "/api/contributions", body: body, headers: headers})
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute: %d %s", rec.Code, rec.Body.String())
	}
	var first registrymod.ContributeResult
	decode(t, rec, &first)
	if first.ClientSecret == "" || first.Contribution.Status != domregistry.ContributionPending {
		t.Fatalf("unexpected contribution %+v", first)
	}

	rec = e.do(t, req{method: http.MethodPost, path: "/api/contributions", body: body, headers: headers})
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: %d %s", rec.Code, rec.Body.String())
	}
	var replay registrymod.ContributeResult
	decode(t, rec, &replay)
	if !replay.Replayed || replay.Contribution.ID != first.Contribution.ID || replay.ClientSecret != first.ClientSecret {
		t.Fatalf("replay should return the original contribution: %+v", replay)
	}
	if e.pay.n != 1 {
		t.Fatalf("expected one intent, got %d", e.pay.n)
	}

	e.pay.next = &payments.WebhookEvent{
		ID:               "evt_1",
		Outcome:          domregistry.OutcomeSucceeded,
		PaymentReference: *first.Contribution.PaymentReference,
	}
	for i := 0; i < 2; i++ {
		rec = e.do(t, req{method: http.MethodPost, path: "/api/webhooks/stripe", body: []byte(`{}`), headers: map[string]string{"Stripe-Signature": "valid"}})
		if rec.Code != http.StatusOK {
			t.Fatalf("webhook %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}

	rec = e.do(t, req{method: http.MethodGet, path: "/api/registry-items/" + e.item.ID.String()})
	var view types.RegistryItemView
	decode(t, rec, &view)
	if !view.CurrentAmount.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("expected total 25 after redelivery, got %s", view.CurrentAmount)
	}

	rec = e.do(t, req{method: http.MethodPost, path: "/api/webhooks/stripe", body: []byte(`{}`), headers: map[string]string{"Stripe-Signature": "forged"}})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_signature" {
		t.Fatalf("expected 400 invalid_signature, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestContributeValidation(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodPost, path: "/api/contributions", body: map[string]any{
		"registryItemId":   e.item.ID,
		"amount":           "0",
		"contributorEmail": "aunt@example.com",
	}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero amount, got %d %s", rec.Code, rec.Body.String())
	}
	rec = e.do(t, req{method: http.MethodPost, path: "/api/contributions", body: []byte(`{"amount":`)})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_body" {
		t.Fatalf("expected 400 invalid_body, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRegistryItemOwnerRoutes(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodPatch, path: "/api/registry-items/" + e.item.ID.String(), body: map[string]any{"priority": "low"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	stranger := token(t, uuid.New(), "x@example.com")
	rec = e.do(t, req{method: http.MethodPatch, path: "/api/registry-items/" + e.item.ID.String(), body: map[string]any{"priority": "low"}, token: stranger})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger, got %d %s", rec.Code, rec.Body.String())
	}
	owner := token(t, e.owner.ID, *e.owner.Email)
	rec = e.do(t, req{method: http.MethodPatch, path: "/api/registry-items/" + e.item.ID.String(), body: map[string]any{"priority": "low"}, token: owner})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: %d %s", rec.Code, rec.Body.String())
	}
	var view types.RegistryItemView
	decode(t, rec, &view)
	if view.Priority != domregistry.PriorityLow {
		t.Fatalf("expected low priority, got %q", view.Priority)
	}
}

func TestRegistryQRIsPNG(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, req{method: http.MethodGet, path: "/api/events/" + e.ev.ID.String() + "/registry/qr?size=256"})
	if rec.Code != http.StatusOK {
		t.Fatalf("qr: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("qr is not a png: %v", err)
	}
}

func TestVendorPortfolioUpload(t *testing.T) {
	e := newEnv(t)
	ownerID := uuid.New()
	tok := token(t, ownerID, "studio@example.com")

	rec := e.do(t, req{method: http.MethodPost, path: "/api/vendors", token: tok, body: map[string]any{
		"businessName": "Golden Hour", "category": "photographer", "location": "Austin",
	}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor: %d %s", rec.Code, rec.Body.String())
	}
	var v types.Vendor
	decode(t, rec, &v)

	rec = e.do(t, req{method: http.MethodPost, path: "/api/vendors", token: tok, body: map[string]any{
		"businessName": "Second", "category": "dj",
	}})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second vendor, got %d", rec.Code)
	}

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="first-dance.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(img.Bytes())
	_ = mw.WriteField("caption", "First dance")
	_ = mw.Close()

	httpReq := httptest.NewRequest(http.MethodPost, "/api/vendors/"+v.ID.String()+"/portfolio", &form)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+tok)
	upload := httptest.NewRecorder()
	e.router.ServeHTTP(upload, httpReq)
	if upload.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", upload.Code, upload.Body.String())
	}
	if len(e.media.keys) != 1 || !strings.HasPrefix(e.media.keys[0], "vendors/"+v.ID.String()+"/portfolio/") {
		t.Fatalf("unexpected stored keys %v", e.media.keys)
	}

	rec = e.do(t, req{method: http.MethodGet, path: "/api/vendors/" + v.ID.String() + "/portfolio"})
	var items []types.PortfolioItem
	decode(t, rec, &items)
	if len(items) != 1 || items[0].Caption != "First dance" {
		t.Fatalf("unexpected portfolio %+v", items)
	}

	rec = e.do(t, req{method: http.MethodGet, path: "/api/my-vendor", token: tok})
	if rec.Code != http.StatusOK {
		t.Fatalf("my vendor: %d", rec.Code)
	}
}

func TestRegistryStreamStartsWithSnapshot(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events/"+e.ev.ID.String()+"/registry/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected event stream, got %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			if got := strings.TrimPrefix(line, "event: "); got != string(realtime.EventRegistrySnapshot) {
				t.Fatalf("expected snapshot first, got %q", got)
			}
			return
		}
	}
	t.Fatalf("stream ended before snapshot: %v", sc.Err())
}
