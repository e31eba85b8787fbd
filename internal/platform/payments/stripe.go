package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/yungbote/vowbridge-backend/internal/domain/registry"
	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type StripeConfig struct {
	SecretKey     string        `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET"`
	Currency      string        `env:"STRIPE_CURRENCY" envDefault:"usd"`
	APIBaseURL    string        `env:"STRIPE_API_BASE_URL"`
	Timeout       time.Duration `env:"STRIPE_TIMEOUT" envDefault:"20s"`
	MaxRetries    int64         `env:"STRIPE_MAX_RETRIES" envDefault:"2"`
}

func StripeConfigFromEnv() (StripeConfig, error) {
	var cfg StripeConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse stripe env: %w", err)
	}
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.WebhookSecret = strings.TrimSpace(cfg.WebhookSecret)
	cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))
	return cfg, nil
}

func (c StripeConfig) Enabled() bool { return c.SecretKey != "" }

type stripeProvider struct {
	log     *logger.Logger
	cfg     StripeConfig
	intents *paymentintent.Client
}

func NewStripe(log *logger.Logger, cfg StripeConfig) (Provider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing STRIPE_SECRET_KEY")
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(cfg.MaxRetries),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/"); base != "" {
		backendCfg.URL = stripe.String(base)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	return &stripeProvider{
		log:     log.With("client", "StripeProvider"),
		cfg:     cfg,
		intents: &paymentintent.Client{B: backend, Key: cfg.SecretKey},
	}, nil
}

func (p *stripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	minor, err := ToMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = p.cfg.Currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctxutil.Default(ctx)
	if email := strings.TrimSpace(req.ReceiptEmail); email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		params.Description = stripe.String(d)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	pi, err := p.intents.New(params)
	if err != nil {
		p.log.Warn("stripe create payment intent failed", "error", err, "amount_minor", minor)
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (p *stripeProvider) GetIntent(ctx context.Context, id string) (*Intent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("payment intent id required")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctxutil.Default(ctx)
	pi, err := p.intents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get payment intent: %w", err)
	}
	return intentFromStripe(pi), nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	if p.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("missing STRIPE_WEBHOOK_SECRET")
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return decodeStripeEvent(evt, payload)
}

func decodeStripeEvent(evt stripe.Event, payload []byte) (*WebhookEvent, error) {
	out := &WebhookEvent{ID: evt.ID, Type: string(evt.Type), Payload: payload}
	if evt.Data == nil {
		return out, nil
	}
	switch evt.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentReference = pi.ID
		out.ContributionID = pi.Metadata[MetadataContributionID]
		if evt.Type == "payment_intent.succeeded" {
			out.Outcome = registry.OutcomeSucceeded
		} else {
			out.Outcome = registry.OutcomeFailed
		}
	case "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(evt.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			out.PaymentReference = ch.PaymentIntent.ID
		}
		out.ContributionID = ch.Metadata[MetadataContributionID]
		// Partial refunds leave the contribution completed.
		if ch.Refunded {
			out.Outcome = registry.OutcomeRefunded
		}
	}
	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	if pi == nil {
		return nil
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
