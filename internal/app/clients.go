package app

import (
	"context"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	vendorsmod "github.com/yungbote/vowbridge-backend/internal/modules/vendors"
	"github.com/yungbote/vowbridge-backend/internal/platform/gcp"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
	"github.com/yungbote/vowbridge-backend/internal/platform/payments"
	"github.com/yungbote/vowbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/vowbridge-backend/internal/realtime/bus"
	"github.com/yungbote/vowbridge-backend/internal/temporalx"
)

// Clients holds outbound integrations. Optional ones are nil (or Disabled) when their
// configuration is absent so the API still boots for local development.
type Clients struct {
	Payments  payments.Provider
	Mail      sendgrid.Client
	Media     vendorsmod.MediaStore
	Moderator vendorsmod.Moderator
	Bus       bus.Bus

	Temporal    temporalsdkclient.Client
	TemporalCfg temporalx.Config

	closers []func() error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Payments
	stripeCfg, err := payments.StripeConfigFromEnv()
	if err != nil {
		return out, err
	}
	if stripeCfg.Enabled() {
		p, err := payments.NewStripe(log, stripeCfg)
		if err != nil {
			return out, fmt.Errorf("init stripe: %w", err)
		}
		out.Payments = p
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; contributions will answer 502")
		out.Payments = payments.Disabled{}
	}

	// Email
	mailCfg, err := sendgrid.ConfigFromEnv()
	if err != nil {
		return out, err
	}
	if mailCfg.APIKey != "" {
		m, err := sendgrid.New(log, mailCfg)
		if err != nil {
			return out, fmt.Errorf("init sendgrid: %w", err)
		}
		out.Mail = m
	} else {
		log.Warn("SENDGRID_API_KEY not set; invitations and receipts disabled")
	}

	// Media
	media, closeMedia, err := resolveMediaStore(log, cfg.Media)
	if err != nil {
		return out, err
	}
	out.Media = media
	if closeMedia != nil {
		out.closers = append(out.closers, closeMedia)
	}

	// Moderation
	if cfg.Media.Moderation {
		m, err := gcp.NewModerator(log)
		if err != nil {
			return out, fmt.Errorf("init vision moderator: %w", err)
		}
		out.Moderator = m
		if c, ok := m.(interface{ Close() error }); ok {
			out.closers = append(out.closers, c.Close)
		}
	}

	// Realtime bus
	b, err := bus.New(log)
	if err != nil {
		return out, fmt.Errorf("init realtime bus: %w", err)
	}
	out.Bus = b
	out.closers = append(out.closers, b.Close)

	// Temporal
	tcfg, err := temporalx.LoadConfig()
	if err != nil {
		return out, err
	}
	out.TemporalCfg = tcfg
	tc, err := temporalx.NewClient(ctx, log, tcfg)
	if err != nil {
		return out, fmt.Errorf("init temporal: %w", err)
	}
	if tc != nil {
		out.Temporal = tc
		out.closers = append(out.closers, func() error { tc.Close(); return nil })
	}
	return out, nil
}

// Close releases clients in reverse order of creation.
func (c Clients) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}
