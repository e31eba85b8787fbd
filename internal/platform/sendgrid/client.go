package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/vowbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

const mailSendPath = "/v3/mail/send"

// Client delivers transactional mail (invitations and contribution receipts).
type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string        `env:"SENDGRID_API_KEY"`
	BaseURL          string        `env:"SENDGRID_BASE_URL" envDefault:"https://api.sendgrid.com"`
	DefaultFromEmail string        `env:"SENDGRID_FROM_EMAIL"`
	DefaultFromName  string        `env:"SENDGRID_FROM_NAME" envDefault:"Vowbridge"`
	Timeout          time.Duration `env:"SENDGRID_TIMEOUT" envDefault:"30s"`
	MaxRetries       int           `env:"SENDGRID_MAX_RETRIES" envDefault:"4"`
	// SandboxMode asks SendGrid to validate the request without delivering it.
	SandboxMode bool `env:"SENDGRID_SANDBOX_MODE"`
}

func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, fmt.Errorf("parse sendgrid env: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.DefaultFromEmail = strings.TrimSpace(cfg.DefaultFromEmail)
	cfg.DefaultFromName = strings.TrimSpace(cfg.DefaultFromName)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return cfg, nil
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:            log.With("client", "sendgrid"),
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		initialBackoff: time.Second,
	}, nil
}

type client struct {
	log            *logger.Logger
	cfg            Config
	httpClient     *http.Client
	initialBackoff time.Duration
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendEmailRequest is a single-recipient-list message. Categories and CustomArgs
// come back on SendGrid's event webhook so deliveries can be tied to a guest or gift.
type SendEmailRequest struct {
	From       EmailAddress
	ReplyTo    *EmailAddress
	To         []EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
	CustomArgs map[string]string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	ReplyTo          *EmailAddress     `json:"reply_to,omitempty"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
	MailSettings     *mailSettings     `json:"mail_settings,omitempty"`
}

type personalization struct {
	To         []EmailAddress    `json:"to"`
	CustomArgs map[string]string `json:"custom_args,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSettings struct {
	SandboxMode struct {
		Enable bool `json:"enable"`
	} `json:"sandbox_mode"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	wire, err := c.buildMessage(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: encode message: %w", err)
	}
	resp, err := c.postWithRetry(ctxutil.Default(ctx), body)
	if err != nil {
		return nil, err
	}
	return &SendEmailResult{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

func (c *client) buildMessage(req SendEmailRequest) (*mailSendRequest, error) {
	from := EmailAddress{Email: strings.TrimSpace(req.From.Email), Name: strings.TrimSpace(req.From.Name)}
	if from.Email == "" {
		from = EmailAddress{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName}
	}
	if from.Email == "" {
		return nil, fmt.Errorf("sendgrid: sender required (set SENDGRID_FROM_EMAIL)")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("sendgrid: at least one recipient required")
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, fmt.Errorf("sendgrid: subject required")
	}

	var content []mailContent
	if t := strings.TrimSpace(req.Text); t != "" {
		content = append(content, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(req.HTML); h != "" {
		content = append(content, mailContent{Type: "text/html", Value: h})
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("sendgrid: text or html body required")
	}

	msg := &mailSendRequest{
		Personalizations: []personalization{{To: req.To, CustomArgs: req.CustomArgs}},
		From:             from,
		ReplyTo:          req.ReplyTo,
		Subject:          subject,
		Content:          content,
		Categories:       req.Categories,
	}
	if c.cfg.SandboxMode {
		msg.MailSettings = &mailSettings{}
		msg.MailSettings.SandboxMode.Enable = true
	}
	return msg, nil
}

func (c *client) postWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	backoff := c.initialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := c.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) || attempt >= c.cfg.MaxRetries {
			return nil, err
		}

		wait := retryDelay(resp, backoff)
		c.log.Warn("sendgrid send retrying", "attempt", attempt+1, "sleep", wait.String(), "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

func (c *client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+mailSendPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	if err != nil {
		return resp, err
	}
	if resp.StatusCode/100 != 2 {
		return resp, newHTTPError(resp.StatusCode, raw)
	}
	return resp, nil
}

// HTTPError is a non-2xx answer from the mail API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func newHTTPError(status int, raw []byte) *HTTPError {
	var parsed struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &parsed) == nil && len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
		msg = parsed.Errors[0].Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	return &HTTPError{StatusCode: status, Message: msg}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Message)
}
