// Package mailer sends transactional notification email through the SendGrid
// v3 mail send API. Sending is best-effort: failures are logged by the caller
// and never surfaced to the originating request, and there are no retries.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client sends a single email.
type Client interface {
	Send(ctx context.Context, msg Message) error
	Enabled() bool
}

// Message is an outbound email.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

// Config holds the SendGrid connection settings.
//
// OverrideRecipient is the testing-mode gate: when set together with
// AdminEmail, every message is redirected to AdminEmail regardless of the
// resolved recipient.
type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Timeout   time.Duration

	AdminEmail        string
	OverrideRecipient bool
}

// New creates a mail client. An empty API key yields a disabled client.
func New(cfg Config, log *zap.Logger) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type client struct {
	cfg        Config
	log        *zap.Logger
	httpClient *http.Client
}

func (c *client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// SendGrid mail send wire types, reduced to the fields we use.
type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, msg Message) error {
	if !c.Enabled() {
		return fmt.Errorf("mailer disabled: no API key configured")
	}

	to := emailAddress{Email: msg.ToEmail, Name: msg.ToName}
	if c.cfg.OverrideRecipient {
		if c.cfg.AdminEmail == "" {
			return fmt.Errorf("NOTIFY_OVERRIDE_EMAIL set but ADMIN_EMAIL is empty")
		}
		c.log.Info("Redirecting notification to admin address",
			zap.String("original_recipient", msg.ToEmail))
		to = emailAddress{Email: c.cfg.AdminEmail}
	}

	payload, err := json.Marshal(mailSendRequest{
		Personalizations: []personalization{{To: []emailAddress{to}}},
		From:             emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/html", Value: msg.HTML}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v3/mail/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail API returned HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
