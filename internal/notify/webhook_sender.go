package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// WebhookConfig configures a WebhookSender.
type WebhookConfig struct {
	URL         string
	Timeout     time.Duration
	// MaxRetries counts attempts after the first; zero disables retries.
	MaxRetries  uint
	BaseBackoff time.Duration
}

// ApplyDefaults sets default values for any unset fields.
func (c *WebhookConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.BaseBackoff == 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
}

// WebhookSender POSTs notifications as JSON to a configured URL, retrying
// server errors with exponential backoff.
type WebhookSender struct {
	cfg    WebhookConfig
	client *resty.Client
}

var _ Sender = (*WebhookSender)(nil)

// NewWebhookSender creates a sender for cfg.URL.
func NewWebhookSender(cfg WebhookConfig) (*WebhookSender, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook URL is required")
	}
	cfg.ApplyDefaults()

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "membership-notify/1")

	return &WebhookSender{cfg: cfg, client: client}, nil
}

func (s *WebhookSender) Send(ctx context.Context, n *Notification) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.BaseBackoff

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("X-Invitation-ID", n.InvitationID.String()).
			SetBody(n).
			Post(s.cfg.URL)
		if err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("Webhook delivery failed")
			return struct{}{}, err
		}

		status := resp.StatusCode()
		switch {
		case status >= 500 || status == http.StatusTooManyRequests:
			log.Debug().Int("status", status).Int("attempt", attempt).Msg("Webhook delivery rejected, retrying")
			return struct{}{}, fmt.Errorf("webhook returned %d", status)
		case resp.IsError():
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook returned %d", status))
		}

		return struct{}{}, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(s.cfg.MaxRetries+1),
	)
	if err != nil {
		return fmt.Errorf("failed to deliver notification after %d attempts: %w", attempt, err)
	}

	return nil
}
