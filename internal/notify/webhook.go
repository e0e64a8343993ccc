package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"plp-monitor/internal/config"
)

// webhookPayload is the body accepted by Slack-compatible incoming webhooks.
type webhookPayload struct {
	Text string `json:"text"`
}

// WebhookNotifier posts messages to a chat incoming webhook.
type WebhookNotifier struct {
	url        string
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewWebhookNotifier creates a WebhookNotifier. Server errors and
// connection failures are retried cfg.MaxRetries times with backoff.
// The configured default is zero, so a single attempt is made.
func NewWebhookNotifier(cfg config.WebhookConfig, logger zerolog.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	delay := cfg.RetryDelay
	if delay == 0 {
		delay = time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(delay).
		SetRetryMaxWaitTime(delay * 8).
		AddRetryCondition(retryCondition)

	return &WebhookNotifier{
		url:        cfg.URL,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "webhook").Logger(),
	}
}

// retryCondition retries on transport errors and 5xx responses only.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= 500
}

// Name returns "webhook".
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// Send posts message as {"text": message}.
func (n *WebhookNotifier) Send(ctx context.Context, message string) error {
	if n.url == "" {
		return fmt.Errorf("webhook url: %w", ErrNotConfigured)
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(webhookPayload{Text: message}).
		Post(n.url)
	if err != nil {
		n.logger.Error().Err(err).Msg("failed to post webhook")
		return &ProviderError{Provider: "webhook", Err: err}
	}

	if resp.StatusCode() >= 400 {
		n.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("body", string(resp.Body())).
			Msg("webhook returned error status")
		return &ProviderError{
			Provider: "webhook",
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode(), string(resp.Body())),
		}
	}

	n.logger.Info().Int("status_code", resp.StatusCode()).Msg("webhook delivered")
	return nil
}
