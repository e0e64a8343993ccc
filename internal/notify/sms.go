package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"plp-monitor/internal/config"
)

// MessageCreator is the part of the Twilio API used to send SMS.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SentMessage describes a message accepted by Twilio.
type SentMessage struct {
	SID    string
	Status string
	From   string
	To     string
}

// SMSNotifier sends messages through Twilio.
type SMSNotifier struct {
	cfg    config.SMSConfig
	api    MessageCreator
	logger zerolog.Logger
}

// SMSOption is a functional option for configuring an SMSNotifier.
type SMSOption func(*SMSNotifier)

// WithMessageCreator replaces the Twilio REST client.
func WithMessageCreator(api MessageCreator) SMSOption {
	return func(n *SMSNotifier) {
		n.api = api
	}
}

// NewSMSNotifier creates an SMSNotifier. A Twilio REST client is built from
// the credentials unless one is supplied with WithMessageCreator.
func NewSMSNotifier(cfg config.SMSConfig, logger zerolog.Logger, opts ...SMSOption) *SMSNotifier {
	n := &SMSNotifier{
		cfg:    cfg,
		logger: logger.With().Str("component", "sms").Logger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.api == nil && cfg.IsConfigured() {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
		n.api = client.Api
	}
	return n
}

// Name returns "sms".
func (n *SMSNotifier) Name() string {
	return "sms"
}

// Send delivers message as a single SMS.
func (n *SMSNotifier) Send(ctx context.Context, message string) error {
	_, err := n.SendMessage(ctx, message)
	return err
}

// SendMessage delivers message and returns what Twilio reported back.
func (n *SMSNotifier) SendMessage(ctx context.Context, message string) (*SentMessage, error) {
	if missing := n.cfg.Missing(); len(missing) > 0 {
		n.logger.Error().Strs("missing", missing).Msg("twilio credentials not configured")
		return nil, fmt.Errorf("missing %s: %w", strings.Join(missing, ", "), ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(message)
	params.SetFrom(n.cfg.From)
	params.SetTo(n.cfg.To)

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		n.logger.Error().Err(err).Str("to", n.cfg.To).Msg("failed to send SMS")
		return nil, &ProviderError{Provider: "twilio", Err: err}
	}

	sent := &SentMessage{From: n.cfg.From, To: n.cfg.To}
	if resp != nil {
		sent.SID = deref(resp.Sid)
		sent.Status = deref(resp.Status)
		if from := deref(resp.From); from != "" {
			sent.From = from
		}
		if to := deref(resp.To); to != "" {
			sent.To = to
		}
	}

	n.logger.Info().Str("sid", sent.SID).Str("status", sent.Status).Msg("SMS sent")
	return sent, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
