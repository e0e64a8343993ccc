package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"plp-monitor/internal/config"
)

// fakeMessageCreator captures CreateMessage calls.
type fakeMessageCreator struct {
	params []*twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
}

func (f *fakeMessageCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	return f.resp, f.err
}

func strPtr(s string) *string { return &s }

func newTestSMSConfig() config.SMSConfig {
	return config.SMSConfig{
		AccountSID: "AC00000000000000000000000000000000",
		AuthToken:  "token",
		From:       "+15550000001",
		To:         "+15550000002",
		Prefix:     "MW Alert",
	}
}

func TestSMSNotifier_Send(t *testing.T) {
	api := &fakeMessageCreator{
		resp: &twilioApi.ApiV2010Message{Sid: strPtr("SM123"), Status: strPtr("queued")},
	}
	n := NewSMSNotifier(newTestSMSConfig(), zerolog.Nop(), WithMessageCreator(api))
	assert.Equal(t, "sms", n.Name())

	sent, err := n.SendMessage(context.Background(), "MW Alert: 1 page(s) <8 cats\nmens: 5")
	require.NoError(t, err)
	assert.Equal(t, "SM123", sent.SID)
	assert.Equal(t, "queued", sent.Status)
	assert.Equal(t, "+15550000001", sent.From)
	assert.Equal(t, "+15550000002", sent.To)

	require.Len(t, api.params, 1)
	p := api.params[0]
	require.NotNil(t, p.Body)
	require.NotNil(t, p.From)
	require.NotNil(t, p.To)
	assert.Equal(t, "MW Alert: 1 page(s) <8 cats\nmens: 5", *p.Body)
	assert.Equal(t, "+15550000001", *p.From)
	assert.Equal(t, "+15550000002", *p.To)
}

func TestSMSNotifier_MissingConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.SMSConfig)
	}{
		{"account sid", func(c *config.SMSConfig) { c.AccountSID = "" }},
		{"auth token", func(c *config.SMSConfig) { c.AuthToken = "" }},
		{"from", func(c *config.SMSConfig) { c.From = "" }},
		{"to", func(c *config.SMSConfig) { c.To = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestSMSConfig()
			tt.modify(&cfg)
			api := &fakeMessageCreator{}
			n := NewSMSNotifier(cfg, zerolog.Nop(), WithMessageCreator(api))

			err := n.Send(context.Background(), "msg")
			assert.ErrorIs(t, err, ErrNotConfigured)
			assert.Empty(t, api.params, "provider must not be called")
		})
	}
}

func TestSMSNotifier_ProviderError(t *testing.T) {
	api := &fakeMessageCreator{err: errors.New("Status: 401 - ApiError 20003: Authenticate")}
	n := NewSMSNotifier(newTestSMSConfig(), zerolog.Nop(), WithMessageCreator(api))

	err := n.Send(context.Background(), "msg")
	require.Error(t, err)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "twilio", pe.Provider)
	assert.Contains(t, err.Error(), "20003")
}

func TestNewSMSNotifier_BuildsClient(t *testing.T) {
	n := NewSMSNotifier(newTestSMSConfig(), zerolog.Nop())
	assert.NotNil(t, n.api)

	unconfigured := NewSMSNotifier(config.SMSConfig{}, zerolog.Nop())
	assert.Nil(t, unconfigured.api)
}
