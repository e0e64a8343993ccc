package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plp-monitor/internal/model"
)

func TestBuildMessage(t *testing.T) {
	mens := model.NewTarget("https://www.example.com/eu/mens/")
	ski := model.NewTarget("https://www.example.com/eu/ski/")
	kids := model.NewTarget("https://www.example.com/eu/kids/")

	issues := []*model.Issue{
		model.NewBelowMinimumIssue(mens, 5, 8),
		model.NewFetchIssue(ski, true, errors.New("context deadline exceeded")),
		model.NewFetchIssue(kids, false, errors.New("net::ERR_CONNECTION_RESET")),
	}

	got := BuildMessage("MW Alert", 8, issues)
	want := "MW Alert: 3 page(s) <8 cats\nmens: 5\nski: Timeout\nkids: Error"
	assert.Equal(t, want, got)
}

func TestBuildMessage_NoPrefix(t *testing.T) {
	issues := []*model.Issue{
		model.NewBelowMinimumIssue(model.NewTarget("https://www.example.com/eu/mens/"), 0, 8),
		nil,
	}

	assert.Equal(t, "2 page(s) <8 cats\nmens: 0", BuildMessage("", 8, issues))
}

// fakeNotifier records messages and returns a fixed error.
type fakeNotifier struct {
	name     string
	err      error
	messages []string
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

func TestMulti_Send(t *testing.T) {
	ok := &fakeNotifier{name: "a"}
	failing := &fakeNotifier{name: "b", err: &ProviderError{Provider: "b", Err: errors.New("boom")}}
	last := &fakeNotifier{name: "c"}

	m := NewMulti(ok, nil, failing, last)
	assert.Equal(t, "a+b+c", m.Name())

	err := m.Send(context.Background(), "hello")
	require.Error(t, err)

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "b: b: boom")

	assert.Equal(t, []string{"hello"}, ok.messages)
	assert.Equal(t, []string{"hello"}, failing.messages)
	assert.Equal(t, []string{"hello"}, last.messages, "a failing channel must not stop later ones")
}

func TestMulti_SendAllSucceed(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	assert.NoError(t, NewMulti(a).Send(context.Background(), "x"))
}

func TestMulti_SendNoChannels(t *testing.T) {
	err := NewMulti().Send(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
