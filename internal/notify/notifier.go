// Package notify delivers alert messages to operators.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"plp-monitor/internal/model"
)

// ErrNotConfigured is returned when a channel lacks required settings.
var ErrNotConfigured = errors.New("notification channel not configured")

// ProviderError wraps a failure reported by a messaging provider.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Notifier sends a text message over one channel.
type Notifier interface {
	// Name returns the channel identifier (e.g., "sms", "webhook").
	Name() string

	// Send delivers message. It returns ErrNotConfigured (possibly
	// wrapped) when the channel cannot be used, or a *ProviderError when
	// the provider rejects the request.
	Send(ctx context.Context, message string) error
}

// BuildMessage builds the alert body for a run's issues: a header line
// "<prefix>: <N> page(s) <<minimum> cats" followed by one short line per
// issue. An empty prefix drops the "<prefix>: " part.
func BuildMessage(prefix string, minimum int, issues []*model.Issue) string {
	var sb strings.Builder
	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%d page(s) <%d cats", len(issues), minimum)

	for _, issue := range issues {
		if issue == nil {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(issue.Short())
	}
	return sb.String()
}

// Multi sends each message to every channel in order.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a Multi over the given channels, skipping nil entries.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Name returns the joined channel names.
func (m *Multi) Name() string {
	names := make([]string, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		names = append(names, n.Name())
	}
	return strings.Join(names, "+")
}

// Send delivers message through every channel and joins their errors.
// A failing channel does not stop the others.
func (m *Multi) Send(ctx context.Context, message string) error {
	if len(m.notifiers) == 0 {
		return fmt.Errorf("no channels: %w", ErrNotConfigured)
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Send(ctx, message); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
