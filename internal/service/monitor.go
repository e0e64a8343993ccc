package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"plp-monitor/internal/model"
	"plp-monitor/internal/notify"
)

const separator = "============================================================"

// PageFetcher renders a page and returns its markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ElementCounter counts selector matches in page markup.
type ElementCounter interface {
	Count(html string) int
	Selector() string
}

// StateStore loads and saves the alert state snapshot.
type StateStore interface {
	Load() (model.AlertState, error)
	Save(state model.AlertState) error
}

// Monitor runs one monitoring pass over a list of targets.
type Monitor struct {
	fetcher   PageFetcher
	counter   ElementCounter
	evaluator *Evaluator
	store     StateStore
	notifier  notify.Notifier
	prefix    string
	out       io.Writer
	now       func() time.Time
	logger    zerolog.Logger
}

// MonitorOption is a functional option for configuring a Monitor.
type MonitorOption func(*Monitor)

// WithNotifier sets the channel used for alerts. Without one, alerts are
// printed but not sent.
func WithNotifier(n notify.Notifier) MonitorOption {
	return func(m *Monitor) {
		m.notifier = n
	}
}

// WithMessagePrefix sets the alert header prefix, e.g. "MW Alert".
func WithMessagePrefix(prefix string) MonitorOption {
	return func(m *Monitor) {
		m.prefix = prefix
	}
}

// WithOutput sets where the human-readable run log is written.
func WithOutput(w io.Writer) MonitorOption {
	return func(m *Monitor) {
		m.out = w
	}
}

// WithMonitorClock sets the time source for run timing.
func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor creates a Monitor with the given dependencies.
func NewMonitor(
	fetcher PageFetcher,
	counter ElementCounter,
	evaluator *Evaluator,
	store StateStore,
	logger zerolog.Logger,
	opts ...MonitorOption,
) *Monitor {
	m := &Monitor{
		fetcher:   fetcher,
		counter:   counter,
		evaluator: evaluator,
		store:     store,
		out:       io.Discard,
		now:       time.Now,
		logger:    logger.With().Str("component", "monitor").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes one monitoring pass:
// 1. Loads the alert state
// 2. Fetches, counts and evaluates every target in order
// 3. Sends one aggregated alert when new issues were found
// 4. Saves the alert state
//
// Fetch and notification failures are recorded in the result, not
// returned. An error is returned only when the state cannot be loaded or
// saved, or when ctx is cancelled mid-run. An interrupted run still sends
// the alert for the issues found so far before saving, so no record is
// persisted as alerted without a send attempt.
func (m *Monitor) Run(ctx context.Context, targets []model.Target) (*model.RunResult, error) {
	startTime := m.now()
	result := model.NewRunResult(startTime, m.counter.Selector(), m.evaluator.Minimum())
	logger := m.logger.With().Str("run_id", result.RunID).Logger()

	logger.Info().
		Int("targets", len(targets)).
		Int("minimum", result.Minimum).
		Str("selector", result.Selector).
		Msg("starting run")
	m.printBanner(startTime)

	state, err := m.store.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load alert state")
		return nil, fmt.Errorf("failed to load alert state: %w", err)
	}

	var runErr error
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Msg("run interrupted")
			runErr = fmt.Errorf("run interrupted: %w", err)
			break
		}
		if !m.checkTarget(ctx, target, state, result) {
			logger.Warn().Err(ctx.Err()).Str("url", target.URL).Msg("run interrupted during fetch")
			runErr = fmt.Errorf("run interrupted: %w", ctx.Err())
			break
		}
	}

	if result.HasIssues() {
		m.sendAlert(context.WithoutCancel(ctx), result, logger)
	}
	m.printRecoveries(result)

	if err := m.store.Save(state); err != nil {
		logger.Error().Err(err).Msg("failed to save alert state")
		runErr = errors.Join(runErr, fmt.Errorf("failed to save alert state: %w", err))
	}

	result.Finalize(m.now())

	logger.Info().
		Int("total_targets", result.Summary.TotalTargets).
		Int("ok", result.Summary.OK).
		Int("below_minimum", result.Summary.BelowMinimum).
		Int("suppressed", result.Summary.Suppressed).
		Int("recovered", result.Summary.Recovered).
		Int("failed", result.Summary.Failed).
		Int("issues", len(result.Issues)).
		Bool("notified", result.Notified).
		Dur("duration", result.Duration).
		Msg("run completed")

	fmt.Fprintf(m.out, "\nMonitoring complete: %d page(s) checked, %d issue(s), %d recovery(ies).\n\n",
		result.Summary.TotalTargets, len(result.Issues), len(result.Recoveries))

	return result, runErr
}

// checkTarget fetches, counts and evaluates one target, updating state and
// result in place. It returns false, leaving state and result untouched,
// when the fetch failed because ctx was cancelled.
func (m *Monitor) checkTarget(ctx context.Context, target model.Target, state model.AlertState, result *model.RunResult) bool {
	fmt.Fprintf(m.out, "Checking: %s (%s)\n", target.Label, target.URL)

	checkStart := m.now()
	obs := m.observe(ctx, target)
	if obs.Err != nil && ctx.Err() != nil {
		fmt.Fprintln(m.out, "  ✗ Interrupted")
		return false
	}
	eval := m.evaluator.Evaluate(target, obs, state.Get(target.URL))

	if eval.Changed {
		state[target.URL] = eval.Record
	}
	result.AddIssue(eval.Issue)
	result.AddRecovery(eval.Recovery)

	tr := &model.TargetResult{
		Target:    target,
		Count:     obs.Count,
		Status:    eval.Status,
		CheckedAt: checkStart,
		Duration:  m.now().Sub(checkStart),
	}
	if obs.Err != nil {
		tr.Error = obs.Err.Error()
	}
	result.AddTarget(tr)

	m.printTarget(eval, obs, result.Minimum)
	return true
}

// observe fetches the target and counts matching elements.
func (m *Monitor) observe(ctx context.Context, target model.Target) model.Observation {
	html, err := m.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		m.logger.Warn().Err(err).Str("url", target.URL).Msg("fetch failed")
		return model.Observation{Err: err}
	}

	count := m.counter.Count(html)
	m.logger.Debug().Str("url", target.URL).Int("count", count).Msg("page counted")
	return model.Observation{Count: count}
}

// sendAlert builds the aggregated alert, prints it and hands it to the
// notifier. Failures are logged and recorded, never returned.
func (m *Monitor) sendAlert(ctx context.Context, result *model.RunResult, logger zerolog.Logger) {
	message := notify.BuildMessage(m.prefix, result.Minimum, result.Issues)
	result.Message = message

	fmt.Fprintf(m.out, "\n%s\nALERTS:\n", separator)
	for _, issue := range result.Issues {
		fmt.Fprintf(m.out, "  ⚠ %s\n", issue)
	}
	fmt.Fprintf(m.out, "\nSENDING ALERT:\n%s\n%s\n\n", message, separator)

	if m.notifier == nil {
		logger.Warn().Msg("notifications disabled, alert not sent")
		fmt.Fprintln(m.out, "Notifications disabled: alert not sent")
		return
	}

	if err := m.notifier.Send(ctx, message); err != nil {
		result.NotifyError = err.Error()
		logger.Error().Err(err).Str("channel", m.notifier.Name()).Msg("failed to send alert")
		if errors.Is(err, notify.ErrNotConfigured) {
			fmt.Fprintf(m.out, "ERROR: %s not configured: %v\n", m.notifier.Name(), err)
		} else {
			fmt.Fprintf(m.out, "ERROR sending alert: %v\n", err)
		}
		return
	}

	result.Notified = true
	logger.Info().Str("channel", m.notifier.Name()).Int("issues", len(result.Issues)).Msg("alert sent")
	fmt.Fprintf(m.out, "✓ Alert sent via %s\n", m.notifier.Name())
}

// printBanner writes the run header.
func (m *Monitor) printBanner(start time.Time) {
	fmt.Fprintf(m.out, "\n%s\n", separator)
	fmt.Fprintln(m.out, "PLP Monitor")
	fmt.Fprintf(m.out, "Run time: %s\n", start.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(m.out, "%s\n\n", separator)
}

// printTarget writes the per-target result lines.
func (m *Monitor) printTarget(eval *Evaluation, obs model.Observation, minimum int) {
	if eval.Status == model.TargetStatusFailed {
		fmt.Fprintf(m.out, "  ✗ ERROR: %s\n", eval.Issue.Description())
		return
	}

	fmt.Fprintf(m.out, "  Found %d subcategories\n", obs.Count)
	switch eval.Status {
	case model.TargetStatusBelowMinimum:
		fmt.Fprintf(m.out, "  ⚠ WARNING: Below minimum (%d)\n", minimum)
	case model.TargetStatusSuppressed:
		fmt.Fprintf(m.out, "  ⚠ WARNING: Below minimum (%d)\n", minimum)
		fmt.Fprintln(m.out, "  (Already alerted previously)")
	default:
		fmt.Fprintln(m.out, "  ✓ OK")
	}
}

// printRecoveries writes the recoveries block. Recoveries are never sent.
func (m *Monitor) printRecoveries(result *model.RunResult) {
	if len(result.Recoveries) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\nRECOVERIES DETECTED:\n", separator)
	for _, r := range result.Recoveries {
		fmt.Fprintf(&sb, "  ✓ %s\n", r)
	}
	fmt.Fprintf(&sb, "%s\n", separator)
	fmt.Fprint(m.out, sb.String())
}
