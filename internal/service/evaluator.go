// Package service provides the monitoring workflow: threshold evaluation
// and the run loop that ties fetching, counting, state and notification
// together.
package service

import (
	"time"

	"github.com/rs/zerolog"

	"plp-monitor/internal/browser"
	"plp-monitor/internal/model"
)

// legacyTimestampLayout matches timestamps written without a zone offset.
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

// Evaluation is the outcome of evaluating one observation.
type Evaluation struct {
	Status   model.TargetStatus
	Record   *model.AlertRecord // Record to persist, nil when the target has none
	Changed  bool               // True when Record differs from the prior record
	Issue    *model.Issue       // Set when the target must be reported
	Recovery *model.Recovery    // Set when the target left the alert state
}

// Evaluator compares sub-category counts against the minimum and drives the
// per-URL alert state: alerted on the first breach, silent while the breach
// lasts, and cleared with a recovery once the count is back.
type Evaluator struct {
	minimum      int
	realertAfter time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// EvaluatorOption is a functional option for configuring an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.now = now
	}
}

// WithRealertAfter re-raises an issue for a target that has stayed below
// the minimum for at least d since its record was written. Zero disables
// reminders.
func WithRealertAfter(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		e.realertAfter = d
	}
}

// NewEvaluator creates an Evaluator for the given minimum count.
func NewEvaluator(minimum int, logger zerolog.Logger, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		minimum: minimum,
		now:     time.Now,
		logger:  logger.With().Str("component", "evaluator").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Minimum returns the configured minimum count.
func (e *Evaluator) Minimum() int {
	return e.minimum
}

// Evaluate applies the alert policy to one observation:
//   - a failed fetch is reported but never touches the record;
//   - a count at or above the minimum clears an alerted record with a recovery;
//   - a count below the minimum raises an issue unless already alerted.
func (e *Evaluator) Evaluate(target model.Target, obs model.Observation, prior *model.AlertRecord) *Evaluation {
	if obs.Failed() {
		e.logger.Debug().Str("url", target.URL).Err(obs.Err).Msg("fetch failed, state unchanged")
		return &Evaluation{
			Status: model.TargetStatusFailed,
			Record: prior,
			Issue:  model.NewFetchIssue(target, browser.IsTimeout(obs.Err), obs.Err),
		}
	}

	alerted := prior.IsAlerted()

	if obs.Count >= e.minimum {
		if !alerted {
			return &Evaluation{Status: model.TargetStatusOK, Record: prior}
		}
		e.logger.Info().Str("url", target.URL).Int("count", obs.Count).Msg("target recovered")
		return &Evaluation{
			Status:   model.TargetStatusRecovered,
			Record:   e.newRecord(false, obs.Count),
			Changed:  true,
			Recovery: &model.Recovery{Target: target, Count: obs.Count},
		}
	}

	if alerted && !e.reminderDue(prior) {
		e.logger.Debug().Str("url", target.URL).Int("count", obs.Count).Msg("already alerted, suppressing")
		return &Evaluation{Status: model.TargetStatusSuppressed, Record: prior}
	}

	e.logger.Info().
		Str("url", target.URL).
		Int("count", obs.Count).
		Int("minimum", e.minimum).
		Bool("reminder", alerted).
		Msg("target below minimum")
	return &Evaluation{
		Status:  model.TargetStatusBelowMinimum,
		Record:  e.newRecord(true, obs.Count),
		Changed: true,
		Issue:   model.NewBelowMinimumIssue(target, obs.Count, e.minimum),
	}
}

// newRecord builds a record stamped with the current time.
func (e *Evaluator) newRecord(alerted bool, count int) *model.AlertRecord {
	return &model.AlertRecord{
		Alerted:   alerted,
		Timestamp: e.now().Format(time.RFC3339),
		Count:     count,
	}
}

// reminderDue reports whether an alerted record is old enough to alert again.
func (e *Evaluator) reminderDue(rec *model.AlertRecord) bool {
	if e.realertAfter <= 0 {
		return false
	}
	now := e.now()
	written, ok := parseTimestamp(rec.Timestamp, now.Location())
	if !ok {
		// Unreadable timestamps are replaced on the next write.
		return true
	}
	return now.Sub(written) >= e.realertAfter
}

// parseTimestamp accepts RFC 3339 and zone-less ISO-8601 timestamps.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
