package model

import (
	"time"

	"github.com/google/uuid"
)

// TargetStatus is the outcome of checking a single target.
type TargetStatus string

const (
	TargetStatusOK           TargetStatus = "ok"            // At or above the minimum
	TargetStatusBelowMinimum TargetStatus = "below_minimum" // Newly below the minimum, alert raised
	TargetStatusSuppressed   TargetStatus = "suppressed"    // Still below the minimum, already alerted
	TargetStatusRecovered    TargetStatus = "recovered"     // Back at or above the minimum after an alert
	TargetStatusFailed       TargetStatus = "failed"        // Page could not be fetched
)

// TargetResult is the result of checking a single target.
type TargetResult struct {
	Target    Target        `json:"target"`
	Count     int           `json:"count"`
	Status    TargetStatus  `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	CheckedAt time.Time     `json:"checked_at"`
}

// RunSummary provides aggregated statistics about a run.
type RunSummary struct {
	TotalTargets int `json:"total_targets"`
	OK           int `json:"ok"`
	BelowMinimum int `json:"below_minimum"`
	Suppressed   int `json:"suppressed"`
	Recovered    int `json:"recovered"`
	Failed       int `json:"failed"`
}

// NewRunSummary creates a RunSummary from target results.
func NewRunSummary(results []*TargetResult) *RunSummary {
	summary := &RunSummary{}
	for _, r := range results {
		if r == nil {
			continue
		}
		summary.TotalTargets++
		switch r.Status {
		case TargetStatusOK:
			summary.OK++
		case TargetStatusBelowMinimum:
			summary.BelowMinimum++
		case TargetStatusSuppressed:
			summary.Suppressed++
		case TargetStatusRecovered:
			summary.Recovered++
		case TargetStatusFailed:
			summary.Failed++
		}
	}
	return summary
}

// RunResult is the report of one monitoring run.
type RunResult struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Duration   time.Duration   `json:"duration"`
	Selector   string          `json:"selector"`
	Minimum    int             `json:"minimum"`
	Targets    []*TargetResult `json:"targets"`
	Issues     []*Issue        `json:"issues"`
	Recoveries []*Recovery     `json:"recoveries"`
	Summary    *RunSummary     `json:"summary"`

	Message     string `json:"message,omitempty"`      // Notification body, empty when nothing was sent
	Notified    bool   `json:"notified"`               // True when every channel accepted the message
	NotifyError string `json:"notify_error,omitempty"` // Notification failure, if any
}

// NewRunResult creates an empty RunResult with a fresh run id.
func NewRunResult(startedAt time.Time, selector string, minimum int) *RunResult {
	return &RunResult{
		RunID:      uuid.NewString(),
		StartedAt:  startedAt,
		Selector:   selector,
		Minimum:    minimum,
		Targets:    make([]*TargetResult, 0),
		Issues:     make([]*Issue, 0),
		Recoveries: make([]*Recovery, 0),
	}
}

// AddTarget appends a target result.
func (r *RunResult) AddTarget(result *TargetResult) {
	if result != nil {
		r.Targets = append(r.Targets, result)
	}
}

// AddIssue appends an issue.
func (r *RunResult) AddIssue(issue *Issue) {
	if issue != nil {
		r.Issues = append(r.Issues, issue)
	}
}

// AddRecovery appends a recovery.
func (r *RunResult) AddRecovery(recovery *Recovery) {
	if recovery != nil {
		r.Recoveries = append(r.Recoveries, recovery)
	}
}

// HasIssues reports whether the run found at least one issue.
func (r *RunResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// ExitCode returns the process exit status for this run: 1 if any issue
// was found, 0 otherwise. Notification outcome does not affect it.
func (r *RunResult) ExitCode() int {
	if r.HasIssues() {
		return 1
	}
	return 0
}

// Finalize records the end time and computes the summary.
func (r *RunResult) Finalize(finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.Duration = finishedAt.Sub(r.StartedAt)
	r.Summary = NewRunSummary(r.Targets)
}
