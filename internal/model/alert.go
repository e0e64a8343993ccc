package model

import (
	"fmt"
	"sort"
	"strings"
)

// AlertRecord is the persisted alert state of a single URL.
// A record only exists once a URL has breached the minimum at least once.
type AlertRecord struct {
	Alerted   bool   `json:"alerted"`   // True while the URL is below the minimum
	Timestamp string `json:"timestamp"` // ISO-8601 time the record was written
	Count     int    `json:"count"`     // Count observed when the record was written
}

// AlertState maps URL to its alert record.
type AlertState map[string]*AlertRecord

// NewAlertState creates an empty AlertState.
func NewAlertState() AlertState {
	return make(AlertState)
}

// Get returns the record for url, or nil if none exists.
func (s AlertState) Get(url string) *AlertRecord {
	if s == nil {
		return nil
	}
	return s[url]
}

// IsAlerted reports whether the record is currently in alert.
// A nil record is not alerted.
func (r *AlertRecord) IsAlerted() bool {
	return r != nil && r.Alerted
}

// URLs returns the URLs in the state in sorted order.
func (s AlertState) URLs() []string {
	urls := make([]string, 0, len(s))
	for u := range s {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// IssueKind classifies why a target was reported.
type IssueKind string

const (
	IssueBelowMinimum IssueKind = "below_minimum" // Count under the minimum
	IssueTimeout      IssueKind = "timeout"       // Page or selector wait timed out
	IssueFetchError   IssueKind = "fetch_error"   // Any other fetch failure
)

// Issue is a problem detected for a target during a run.
type Issue struct {
	Target  Target    `json:"target"`
	Kind    IssueKind `json:"kind"`
	Count   int       `json:"count"`
	Minimum int       `json:"minimum"`
	Detail  string    `json:"detail"` // Error text for fetch failures
}

// NewBelowMinimumIssue creates an issue for a count under the minimum.
func NewBelowMinimumIssue(target Target, count, minimum int) *Issue {
	return &Issue{
		Target:  target,
		Kind:    IssueBelowMinimum,
		Count:   count,
		Minimum: minimum,
	}
}

// NewFetchIssue creates an issue for a failed fetch.
func NewFetchIssue(target Target, timeout bool, err error) *Issue {
	kind := IssueFetchError
	if timeout {
		kind = IssueTimeout
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &Issue{Target: target, Kind: kind, Detail: detail}
}

// Description returns the issue text without the label prefix.
func (i *Issue) Description() string {
	switch i.Kind {
	case IssueBelowMinimum:
		return fmt.Sprintf("%d subcategories (minimum: %d)", i.Count, i.Minimum)
	case IssueTimeout:
		return "Timeout loading page: " + i.Detail
	default:
		return "Error: " + i.Detail
	}
}

// String renders the issue as "<label>: <description>".
func (i *Issue) String() string {
	return i.Target.Label + ": " + i.Description()
}

// Short renders the issue as "<label>: <first word of description>",
// which keeps SMS bodies within a single segment.
func (i *Issue) Short() string {
	fields := strings.Fields(i.Description())
	if len(fields) == 0 {
		return i.Target.Label + ":"
	}
	return i.Target.Label + ": " + strings.TrimSuffix(fields[0], ":")
}

// Recovery records a target returning to or above the minimum.
type Recovery struct {
	Target Target `json:"target"`
	Count  int    `json:"count"`
}

// String renders the recovery as "<label>: Recovered to <n> subcategories".
func (r *Recovery) String() string {
	return fmt.Sprintf("%s: Recovered to %d subcategories", r.Target.Label, r.Count)
}
