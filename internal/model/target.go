// Package model provides data models for the category page monitor.
package model

import (
	"net/url"
	"strings"
)

// Target is one monitored category page.
type Target struct {
	URL   string `json:"url" yaml:"url"`     // Page URL
	Label string `json:"label" yaml:"label"` // Short name used in alerts (e.g. "mens")
}

// NewTarget creates a Target whose label is derived from the URL path.
func NewTarget(rawURL string) Target {
	return Target{URL: rawURL, Label: LabelFromURL(rawURL)}
}

// LabelFromURL returns the last non-empty path segment of a URL.
// "https://example.com/eu/mens/" yields "mens". URLs without a path fall
// back to the host, and unparsable input is returned unchanged.
func LabelFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return u.Host
}

// Observation is the result of checking one target during a run:
// either a sub-category count or the error that prevented counting.
type Observation struct {
	Count int
	Err   error
}

// Failed reports whether the observation carries an error.
func (o Observation) Failed() bool {
	return o.Err != nil
}
