// Package report provides report generation for monitoring runs.
// It defines the ReportWriter interface and provides implementations for
// different output formats including Excel and HTML.
package report

import (
	"plp-monitor/internal/model"
)

// ReportWriter defines the interface for generating run reports.
// Implementations should be able to write run results to files
// in their specific format (Excel, HTML, etc.).
type ReportWriter interface {
	// Write generates a report from the run result and saves it to the
	// specified output path. The writer appends its file extension when
	// the path lacks one.
	//
	// Returns an error if the report generation or file writing fails.
	Write(result *model.RunResult, outputPath string) error

	// Format returns the format identifier for this writer.
	// Common values are "excel" and "html".
	Format() string
}
