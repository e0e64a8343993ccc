// Package html provides HTML report generation for monitoring runs.
// It implements the report.ReportWriter interface to generate .html files
// with a run summary, per-target results and the issues raised.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plp-monitor/internal/model"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Writer implements report.ReportWriter for HTML format.
type Writer struct {
	timezone     *time.Location
	templatePath string // User-defined template path (optional)
}

// TemplateData holds all data passed to the HTML template.
type TemplateData struct {
	Title       string
	RunID       string
	StartedAt   string
	Duration    string
	Selector    string
	Minimum     int
	Summary     *model.RunSummary
	Targets     []*TargetData
	Issues      []*IssueData
	Recoveries  []string
	Message     string
	Notified    bool
	NotifyError string
	GeneratedAt string
}

// TargetData represents a target result formatted for template rendering.
type TargetData struct {
	Label       string
	URL         string
	Count       string
	Status      string
	StatusClass string
	CheckedAt   string
	Duration    string
	Error       string
}

// IssueData represents an issue formatted for template rendering.
type IssueData struct {
	Label       string
	URL         string
	Kind        string
	Description string
}

// NewWriter creates a new HTML report writer.
// If timezone is nil, it defaults to UTC.
// If templatePath is empty, the embedded default template will be used.
func NewWriter(timezone *time.Location, templatePath string) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone:     timezone,
		templatePath: templatePath,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "html"
}

// Write generates an HTML report from the run result.
func (w *Writer) Write(result *model.RunResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("run result is nil")
	}

	// Ensure output path has .html extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath = outputPath + ".html"
	}

	tmpl, err := w.loadTemplate()
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	data := w.prepareTemplateData(result)

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := tmpl.Execute(file, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

// loadTemplate loads the HTML template.
// It first tries to load a user-defined template, then falls back to the embedded default.
func (w *Writer) loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatDuration": formatDuration,
		"statusClass":    statusClass,
	}

	if w.templatePath != "" {
		if _, err := os.Stat(w.templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(w.templatePath)).Funcs(funcMap).ParseFiles(w.templatePath)
			if err != nil {
				return nil, fmt.Errorf("failed to parse user template: %w", err)
			}
			return tmpl, nil
		}
		// User template not found, fall through to default
	}

	tmpl, err := template.New("report.html").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// prepareTemplateData converts a RunResult to TemplateData for template rendering.
func (w *Writer) prepareTemplateData(result *model.RunResult) *TemplateData {
	summary := result.Summary
	if summary == nil {
		summary = model.NewRunSummary(result.Targets)
	}

	data := &TemplateData{
		Title:       "PLP Monitor Report",
		RunID:       result.RunID,
		StartedAt:   result.StartedAt.In(w.timezone).Format("2006-01-02 15:04:05"),
		Duration:    formatDuration(result.Duration),
		Selector:    result.Selector,
		Minimum:     result.Minimum,
		Summary:     summary,
		Targets:     make([]*TargetData, 0, len(result.Targets)),
		Issues:      make([]*IssueData, 0, len(result.Issues)),
		Recoveries:  make([]string, 0, len(result.Recoveries)),
		Message:     result.Message,
		Notified:    result.Notified,
		NotifyError: result.NotifyError,
		GeneratedAt: time.Now().In(w.timezone).Format("2006-01-02 15:04:05"),
	}

	for _, tr := range result.Targets {
		data.Targets = append(data.Targets, w.convertTargetData(tr))
	}
	for _, issue := range result.Issues {
		data.Issues = append(data.Issues, &IssueData{
			Label:       issue.Target.Label,
			URL:         issue.Target.URL,
			Kind:        issueKindText(issue.Kind),
			Description: issue.Description(),
		})
	}
	for _, r := range result.Recoveries {
		data.Recoveries = append(data.Recoveries, r.String())
	}

	return data
}

// convertTargetData converts a TargetResult to TargetData.
func (w *Writer) convertTargetData(tr *model.TargetResult) *TargetData {
	count := fmt.Sprintf("%d", tr.Count)
	if tr.Status == model.TargetStatusFailed {
		count = "N/A"
	}
	return &TargetData{
		Label:       tr.Target.Label,
		URL:         tr.Target.URL,
		Count:       count,
		Status:      statusText(tr.Status),
		StatusClass: statusClass(tr.Status),
		CheckedAt:   tr.CheckedAt.In(w.timezone).Format("15:04:05"),
		Duration:    formatDuration(tr.Duration),
		Error:       tr.Error,
	}
}

// Helper functions

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

// statusText converts a target status to display text.
func statusText(status model.TargetStatus) string {
	switch status {
	case model.TargetStatusOK:
		return "OK"
	case model.TargetStatusBelowMinimum:
		return "Below minimum"
	case model.TargetStatusSuppressed:
		return "Already alerted"
	case model.TargetStatusRecovered:
		return "Recovered"
	case model.TargetStatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// statusClass returns the CSS class for a target status.
func statusClass(status model.TargetStatus) string {
	switch status {
	case model.TargetStatusOK, model.TargetStatusRecovered:
		return "status-normal"
	case model.TargetStatusSuppressed:
		return "status-warning"
	case model.TargetStatusBelowMinimum, model.TargetStatusFailed:
		return "status-critical"
	default:
		return ""
	}
}

// issueKindText converts an issue kind to display text.
func issueKindText(kind model.IssueKind) string {
	switch kind {
	case model.IssueBelowMinimum:
		return "Below minimum"
	case model.IssueTimeout:
		return "Timeout"
	case model.IssueFetchError:
		return "Fetch error"
	default:
		return string(kind)
	}
}
