package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"plp-monitor/internal/model"
	"plp-monitor/internal/report/excel"
	"plp-monitor/internal/report/html"
)

// Registry manages report writers for different formats.
// It provides a centralized way to access report writers by format name.
type Registry struct {
	writers map[string]ReportWriter
}

// NewRegistry creates a new report registry with pre-registered Excel and HTML writers.
// If timezone is nil, defaults to UTC.
// htmlTemplatePath is optional; if empty, the HTML writer will use the embedded default template.
func NewRegistry(timezone *time.Location, htmlTemplatePath string) *Registry {
	if timezone == nil {
		timezone = time.UTC
	}

	excelWriter := excel.NewWriter(timezone)
	htmlWriter := html.NewWriter(timezone, htmlTemplatePath)

	// Build registry
	r := &Registry{
		writers: make(map[string]ReportWriter),
	}

	// Register writers using their Format() return values
	r.writers[excelWriter.Format()] = excelWriter
	r.writers[htmlWriter.Format()] = htmlWriter

	return r
}

// Get returns a writer for the specified format.
// Format names are case-insensitive (e.g., "Excel", "EXCEL", "excel" all work).
// Returns an error if the format is not supported.
func (r *Registry) Get(format string) (ReportWriter, error) {
	// Normalize format to lowercase for case-insensitive lookup
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))

	writer, ok := r.writers[normalizedFormat]
	if !ok {
		supported := r.GetAll()
		return nil, fmt.Errorf("unsupported report format %q, supported formats: %s",
			format, strings.Join(supported, ", "))
	}

	return writer, nil
}

// GetAll returns all supported format names in sorted order.
func (r *Registry) GetAll() []string {
	formats := make([]string, 0, len(r.writers))
	for format := range r.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Has checks if the specified format is supported.
// Format names are case-insensitive.
func (r *Registry) Has(format string) bool {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))
	_, ok := r.writers[normalizedFormat]
	return ok
}

// Generated describes the outcome of writing one report format.
type Generated struct {
	Format string
	Path   string
	Err    error
}

// WriteAll writes result under outputDir once per format, using baseName
// without extension. Each format is attempted even when an earlier one
// fails; failures are reported per entry.
func (r *Registry) WriteAll(result *model.RunResult, outputDir, baseName string, formats []string) ([]Generated, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	generated := make([]Generated, 0, len(formats))
	for _, format := range formats {
		writer, err := r.Get(format)
		if err != nil {
			generated = append(generated, Generated{Format: format, Err: err})
			continue
		}

		path := filepath.Join(outputDir, baseName+extension(writer.Format()))
		generated = append(generated, Generated{
			Format: writer.Format(),
			Path:   path,
			Err:    writer.Write(result, path),
		})
	}
	return generated, nil
}

// Filename expands a report filename template.
// Supports {{.Date}} (2006-01-02) and {{.Time}} (150405) placeholders.
func Filename(template string, at time.Time, tz *time.Location) string {
	if template == "" {
		template = "plp_report_{{.Date}}_{{.Time}}"
	}
	if tz == nil {
		tz = time.UTC
	}

	local := at.In(tz)
	dateStr := local.Format("2006-01-02")
	timeStr := local.Format("150405")

	filename := strings.ReplaceAll(template, "{{.Date}}", dateStr)
	filename = strings.ReplaceAll(filename, "{{ .Date }}", dateStr)
	filename = strings.ReplaceAll(filename, "{{.Time}}", timeStr)
	filename = strings.ReplaceAll(filename, "{{ .Time }}", timeStr)

	return filename
}

func extension(format string) string {
	switch format {
	case "excel":
		return ".xlsx"
	case "html":
		return ".html"
	default:
		return "." + format
	}
}
