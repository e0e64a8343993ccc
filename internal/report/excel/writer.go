// Package excel provides Excel report generation for monitoring runs.
// It implements the report.ReportWriter interface to generate .xlsx files
// with a run summary, per-target results and the issues raised.
package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"plp-monitor/internal/model"
)

const (
	// Sheet names
	sheetSummary = "Summary"
	sheetTargets = "Targets"
	sheetIssues  = "Issues"

	// Default sheet to remove
	defaultSheet = "Sheet1"

	// Colors for conditional formatting (RGB without #)
	colorWarningBg  = "FFEB9C" // Yellow background for suppressed targets
	colorWarningFg  = "9C6500" // Dark yellow text for suppressed targets
	colorCriticalBg = "FFC7CE" // Red background for breaches and failures
	colorCriticalFg = "9C0006" // Dark red text for breaches and failures
	colorHeaderBg   = "4472C4" // Blue background for header
	colorHeaderFg   = "FFFFFF" // White text for header
	colorNormalBg   = "C6EFCE" // Green background for healthy targets
	colorNormalFg   = "006100" // Dark green text for healthy targets
)

// Writer implements report.ReportWriter for Excel format.
type Writer struct {
	timezone *time.Location
}

// NewWriter creates a new Excel report writer.
// If timezone is nil, it defaults to UTC.
func NewWriter(timezone *time.Location) *Writer {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Writer{
		timezone: timezone,
	}
}

// Format returns the format identifier for this writer.
func (w *Writer) Format() string {
	return "excel"
}

// Write generates an Excel report from the run result.
func (w *Writer) Write(result *model.RunResult, outputPath string) error {
	if result == nil {
		return fmt.Errorf("run result is nil")
	}

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.createSummarySheet(f, result); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := w.createTargetsSheet(f, result); err != nil {
		return fmt.Errorf("failed to create targets sheet: %w", err)
	}

	if err := w.createIssuesSheet(f, result); err != nil {
		return fmt.Errorf("failed to create issues sheet: %w", err)
	}

	// Sheet1 may already be gone; nothing to do then.
	_ = f.DeleteSheet(defaultSheet)

	idx, _ := f.GetSheetIndex(sheetSummary)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// createSummarySheet creates the run summary worksheet.
func (w *Writer) createSummarySheet(f *excelize.File, result *model.RunResult) error {
	idx, err := f.NewSheet(sheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 18,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	valueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 12,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	f.SetColWidth(sheetSummary, "A", "A", 22)
	f.SetColWidth(sheetSummary, "B", "B", 60)

	f.MergeCell(sheetSummary, "A1", "B1")
	f.SetCellValue(sheetSummary, "A1", "PLP Monitor Report")
	f.SetCellStyle(sheetSummary, "A1", "B1", titleStyle)
	f.SetRowHeight(sheetSummary, 1, 30)

	summary := result.Summary
	if summary == nil {
		summary = model.NewRunSummary(result.Targets)
	}

	summaryData := []struct {
		label string
		value interface{}
	}{
		{"Run ID", result.RunID},
		{"Started", result.StartedAt.In(w.timezone).Format("2006-01-02 15:04:05")},
		{"Duration", formatDuration(result.Duration)},
		{"Selector", result.Selector},
		{"Minimum", result.Minimum},
		{"Pages checked", summary.TotalTargets},
		{"OK", summary.OK},
		{"Below minimum", summary.BelowMinimum},
		{"Already alerted", summary.Suppressed},
		{"Recovered", summary.Recovered},
		{"Failed", summary.Failed},
		{"Issues", len(result.Issues)},
		{"Alert sent", boolToText(result.Notified)},
	}
	if result.NotifyError != "" {
		summaryData = append(summaryData, struct {
			label string
			value interface{}
		}{"Alert error", result.NotifyError})
	}

	for i, item := range summaryData {
		row := i + 3 // Start from row 3
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), item.label)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), item.value)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
		f.SetCellStyle(sheetSummary, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), valueStyle)
		f.SetRowHeight(sheetSummary, row, 22)
	}

	return nil
}

// createTargetsSheet creates the per-target results worksheet.
func (w *Writer) createTargetsSheet(f *excelize.File, result *model.RunResult) error {
	if _, err := f.NewSheet(sheetTargets); err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}
	warningStyle, err := w.createWarningStyle(f)
	if err != nil {
		return err
	}
	criticalStyle, err := w.createCriticalStyle(f)
	if err != nil {
		return err
	}
	normalStyle, err := w.createNormalStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Page", "URL", "Status", "Count", "Minimum", "Checked At", "Duration", "Error"}
	colWidths := []float64{18, 55, 16, 10, 10, 20, 12, 50}
	w.writeHeader(f, sheetTargets, headers, colWidths, headerStyle)

	for i, tr := range result.Targets {
		row := i + 2
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetTargets, "A"+rowStr, tr.Target.Label)
		f.SetCellValue(sheetTargets, "B"+rowStr, tr.Target.URL)
		f.SetCellValue(sheetTargets, "C"+rowStr, statusText(tr.Status))
		if tr.Status == model.TargetStatusFailed {
			f.SetCellValue(sheetTargets, "D"+rowStr, "N/A")
		} else {
			f.SetCellValue(sheetTargets, "D"+rowStr, tr.Count)
		}
		f.SetCellValue(sheetTargets, "E"+rowStr, result.Minimum)
		f.SetCellValue(sheetTargets, "F"+rowStr, tr.CheckedAt.In(w.timezone).Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetTargets, "G"+rowStr, formatDuration(tr.Duration))
		f.SetCellValue(sheetTargets, "H"+rowStr, tr.Error)

		if style := getStatusStyle(tr.Status, normalStyle, warningStyle, criticalStyle); style > 0 {
			f.SetCellStyle(sheetTargets, "C"+rowStr, "C"+rowStr, style)
		}
	}

	return nil
}

// createIssuesSheet creates the issues worksheet, in detection order.
func (w *Writer) createIssuesSheet(f *excelize.File, result *model.RunResult) error {
	if _, err := f.NewSheet(sheetIssues); err != nil {
		return err
	}

	headerStyle, err := w.createHeaderStyle(f)
	if err != nil {
		return err
	}
	criticalStyle, err := w.createCriticalStyle(f)
	if err != nil {
		return err
	}

	headers := []string{"Page", "URL", "Kind", "Description"}
	colWidths := []float64{18, 55, 16, 60}
	w.writeHeader(f, sheetIssues, headers, colWidths, headerStyle)

	for i, issue := range result.Issues {
		rowStr := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheetIssues, "A"+rowStr, issue.Target.Label)
		f.SetCellValue(sheetIssues, "B"+rowStr, issue.Target.URL)
		f.SetCellValue(sheetIssues, "C"+rowStr, issueKindText(issue.Kind))
		f.SetCellValue(sheetIssues, "D"+rowStr, issue.Description())
		f.SetCellStyle(sheetIssues, "C"+rowStr, "C"+rowStr, criticalStyle)
	}

	return nil
}

// writeHeader writes a frozen header row and sets column widths.
func (w *Writer) writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) {
	for i, width := range widths {
		col := columnName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", columnName(i+1))
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	f.SetRowHeight(sheet, 1, 25)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Helper functions

func (w *Writer) createHeaderStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: colorHeaderFg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{colorHeaderBg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (w *Writer) createWarningStyle(f *excelize.File) (int, error) {
	return w.createFillStyle(f, colorWarningFg, colorWarningBg)
}

func (w *Writer) createCriticalStyle(f *excelize.File) (int, error) {
	return w.createFillStyle(f, colorCriticalFg, colorCriticalBg)
}

func (w *Writer) createNormalStyle(f *excelize.File) (int, error) {
	return w.createFillStyle(f, colorNormalFg, colorNormalBg)
}

func (w *Writer) createFillStyle(f *excelize.File, fg, bg string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Color: fg,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{bg},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func getStatusStyle(status model.TargetStatus, normalStyle, warningStyle, criticalStyle int) int {
	switch status {
	case model.TargetStatusBelowMinimum, model.TargetStatusFailed:
		return criticalStyle
	case model.TargetStatusSuppressed:
		return warningStyle
	case model.TargetStatusOK, model.TargetStatusRecovered:
		return normalStyle
	default:
		return 0
	}
}

// columnName converts a 1-based column index to Excel column name (A, B, ..., Z, AA, AB, ...).
func columnName(index int) string {
	result := ""
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

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

func boolToText(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
