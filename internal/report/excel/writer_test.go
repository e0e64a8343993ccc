package excel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"plp-monitor/internal/model"
)

func createTestRunResult() *model.RunResult {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result := model.NewRunResult(start, `a[class*="CategoryTile_categoryTile"]`, 8)

	mens := model.NewTarget("https://www.mountainwarehouse.com/eu/mens/")
	camping := model.NewTarget("https://www.mountainwarehouse.com/eu/camping/")
	kids := model.NewTarget("https://www.mountainwarehouse.com/eu/kids/")

	result.AddTarget(&model.TargetResult{Target: mens, Count: 5, Status: model.TargetStatusBelowMinimum, CheckedAt: start, Duration: 3 * time.Second})
	result.AddTarget(&model.TargetResult{Target: camping, Status: model.TargetStatusFailed, Error: "loading page: context deadline exceeded", CheckedAt: start, Duration: time.Minute})
	result.AddTarget(&model.TargetResult{Target: kids, Count: 12, Status: model.TargetStatusOK, CheckedAt: start, Duration: 2 * time.Second})

	result.AddIssue(model.NewBelowMinimumIssue(mens, 5, 8))
	result.AddIssue(model.NewFetchIssue(camping, true, errors.New("loading page: context deadline exceeded")))
	result.Notified = true
	result.Finalize(start.Add(65 * time.Second))
	return result
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		name     string
		timezone *time.Location
		wantTZ   string
	}{
		{
			name:     "nil timezone defaults to UTC",
			timezone: nil,
			wantTZ:   "UTC",
		},
		{
			name:     "custom timezone",
			timezone: time.FixedZone("CET", 3600),
			wantTZ:   "CET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(tt.timezone)
			if w == nil {
				t.Fatal("NewWriter returned nil")
			}
			if w.timezone.String() != tt.wantTZ {
				t.Errorf("timezone = %v, want %v", w.timezone.String(), tt.wantTZ)
			}
		})
	}
}

func TestWriter_Format(t *testing.T) {
	w := NewWriter(nil)
	if got := w.Format(); got != "excel" {
		t.Errorf("Format() = %v, want %v", got, "excel")
	}
}

func TestWriter_Write_NilResult(t *testing.T) {
	w := NewWriter(nil)
	if err := w.Write(nil, "test.xlsx"); err == nil {
		t.Error("Write() with nil result should return error")
	}
}

func TestWriter_Write_Success(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "plp_report.xlsx")

	w := NewWriter(nil)
	if err := w.Write(createTestRunResult(), outputPath); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, expected := range []string{sheetSummary, sheetTargets, sheetIssues} {
		found := false
		for _, s := range sheets {
			if s == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Sheet %q not found in Excel file", expected)
		}
	}
	for _, s := range sheets {
		if s == defaultSheet {
			t.Error("Default Sheet1 should have been removed")
		}
	}
}

func TestWriter_Write_AddsXlsxExtension(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "plp_report")

	w := NewWriter(nil)
	if err := w.Write(createTestRunResult(), outputPath); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(outputPath + ".xlsx"); os.IsNotExist(err) {
		t.Error("Output file with .xlsx extension was not created")
	}
}

func TestWriter_Write_Contents(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "plp_report.xlsx")

	w := NewWriter(time.UTC)
	if err := w.Write(createTestRunResult(), outputPath); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to open Excel file: %v", err)
	}
	defer f.Close()

	tests := []struct {
		sheet string
		cell  string
		want  string
	}{
		{sheetSummary, "A1", "PLP Monitor Report"},
		{sheetSummary, "B4", "2024-05-01 10:00:00"},
		{sheetSummary, "B7", "8"},
		{sheetSummary, "B8", "3"},
		{sheetSummary, "B15", "Yes"},
		{sheetTargets, "A1", "Page"},
		{sheetTargets, "A2", "mens"},
		{sheetTargets, "C2", "Below minimum"},
		{sheetTargets, "D2", "5"},
		{sheetTargets, "C3", "Failed"},
		{sheetTargets, "D3", "N/A"},
		{sheetTargets, "H3", "loading page: context deadline exceeded"},
		{sheetTargets, "C4", "OK"},
		{sheetIssues, "A2", "mens"},
		{sheetIssues, "C2", "Below minimum"},
		{sheetIssues, "D2", "5 subcategories (minimum: 8)"},
		{sheetIssues, "C3", "Timeout"},
		{sheetIssues, "D3", "Timeout loading page: loading page: context deadline exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.sheet+"!"+tt.cell, func(t *testing.T) {
			got, err := f.GetCellValue(tt.sheet, tt.cell)
			if err != nil {
				t.Fatalf("GetCellValue() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, got, tt.want)
			}
		})
	}
}

func TestWriter_Write_EmptyRun(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result := model.NewRunResult(start, "a", 8)
	result.Finalize(start)

	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := NewWriter(nil).Write(result, outputPath); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetIssues)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header row only, got %d rows", len(rows))
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{1, "A"},
		{8, "H"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
	}
	for _, tt := range tests {
		if got := columnName(tt.index); got != tt.want {
			t.Errorf("columnName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{3 * time.Second, "3.0s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
