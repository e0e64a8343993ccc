//go:build ignore
// +build ignore

// This script prints every sheet of a plpmon Excel report for verification.
//
//	go run scripts/read_excel.go reports/plp_report_2024-05-01_100000.xlsx
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/read_excel.go <report.xlsx>")
		os.Exit(2)
	}

	f, err := excelize.OpenFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", sheet, err)
			continue
		}

		fmt.Println()
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  %s (%d rows)\n", sheet, len(rows))
		fmt.Println("═══════════════════════════════════════")
		for _, row := range rows {
			fmt.Printf("  %s\n", strings.Join(row, " | "))
		}
	}
}
