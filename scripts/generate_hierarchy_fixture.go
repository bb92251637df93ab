// Generates a synthetic five-level hierarchy export for load and ingestion
// testing. The output format follows the file extension: semicolon CSV for
// .csv, a workbook for .xlsx. Codes are path-prefixed so they stay unique
// within each level.
//
// Usage: go run scripts/generate_hierarchy_fixture.go -out fixture.csv \
//   -divisions 3 -facilities 4 -departments 3 -bus 2 -bsus 2
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/orgsync-backend/internal/ingestion"
)

var levelLabels = []string{"Division", "Facility", "Department", "BU", "BSU"}
var levelPrefixes = []string{"D", "F", "P", "B", "S"}

func main() {
	var (
		out    string
		counts [5]int
	)
	flag.StringVar(&out, "out", "hierarchy_fixture.csv", "output path (.csv or .xlsx)")
	flag.IntVar(&counts[0], "divisions", 3, "number of divisions")
	flag.IntVar(&counts[1], "facilities", 4, "facilities per division")
	flag.IntVar(&counts[2], "departments", 3, "departments per facility")
	flag.IntVar(&counts[3], "bus", 2, "business units per department")
	flag.IntVar(&counts[4], "bsus", 2, "business sub-units per business unit")
	flag.Parse()

	for i, n := range counts {
		if n < 1 {
			fmt.Printf("count for %s must be at least 1\n", strings.ToLower(levelLabels[i]))
			os.Exit(2)
		}
	}

	headers := ingestion.RequiredColumns()
	rows := buildRows(counts)

	var err error
	switch strings.ToLower(filepath.Ext(out)) {
	case ".csv":
		err = writeCSV(out, headers, rows)
	case ".xlsx":
		err = writeXLSX(out, headers, rows)
	default:
		fmt.Printf("unsupported output extension %q; use .csv or .xlsx\n", out)
		os.Exit(2)
	}
	if err != nil {
		fmt.Printf("write %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s\n", len(rows), out)
}

// buildRows emits one row per leaf, walking the level counts depth-first so
// the export reads like a flattened tree.
func buildRows(counts [5]int) [][]string {
	total := 1
	for _, n := range counts {
		total *= n
	}
	rows := make([][]string, 0, total)

	var walk func(depth int, codes []string, cells []string)
	walk = func(depth int, codes []string, cells []string) {
		if depth == len(counts) {
			row := make([]string, len(cells))
			copy(row, cells)
			rows = append(rows, row)
			return
		}
		for i := 0; i < counts[depth]; i++ {
			code := fmt.Sprintf("%s%02d", levelPrefixes[depth], i+1)
			if depth > 0 {
				code = codes[depth-1] + "-" + code
			}
			cells[2*depth] = code
			cells[2*depth+1] = fmt.Sprintf("%s %s", levelLabels[depth], code)
			walk(depth+1, append(codes, code), cells)
		}
	}
	walk(0, make([]string, 0, len(counts)), make([]string, 2*len(counts)))
	return rows
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetList()[0]
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
