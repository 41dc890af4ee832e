// Package datasettest writes small on-disk datasets for tests.
package datasettest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/ecboard/internal/dataset"
)

// EnvironmentCSV holds per-group environment CSV bodies written by WriteDir.
var EnvironmentCSV = map[string]string{
	"송도고": "time,temperature,humidity,ph,ec\n" +
		"2025-05-01 11:00,22,62,6.2,1.1\n" +
		"2025-05-01 10:00,20,60,6.0,0.9\n",
	"하늘고": "time,temperature,humidity,ph,ec\n" +
		"2025-05-01 10:00,24,70,6.4,2.0\n" +
		"2025-05-01 11:00,26,,6.6,2.2\n",
}

// GrowthRows holds per-sheet growth rows (fresh weight, leaf count, shoot length) written by WriteDir.
var GrowthRows = map[string][][]any{
	"송도고": {{10.0, 5.0, 80.0}, {20.0, 7.0, 100.0}},
	"하늘고": {{30.0, 9.0, 120.0}, {nil, 8.0, 110.0}, {34.0, 11.0, 130.0}},
	"동산고": {{12.0, 6.0, 90.0}},
}

// SheetOrder is the sheet order of the growth workbook.
var SheetOrder = []string{"송도고", "하늘고", "동산고"}

// WriteDir populates a fresh temp directory with environment CSVs and the growth workbook.
// With nfd set, file names are written decomposed as macOS does.
func WriteDir(t testing.TB, nfd bool) string {
	t.Helper()
	dir := t.TempDir()
	name := func(s string) string {
		if nfd {
			return norm.NFD.String(s)
		}
		return s
	}
	for group, body := range EnvironmentCSV {
		p := filepath.Join(dir, name(group+dataset.DefaultEnvironmentSuffix+".csv"))
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write env fixture: %v", err)
		}
	}
	WriteWorkbook(t, filepath.Join(dir, name(dataset.DefaultGrowthFile)), SheetOrder, GrowthRows)
	return dir
}

// WriteWorkbook writes one sheet per group with the growth header row.
func WriteWorkbook(t testing.TB, path string, order []string, rows map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	header := []any{dataset.ColFreshWeight, dataset.ColLeafCount, dataset.ColShootLength}
	for i, sheet := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			t.Fatalf("write header: %v", err)
		}
		for r, row := range rows[sheet] {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			vals := row
			if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
				t.Fatalf("write row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}
