package table

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet parsed into a frame.
type Sheet struct {
	Name  string
	Frame dataframe.DataFrame
}

// ReadWorkbook parses every worksheet of an .xlsx stream, in workbook order. The first
// row of each sheet is its header. Empty sheets are skipped; a sheet with data under a
// blank first row is returned with a column-less frame.
func ReadWorkbook(r io.Reader, numeric []string) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readSheets(f, numeric)
}

// ReadWorkbookFile opens path and parses it with ReadWorkbook.
func ReadWorkbookFile(path string, numeric []string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readSheets(f, numeric)
}

func readSheets(f *excelize.File, numeric []string) ([]Sheet, error) {
	var out []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		body := make([][]string, 0, len(rows))
		for i, row := range rows {
			if i == 0 || blank(row) {
				continue
			}
			body = append(body, row)
		}
		if len(rows) == 0 || (blank(rows[0]) && len(body) == 0) {
			slog.Warn("skipping empty worksheet", "sheet", name)
			continue
		}
		if blank(rows[0]) {
			// Data without a header: keep the sheet with no columns so callers report it.
			slog.Warn("worksheet has data but a blank header row", "sheet", name, "rows", len(body))
			out = append(out, Sheet{Name: name, Frame: dataframe.DataFrame{}})
			continue
		}
		df, err := FromRecords(rows[0], body, numeric)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		out = append(out, Sheet{Name: name, Frame: df})
	}
	return out, nil
}

// WriteWorkbook writes df as the single sheet of a new workbook. Float columns are written
// as numbers, NaN cells are left empty.
func WriteWorkbook(w io.Writer, sheet string, df dataframe.DataFrame) error {
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		sheet = "Sheet1"
	}
	names := df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for j, name := range names {
		col := df.Col(name)
		isFloat := IsFloat(df, name)
		for i := 0; i < col.Len(); i++ {
			e := col.Elem(i)
			if e.IsNA() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			var v interface{} = e.String()
			if isFloat {
				x := e.Float()
				if math.IsNaN(x) {
					continue
				}
				v = x
			} else if v == "" {
				continue
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
