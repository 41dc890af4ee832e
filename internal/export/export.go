// Package export produces the combined download files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"

	"github.com/KaramelBytes/ecboard/internal/aggregate"
	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/table"
)

// Download file names and content types.
const (
	EnvironmentFile = "environment_combined.csv"
	GrowthFile      = "growth_combined.xlsx"

	CSVContentType  = "text/csv; charset=utf-8"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// EnvironmentCombined concatenates all environment tables in canonical group order.
// Rows keep their own columns only; no group label is added.
func EnvironmentCombined(ds *dataset.Dataset) (dataframe.DataFrame, error) {
	merged, err := aggregate.MergeWithLabel(ds.Environment(), ds.Groups(), dataset.ColGroup)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return merged.Drop(dataset.ColGroup), nil
}

// GrowthCombined concatenates all growth tables in canonical group order with a group label column.
func GrowthCombined(ds *dataset.Dataset) (dataframe.DataFrame, error) {
	return aggregate.MergeWithLabel(ds.Growth(), ds.Groups(), dataset.ColGroup)
}

// WriteEnvironmentCSV streams environment_combined.csv to w.
func WriteEnvironmentCSV(w io.Writer, ds *dataset.Dataset) error {
	df, err := EnvironmentCombined(ds)
	if err != nil {
		return err
	}
	return WriteCSV(w, df)
}

// WriteGrowthXLSX streams growth_combined.xlsx to w.
func WriteGrowthXLSX(w io.Writer, ds *dataset.Dataset) error {
	df, err := GrowthCombined(ds)
	if err != nil {
		return err
	}
	return table.WriteWorkbook(w, "Sheet1", df)
}

// ReadGrowthXLSX parses a workbook written by WriteGrowthXLSX.
func ReadGrowthXLSX(r io.Reader) (dataframe.DataFrame, error) {
	sheets, err := table.ReadWorkbook(r, dataset.GrowthNumeric)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook has no data sheet")
	}
	return sheets[0].Frame, nil
}

// WriteCSV writes df with a header row. Floats are written in shortest form and missing cells empty.
func WriteCSV(w io.Writer, df dataframe.DataFrame) error {
	names := df.Names()
	cols := make([][]string, len(names))
	for j, n := range names {
		cols[j], _ = table.Strings(df, n)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(names))
	for i := 0; i < df.Nrow(); i++ {
		for j := range names {
			rec[j] = cols[j][i]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
