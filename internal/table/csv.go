package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
)

// ReadCSV parses a comma-separated stream with a required header row.
func ReadCSV(r io.Reader, numeric []string) (dataframe.DataFrame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataframe.DataFrame{}, fmt.Errorf("missing header row")
		}
		return dataframe.DataFrame{}, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return dataframe.DataFrame{}, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return FromRecords(header, rows, numeric)
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string, numeric []string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, numeric)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
