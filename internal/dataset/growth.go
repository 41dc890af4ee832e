package dataset

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/ecboard/internal/table"
)

// LoadGrowthTables reads every sheet of the growth workbook at path. The sheet name is the
// group id verbatim; sheets are also returned in workbook order.
func LoadGrowthTables(path string) (map[string]dataframe.DataFrame, []string, error) {
	sheets, err := table.ReadWorkbookFile(path, GrowthNumeric)
	if err != nil {
		return nil, nil, fmt.Errorf("growth %s: %w", filepath.Base(path), err)
	}
	out := make(map[string]dataframe.DataFrame, len(sheets))
	order := make([]string, 0, len(sheets))
	for _, sh := range sheets {
		if err := checkColumns(sh.Frame, Growth, sh.Name, filepath.Base(path)); err != nil {
			return nil, nil, err
		}
		df, dropped := dropNegatives(sh.Frame, GrowthNumeric)
		if dropped > 0 {
			slog.Warn("negative growth measurements treated as missing", "sheet", sh.Name, "cells", dropped)
		}
		slog.Debug("loaded growth table", "sheet", sh.Name, "rows", df.Nrow())
		out[sh.Name] = df
		order = append(order, sh.Name)
	}
	return out, order, nil
}

// dropNegatives replaces negative values in cols with NaN; measurements are physically non-negative.
func dropNegatives(df dataframe.DataFrame, cols []string) (dataframe.DataFrame, int) {
	var n int
	for _, c := range cols {
		vals, ok := table.Floats(df, c)
		if !ok {
			continue
		}
		changed := false
		for i, v := range vals {
			if v < 0 {
				vals[i] = math.NaN()
				changed = true
				n++
			}
		}
		if changed {
			df = df.Mutate(series.New(vals, series.Float, c))
		}
	}
	return df, n
}
