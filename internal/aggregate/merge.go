package aggregate

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/table"
)

// MergeWithLabel concatenates every group table in canonical order and appends labelColumn
// holding each row's group id. Columns are the union of all tables in first-seen order;
// cells a table lacks are missing (NaN or ""). A column is numeric only if it is numeric
// in every table that has it.
func MergeWithLabel(tables map[string]dataframe.DataFrame, reg *groups.Registry, labelColumn string) (dataframe.DataFrame, error) {
	tables, err := canonical(tables, reg)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	var order []dataframe.DataFrame
	var labels []string
	var names []string
	numeric := map[string]bool{}
	for _, g := range reg.All() {
		df, ok := tables[g.Name]
		if !ok {
			continue
		}
		for _, n := range df.Names() {
			if n == labelColumn {
				return dataframe.DataFrame{}, fmt.Errorf("group %q already has a %q column", g.Name, labelColumn)
			}
			isNum := table.IsFloat(df, n)
			if prev, seen := numeric[n]; seen {
				numeric[n] = prev && isNum
				continue
			}
			numeric[n] = isNum
			names = append(names, n)
		}
		order = append(order, df)
		for i := 0; i < df.Nrow(); i++ {
			labels = append(labels, g.Name)
		}
	}

	cols := make([]series.Series, 0, len(names)+1)
	for _, n := range names {
		if numeric[n] {
			vals := make([]float64, 0, len(labels))
			for _, df := range order {
				v, ok := table.Floats(df, n)
				if !ok {
					v = nanSlice(df.Nrow())
				}
				vals = append(vals, v...)
			}
			cols = append(cols, series.New(vals, series.Float, n))
			continue
		}
		vals := make([]string, 0, len(labels))
		for _, df := range order {
			v, ok := table.Strings(df, n)
			if !ok {
				v = make([]string, df.Nrow())
			}
			vals = append(vals, v...)
		}
		cols = append(cols, series.New(vals, series.String, n))
	}
	cols = append(cols, series.New(labels, series.String, labelColumn))
	merged := dataframe.New(cols...)
	if merged.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("merge tables: %w", merged.Err)
	}
	return merged, nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
