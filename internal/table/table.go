// Package table builds and inspects the gota data frames that hold every loaded dataset.
package table

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/unicode/norm"
)

// FromRecords builds a frame from a header and raw string rows. Columns listed in numeric
// become float columns with NaN for empty or unparsable cells; all other columns stay strings.
// Short rows are padded; extra cells beyond the header are dropped.
func FromRecords(header []string, rows [][]string, numeric []string) (dataframe.DataFrame, error) {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		n := norm.NFC.String(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		if seen[n] {
			return dataframe.DataFrame{}, fmt.Errorf("duplicate column %q", n)
		}
		seen[n] = true
		names[i] = n
	}
	if len(names) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("missing header row")
	}
	cols := make([]series.Series, len(names))
	for j, name := range names {
		cell := func(r []string) string {
			if j < len(r) {
				return strings.TrimSpace(r[j])
			}
			return ""
		}
		if slices.Contains(numeric, name) {
			vals := make([]float64, len(rows))
			for i, r := range rows {
				if x, ok := ParseNumeric(cell(r)); ok {
					vals[i] = x
				} else {
					vals[i] = math.NaN()
				}
			}
			cols[j] = series.New(vals, series.Float, name)
			continue
		}
		vals := make([]string, len(rows))
		for i, r := range rows {
			vals[i] = cell(r)
		}
		cols[j] = series.New(vals, series.String, name)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build frame: %w", df.Err)
	}
	return df, nil
}

// HasColumn reports whether df has a column called name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	return slices.Contains(df.Names(), name)
}

// Floats returns the column as float64 values (NaN for missing). ok is false when the
// column does not exist.
func Floats(df dataframe.DataFrame, name string) (vals []float64, ok bool) {
	if !HasColumn(df, name) {
		return nil, false
	}
	return df.Col(name).Float(), true
}

// Strings returns the column rendered as strings; missing floats render as "".
func Strings(df dataframe.DataFrame, name string) ([]string, bool) {
	if !HasColumn(df, name) {
		return nil, false
	}
	col := df.Col(name)
	out := make([]string, col.Len())
	for i := range out {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		if col.Type() == series.Float {
			out[i] = FormatFloat(e.Float())
			continue
		}
		out[i] = e.String()
	}
	return out, true
}

// IsFloat reports whether the named column holds floats.
func IsFloat(df dataframe.DataFrame, name string) bool {
	return HasColumn(df, name) && df.Col(name).Type() == series.Float
}

// SortByTime stable-sorts rows by the named timestamp column. Frames whose column is
// absent or contains any unparsable value are returned unchanged.
func SortByTime(df dataframe.DataFrame, name string) (dataframe.DataFrame, bool) {
	vals, ok := Strings(df, name)
	if !ok || len(vals) < 2 {
		return df, false
	}
	type keyed struct {
		idx int
		at  int64
	}
	keys := make([]keyed, len(vals))
	for i, v := range vals {
		t, ok := ParseTime(v)
		if !ok {
			return df, false
		}
		keys[i] = keyed{idx: i, at: t.UnixNano()}
	}
	sort.SliceStable(keys, func(a, b int) bool { return keys[a].at < keys[b].at })
	idx := make([]int, len(keys))
	for i, k := range keys {
		idx[i] = k.idx
	}
	return df.Subset(idx), true
}

// FormatFloat renders a float without trailing zeros; NaN renders as "".
func FormatFloat(x float64) string {
	if math.IsNaN(x) {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
