// Package aggregate turns per-group tables into summary rows and headline metrics.
package aggregate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/table"
)

// ErrEmptyInput is returned when a selection needs at least one candidate and got none.
var ErrEmptyInput = errors.New("empty input")

// Mean is an arithmetic mean that may be undefined (mean of no values).
type Mean struct {
	Value float64
	Valid bool
}

// MarshalJSON renders undefined means as null.
func (m Mean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Mean) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Mean{}
		return nil
	}
	if err := json.Unmarshal(b, &m.Value); err != nil {
		return err
	}
	m.Valid = true
	return nil
}

// String formats the mean with one decimal, or "-" when undefined.
func (m Mean) String() string {
	if !m.Valid {
		return "-"
	}
	return fmt.Sprintf("%.1f", m.Value)
}

// MeanOf averages vals, skipping NaN (missing) entries.
func MeanOf(vals []float64) Mean {
	kept := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return Mean{}
	}
	return Mean{Value: stat.Mean(kept, nil), Valid: true}
}

// GroupSummary is the per-group view recomputed on demand.
type GroupSummary struct {
	Group string          `json:"group"`
	EC    float64         `json:"ec"`
	Color string          `json:"color"`
	Count int             `json:"count"`
	Means map[string]Mean `json:"means"`
}

// Metric returns the mean of column, undefined when it was not computed.
func (s GroupSummary) Metric(column string) Mean {
	return s.Means[column]
}

// GroupMeans computes, for each group present in tables, the mean of every requested
// column. Output follows the registry's canonical order regardless of map iteration.
// A column a table lacks yields an undefined mean.
func GroupMeans(tables map[string]dataframe.DataFrame, reg *groups.Registry, columns []string) ([]GroupSummary, error) {
	tables, err := canonical(tables, reg)
	if err != nil {
		return nil, err
	}
	cols := dedupe(columns)
	out := make([]GroupSummary, 0, len(tables))
	for _, g := range reg.All() {
		df, ok := tables[g.Name]
		if !ok {
			continue
		}
		s := GroupSummary{Group: g.Name, EC: g.EC, Color: g.Color, Count: df.Nrow(), Means: make(map[string]Mean, len(cols))}
		for _, c := range cols {
			vals, ok := table.Floats(df, c)
			if !ok {
				s.Means[c] = Mean{}
				continue
			}
			s.Means[c] = MeanOf(vals)
		}
		out = append(out, s)
	}
	return out, nil
}

// OverallMean pools column across every table that has it and averages the result.
// Tables lacking the column are excluded; the mean is undefined if none has it.
func OverallMean(tables map[string]dataframe.DataFrame, column string) Mean {
	var pooled []float64
	for _, df := range tables {
		vals, ok := table.Floats(df, column)
		if !ok {
			continue
		}
		pooled = append(pooled, vals...)
	}
	return MeanOf(pooled)
}

// BestGroupByMetric returns the summary with the largest defined metric. Ties go to the
// earliest summary, so canonical-order input breaks ties by configuration order.
func BestGroupByMetric(summaries []GroupSummary, metric string) (GroupSummary, error) {
	best := -1
	for i, s := range summaries {
		m := s.Metric(metric)
		if !m.Valid {
			continue
		}
		if best < 0 || m.Value > summaries[best].Metric(metric).Value {
			best = i
		}
	}
	if best < 0 {
		if len(summaries) == 0 {
			return GroupSummary{}, fmt.Errorf("best by %q: no summaries: %w", metric, ErrEmptyInput)
		}
		return GroupSummary{}, fmt.Errorf("best by %q: no group has a value: %w", metric, ErrEmptyInput)
	}
	return summaries[best], nil
}

// canonical re-keys tables by registry spelling and rejects groups the registry does not know.
func canonical(tables map[string]dataframe.DataFrame, reg *groups.Registry) (map[string]dataframe.DataFrame, error) {
	out := make(map[string]dataframe.DataFrame, len(tables))
	var unknown []string
	for k, df := range tables {
		g, ok := reg.Lookup(k)
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		out[g.Name] = df
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("groups %q: %w", unknown, dataset.ErrUnknownGroup)
	}
	return out, nil
}

func dedupe(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
