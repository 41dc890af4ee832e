package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/ecboard/internal/dataset"
)

// Report bundles every summary of one dataset snapshot.
type Report struct {
	DatasetID   string         `json:"dataset_id"`
	LoadedAt    time.Time      `json:"loaded_at"`
	Headline    Headline       `json:"overview"`
	Environment []GroupSummary `json:"environment"`
	Growth      []GroupSummary `json:"growth"`
}

// BuildReport computes the overview and both per-group summaries.
func BuildReport(ds *dataset.Dataset) (*Report, error) {
	h, err := Overview(ds)
	if err != nil {
		return nil, err
	}
	env, err := EnvironmentSummaries(ds)
	if err != nil {
		return nil, err
	}
	growth, err := GrowthSummaries(ds)
	if err != nil {
		return nil, err
	}
	return &Report{DatasetID: ds.ID(), LoadedAt: ds.LoadedAt(), Headline: h, Environment: env, Growth: growth}, nil
}

// Markdown renders the report as plain-text sections with Markdown tables.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[OVERVIEW]\n")
	if r.DatasetID != "" {
		b.WriteString(fmt.Sprintf("Snapshot: %s (loaded %s)\n", r.DatasetID, r.LoadedAt.Format(time.RFC3339)))
	}
	h := r.Headline
	b.WriteString(fmt.Sprintf("Plants: %d\n", h.TotalPlants))
	b.WriteString(fmt.Sprintf("Avg temperature: %s °C\n", h.AvgTemperature))
	b.WriteString(fmt.Sprintf("Avg humidity: %s %%\n", h.AvgHumidity))
	if h.Best != nil {
		b.WriteString(fmt.Sprintf("Best EC: %s (%s, fresh weight %.2f g)\n", fmtEC(h.Best.EC), h.Best.Group, h.Best.FreshWeight))
	} else {
		b.WriteString("Best EC: -\n")
	}
	b.WriteString("\n[CONDITIONS]\n")
	b.WriteString("| group | EC | plants | color |\n|---|---|---|---|\n")
	for _, c := range h.Conditions {
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", cell(c.Group), fmtEC(c.EC), c.Plants, c.Color))
	}

	b.WriteString("\n[ENVIRONMENT]\n")
	writeSummaryTable(&b, r.Environment, dataset.EnvironmentNumeric)
	b.WriteString("\n[GROWTH]\n")
	writeSummaryTable(&b, r.Growth, dataset.GrowthNumeric)
	return b.String()
}

func writeSummaryTable(b *strings.Builder, sums []GroupSummary, cols []string) {
	if len(sums) == 0 {
		b.WriteString("(no data)\n")
		return
	}
	b.WriteString("| group | EC | rows |")
	for _, c := range cols {
		b.WriteString(" " + cell(c) + " |")
	}
	b.WriteString("\n|---|---|---|")
	b.WriteString(strings.Repeat("---|", len(cols)))
	b.WriteString("\n")
	for _, s := range sums {
		b.WriteString(fmt.Sprintf("| %s | %s | %d |", cell(s.Group), fmtEC(s.EC), s.Count))
		for _, c := range cols {
			b.WriteString(" " + s.Metric(c).String() + " |")
		}
		b.WriteString("\n")
	}
}

func fmtEC(ec float64) string { return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", ec), "0"), ".") }

func cell(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
