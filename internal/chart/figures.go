package chart

import (
	"fmt"

	"github.com/KaramelBytes/ecboard/internal/aggregate"
	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/table"
)

// EnvironmentOverview is a 2x2 grid of per-group environment means: temperature, humidity,
// pH and target versus measured EC.
func EnvironmentOverview(ds *dataset.Dataset) (Figure, error) {
	sums, err := aggregate.EnvironmentSummaries(ds)
	if err != nil {
		return Figure{}, err
	}
	meanBar := func(title, column, unit string) Panel {
		s := Series{Name: column}
		for _, g := range sums {
			s.Points = append(s.Points, meanPoint(g.Group, g.Metric(column), g.Color))
		}
		return Panel{Title: title, Kind: Bar, XLabel: "학교", YLabel: unit, Series: []Series{s}}
	}

	measured := Series{Name: "실측 EC", Color: "#1f77b4"}
	target := Series{Name: "목표 EC", Color: "#ff7f0e"}
	for _, g := range sums {
		measured.Points = append(measured.Points, meanPoint(g.Group, g.Metric(dataset.ColEC), ""))
		target.Points = append(target.Points, Point{Label: g.Group, Y: ptr(g.EC)})
	}

	return Figure{
		Name:  EnvironmentOverviewName,
		Title: "학교별 환경 평균",
		Rows:  2,
		Cols:  2,
		Panels: []Panel{
			meanBar("평균 온도", dataset.ColTemperature, "°C"),
			meanBar("평균 습도", dataset.ColHumidity, "%"),
			meanBar("평균 pH", dataset.ColPH, "pH"),
			{Title: "목표 EC vs 실측 EC", Kind: Bar, XLabel: "학교", YLabel: "EC", Series: []Series{target, measured}},
		},
	}, nil
}

// EnvironmentTimeSeries plots temperature, humidity and EC over time for one group, with the
// group's target EC drawn as a dashed reference line on the EC panel.
func EnvironmentTimeSeries(ds *dataset.Dataset, group string) (Figure, error) {
	g, ok := ds.Groups().Lookup(group)
	if !ok {
		return Figure{}, fmt.Errorf("group %q: %w", group, dataset.ErrUnknownGroup)
	}
	df, ok := ds.EnvironmentFor(g.Name)
	if !ok {
		return Figure{}, fmt.Errorf("group %q has no environment table: %w", g.Name, ErrNoData)
	}
	times, ok := table.Strings(df, dataset.ColTime)
	if !ok {
		times = make([]string, df.Nrow())
	}

	line := func(title, column, unit string) Panel {
		s := Series{Name: column, Color: g.Color}
		vals, ok := table.Floats(df, column)
		if ok {
			for i, v := range vals {
				s.Points = append(s.Points, Point{Label: times[i], Y: ptr(v)})
			}
		}
		return Panel{Title: title, Kind: Line, XLabel: "시간", YLabel: unit, Series: []Series{s}}
	}

	ec := line("EC 변화", dataset.ColEC, "EC")
	ec.RefLines = []RefLine{{Y: g.EC, Label: fmt.Sprintf("목표 EC %s", table.FormatFloat(g.EC)), Dashed: true}}
	return Figure{
		Name:  EnvironmentTimeSeriesName,
		Title: fmt.Sprintf("%s 환경 변화", g.Name),
		Rows:  3,
		Cols:  1,
		Panels: []Panel{
			line("온도 변화", dataset.ColTemperature, "°C"),
			line("습도 변화", dataset.ColHumidity, "%"),
			ec,
		},
	}, nil
}

// GrowthOverview is a 2x2 grid of per-EC growth means plus plant counts.
func GrowthOverview(ds *dataset.Dataset) (Figure, error) {
	sums, err := aggregate.GrowthSummaries(ds)
	if err != nil {
		return Figure{}, err
	}
	bar := func(title, column, unit string) Panel {
		s := Series{Name: column}
		for _, g := range sums {
			s.Points = append(s.Points, meanPoint(ecLabel(g.EC), g.Metric(column), g.Color))
		}
		return Panel{Title: title, Kind: Bar, XLabel: "EC", YLabel: unit, Series: []Series{s}}
	}
	count := Series{Name: "개체수"}
	for _, g := range sums {
		n := float64(g.Count)
		count.Points = append(count.Points, Point{Label: ecLabel(g.EC), Y: &n, Color: g.Color})
	}
	return Figure{
		Name:  GrowthOverviewName,
		Title: "EC별 생육 비교",
		Rows:  2,
		Cols:  2,
		Panels: []Panel{
			bar("평균 생중량", dataset.ColFreshWeight, "g"),
			bar("평균 잎 수", dataset.ColLeafCount, "장"),
			bar("평균 지상부 길이", dataset.ColShootLength, "mm"),
			{Title: "개체수", Kind: Bar, XLabel: "EC", YLabel: "개", Series: []Series{count}},
		},
	}, nil
}

// FreshWeightBox is the fresh weight distribution per group. Missing weights are dropped.
func FreshWeightBox(ds *dataset.Dataset) (Figure, error) {
	growth := ds.Growth()
	merged, err := aggregate.MergeWithLabel(growth, ds.Groups(), dataset.ColGroup)
	if err != nil {
		return Figure{}, err
	}
	p := Panel{Title: "학교별 생중량 분포", Kind: Box, XLabel: "학교", YLabel: dataset.ColFreshWeight}
	weights, ok := table.Floats(merged, dataset.ColFreshWeight)
	labels, _ := table.Strings(merged, dataset.ColGroup)
	for _, g := range ds.Groups().All() {
		if _, has := growth[g.Name]; !has {
			continue
		}
		s := Series{Name: g.Name, Color: g.Color, Points: []Point{}}
		if ok {
			for i, w := range weights {
				if labels[i] != g.Name {
					continue
				}
				if y := ptr(w); y != nil {
					s.Points = append(s.Points, Point{Y: y})
				}
			}
		}
		p.Series = append(p.Series, s)
	}
	return Figure{Name: FreshWeightBoxName, Title: p.Title, Rows: 1, Cols: 1, Panels: []Panel{p}}, nil
}

// GrowthScatter plots xColumn against fresh weight, one series per group. Rows missing either
// value are dropped.
func GrowthScatter(ds *dataset.Dataset, xColumn string) (Figure, error) {
	switch xColumn {
	case dataset.ColLeafCount, dataset.ColShootLength:
	default:
		return Figure{}, fmt.Errorf("%w: scatter x must be %q or %q, got %q",
			ErrBadParam, dataset.ColLeafCount, dataset.ColShootLength, xColumn)
	}
	growth := ds.Growth()
	p := Panel{
		Title:  fmt.Sprintf("%s vs 생중량", xColumn),
		Kind:   Scatter,
		XLabel: xColumn,
		YLabel: dataset.ColFreshWeight,
	}
	for _, g := range ds.Groups().All() {
		df, ok := growth[g.Name]
		if !ok {
			continue
		}
		s := Series{Name: g.Name, Color: g.Color, Points: []Point{}}
		xs, okX := table.Floats(df, xColumn)
		ys, okY := table.Floats(df, dataset.ColFreshWeight)
		if okX && okY {
			for i := range xs {
				x, y := ptr(xs[i]), ptr(ys[i])
				if x == nil || y == nil {
					continue
				}
				s.Points = append(s.Points, Point{X: x, Y: y})
			}
		}
		p.Series = append(p.Series, s)
	}
	return Figure{Name: GrowthScatterName, Title: p.Title, Rows: 1, Cols: 1, Panels: []Panel{p}}, nil
}

func meanPoint(label string, m aggregate.Mean, color string) Point {
	p := Point{Label: label, Color: color}
	if m.Valid {
		v := m.Value
		p.Y = &v
	}
	return p
}

func ecLabel(ec float64) string {
	return "EC " + table.FormatFloat(ec)
}
