// Package chart builds render-ready figure specifications from a dataset and renders them to PNG.
package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/ecboard/internal/dataset"
)

// Kind is the mark type of a panel.
type Kind string

const (
	Bar     Kind = "bar"
	Line    Kind = "line"
	Box     Kind = "box"
	Scatter Kind = "scatter"
)

// Figure names accepted by Build.
const (
	EnvironmentOverviewName   = "environment-overview"
	EnvironmentTimeSeriesName = "environment-timeseries"
	GrowthOverviewName        = "growth-overview"
	FreshWeightBoxName        = "fresh-weight-box"
	GrowthScatterName         = "growth-scatter"
)

var (
	// ErrUnknownChart is returned for a figure name Build does not know.
	ErrUnknownChart = errors.New("unknown chart")
	// ErrBadParam is returned for a missing or unsupported figure parameter.
	ErrBadParam = errors.New("bad chart parameter")
	// ErrNoData is returned when the requested group has no rows to plot.
	ErrNoData = errors.New("no data")
)

// Point is one mark. Y is nil where the value is missing; X is set for scatter points only.
type Point struct {
	Label string   `json:"label,omitempty"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y"`
	Color string   `json:"color,omitempty"`
}

// Series is one named set of points sharing a color.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

// RefLine is a horizontal reference line, e.g. a target EC.
type RefLine struct {
	Y      float64 `json:"y"`
	Label  string  `json:"label,omitempty"`
	Dashed bool    `json:"dashed"`
}

// Panel is one subplot.
type Panel struct {
	Title    string    `json:"title"`
	Kind     Kind      `json:"kind"`
	XLabel   string    `json:"x_label,omitempty"`
	YLabel   string    `json:"y_label,omitempty"`
	Series   []Series  `json:"series"`
	RefLines []RefLine `json:"ref_lines,omitempty"`
}

// Figure is a grid of panels laid out row-major.
type Figure struct {
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	Panels []Panel `json:"panels"`
}

// Params selects figure variants.
type Params struct {
	// Group selects the time-series group.
	Group string
	// X selects the scatter x column (leaf count or shoot length).
	X string
}

// Names lists the figures Build accepts.
func Names() []string {
	return []string{
		EnvironmentOverviewName,
		EnvironmentTimeSeriesName,
		GrowthOverviewName,
		FreshWeightBoxName,
		GrowthScatterName,
	}
}

// Build constructs the named figure.
func Build(name string, ds *dataset.Dataset, p Params) (Figure, error) {
	switch name {
	case EnvironmentOverviewName:
		return EnvironmentOverview(ds)
	case EnvironmentTimeSeriesName:
		if p.Group == "" {
			return Figure{}, fmt.Errorf("%w: group is required", ErrBadParam)
		}
		return EnvironmentTimeSeries(ds, p.Group)
	case GrowthOverviewName:
		return GrowthOverview(ds)
	case FreshWeightBoxName:
		return FreshWeightBox(ds)
	case GrowthScatterName:
		x := p.X
		if x == "" {
			x = dataset.ColLeafCount
		}
		return GrowthScatter(ds, x)
	default:
		names := Names()
		sort.Strings(names)
		return Figure{}, fmt.Errorf("%w %q (available: %v)", ErrUnknownChart, name, names)
	}
}

func ptr(x float64) *float64 {
	if math.IsNaN(x) {
		return nil
	}
	return &x
}
