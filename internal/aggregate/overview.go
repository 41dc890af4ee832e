package aggregate

import (
	"errors"

	"github.com/KaramelBytes/ecboard/internal/dataset"
)

// Condition is one row of the EC treatment table.
type Condition struct {
	Group  string  `json:"group"`
	EC     float64 `json:"ec"`
	Plants int     `json:"plants"`
	Color  string  `json:"color"`
}

// BestEC names the treatment with the highest mean fresh weight, derived from data.
type BestEC struct {
	Group       string  `json:"group"`
	EC          float64 `json:"ec"`
	FreshWeight float64 `json:"fresh_weight"`
}

// Headline holds the overview metrics.
type Headline struct {
	TotalPlants    int         `json:"total_plants"`
	AvgTemperature Mean        `json:"avg_temperature"`
	AvgHumidity    Mean        `json:"avg_humidity"`
	Best           *BestEC     `json:"best_ec"`
	Conditions     []Condition `json:"conditions"`
}

// EnvironmentSummaries averages every environment measurement per group.
func EnvironmentSummaries(ds *dataset.Dataset) ([]GroupSummary, error) {
	return GroupMeans(ds.Environment(), ds.Groups(), dataset.EnvironmentNumeric)
}

// GrowthSummaries averages every growth measurement per group.
func GrowthSummaries(ds *dataset.Dataset) ([]GroupSummary, error) {
	return GroupMeans(ds.Growth(), ds.Groups(), dataset.GrowthNumeric)
}

// Overview computes the headline metrics. Best is nil when no group has fresh weight data.
func Overview(ds *dataset.Dataset) (Headline, error) {
	growth := ds.Growth()
	env := ds.Environment()
	h := Headline{
		AvgTemperature: OverallMean(env, dataset.ColTemperature),
		AvgHumidity:    OverallMean(env, dataset.ColHumidity),
	}
	for _, g := range ds.Groups().All() {
		var n int
		if df, ok := growth[g.Name]; ok {
			n = df.Nrow()
		}
		h.TotalPlants += n
		h.Conditions = append(h.Conditions, Condition{Group: g.Name, EC: g.EC, Plants: n, Color: g.Color})
	}

	sums, err := GrowthSummaries(ds)
	if err != nil {
		return Headline{}, err
	}
	best, err := BestGroupByMetric(sums, dataset.ColFreshWeight)
	switch {
	case err == nil:
		h.Best = &BestEC{Group: best.Group, EC: best.EC, FreshWeight: best.Metric(dataset.ColFreshWeight).Value}
	case errors.Is(err, ErrEmptyInput):
	default:
		return Headline{}, err
	}
	return h, nil
}
