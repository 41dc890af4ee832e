package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/dataset/datasettest"
	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/table"
)

func frame(t *testing.T, header []string, rows [][]string, numeric []string) dataframe.DataFrame {
	t.Helper()
	df, err := table.FromRecords(header, rows, numeric)
	require.NoError(t, err)
	return df
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	envHeader := []string{"time", "temperature", "humidity", "ph", "ec"}
	growthHeader := []string{dataset.ColFreshWeight, dataset.ColLeafCount, dataset.ColShootLength}
	env := map[string]dataframe.DataFrame{
		"하늘고": frame(t, envHeader, [][]string{
			{"2025-05-01 10:00", "22", "60", "6.1", "2.1"},
			{"2025-05-01 11:00", "24", "", "6.3", "1.9"},
		}, dataset.EnvironmentNumeric),
		"송도고": frame(t, envHeader, [][]string{
			{"2025-05-01 10:00", "20", "55", "6.0", "1.0"},
		}, dataset.EnvironmentNumeric),
	}
	growth := map[string]dataframe.DataFrame{
		"하늘고": frame(t, growthHeader, [][]string{
			{"30", "10", "120"},
			{"", "8", "100"},
			{"34", "12", "140"},
		}, dataset.GrowthNumeric),
		"송도고": frame(t, growthHeader, [][]string{
			{"20", "7", "90"},
		}, dataset.GrowthNumeric),
	}
	ds, err := dataset.New(groups.MustDefault(), env, growth)
	require.NoError(t, err)
	return ds
}

func TestEnvironmentOverviewCanonicalOrder(t *testing.T) {
	fig, err := EnvironmentOverview(testDataset(t))
	require.NoError(t, err)
	require.Len(t, fig.Panels, 4)
	assert.Equal(t, 2, fig.Rows)
	assert.Equal(t, 2, fig.Cols)

	temp := fig.Panels[0].Series[0].Points
	require.Len(t, temp, 2)
	assert.Equal(t, "송도고", temp[0].Label)
	assert.Equal(t, "하늘고", temp[1].Label)
	assert.InDelta(t, 23.0, *temp[1].Y, 1e-9)
	assert.Equal(t, "#2ca02c", temp[1].Color)

	hum := fig.Panels[1].Series[0].Points
	assert.InDelta(t, 60.0, *hum[1].Y, 1e-9)

	ec := fig.Panels[3]
	require.Len(t, ec.Series, 2)
	assert.Equal(t, 2.0, *ec.Series[0].Points[1].Y)
	assert.InDelta(t, 2.0, *ec.Series[1].Points[1].Y, 1e-9)
}

func TestEnvironmentTimeSeriesTargetLine(t *testing.T) {
	ds := testDataset(t)
	fig, err := EnvironmentTimeSeries(ds, "하늘고")
	require.NoError(t, err)
	require.Len(t, fig.Panels, 3)

	hum := fig.Panels[1].Series[0].Points
	require.Len(t, hum, 2)
	assert.Nil(t, hum[1].Y, "missing humidity is a gap, not zero")

	ec := fig.Panels[2]
	require.Len(t, ec.RefLines, 1)
	assert.Equal(t, 2.0, ec.RefLines[0].Y)
	assert.True(t, ec.RefLines[0].Dashed)

	_, err = EnvironmentTimeSeries(ds, "없는학교")
	assert.ErrorIs(t, err, dataset.ErrUnknownGroup)
	_, err = EnvironmentTimeSeries(ds, "동산고")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGrowthOverviewSkipsMissing(t *testing.T) {
	fig, err := GrowthOverview(testDataset(t))
	require.NoError(t, err)
	weight := fig.Panels[0].Series[0].Points
	require.Len(t, weight, 2)
	assert.Equal(t, "EC 1", weight[0].Label)
	assert.Equal(t, "EC 2", weight[1].Label)
	assert.InDelta(t, 32.0, *weight[1].Y, 1e-9)

	count := fig.Panels[3].Series[0].Points
	assert.Equal(t, 3.0, *count[1].Y)
}

func TestFreshWeightBoxAndScatter(t *testing.T) {
	ds := testDataset(t)
	box, err := FreshWeightBox(ds)
	require.NoError(t, err)
	series := box.Panels[0].Series
	require.Len(t, series, 2)
	assert.Equal(t, "송도고", series[0].Name)
	assert.Len(t, series[1].Points, 2)

	sc, err := GrowthScatter(ds, dataset.ColShootLength)
	require.NoError(t, err)
	pts := sc.Panels[0].Series[1].Points
	require.Len(t, pts, 2)
	assert.Equal(t, 120.0, *pts[0].X)
	assert.Equal(t, 30.0, *pts[0].Y)

	_, err = GrowthScatter(ds, dataset.ColFreshWeight)
	assert.ErrorIs(t, err, ErrBadParam)
}

func TestBuild(t *testing.T) {
	ds := testDataset(t)
	for _, name := range Names() {
		fig, err := Build(name, ds, Params{Group: "송도고"})
		require.NoError(t, err, name)
		assert.Equal(t, name, fig.Name)
		_, err = json.Marshal(fig)
		require.NoError(t, err, name)
	}
	_, err := Build("pie", ds, Params{})
	assert.True(t, errors.Is(err, ErrUnknownChart))
	_, err = Build(EnvironmentTimeSeriesName, ds, Params{})
	assert.ErrorIs(t, err, ErrBadParam)
}

func TestRenderPNG(t *testing.T) {
	ds := testDataset(t)
	for _, name := range Names() {
		fig, err := Build(name, ds, Params{Group: "하늘고"})
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, RenderPNG(&buf, fig), name)
		_, err = png.Decode(&buf)
		require.NoError(t, err, name)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#d62728")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xd6), c.R)
	assert.Equal(t, uint8(0x27), c.G)
	assert.Equal(t, uint8(0x28), c.B)

	_, err = ParseColor("red")
	assert.Error(t, err)
}

func TestRenderPNGWithoutData(t *testing.T) {
	ds, err := dataset.New(groups.MustDefault(), nil, nil)
	require.NoError(t, err)
	for _, name := range []string{EnvironmentOverviewName, GrowthOverviewName} {
		fig, err := Build(name, ds, Params{})
		require.NoError(t, err, name)
		var buf bytes.Buffer
		require.NoError(t, RenderPNG(&buf, fig), name)
		_, err = png.Decode(&buf)
		require.NoError(t, err, name)
	}
}

func TestRenderPNGNoEnvironmentFiles(t *testing.T) {
	dir := datasettest.WriteDir(t, false)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if dataset.IsCSV(e.Name()) {
			require.NoError(t, os.Remove(filepath.Join(dir, e.Name())))
		}
	}
	ds, err := dataset.NewLoader().Load(context.Background(), groups.MustDefault(), dataset.Source{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, ds.Environment())

	fig, err := Build(EnvironmentOverviewName, ds, Params{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, fig))
	_, err = png.Decode(&buf)
	require.NoError(t, err)
}
