package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/groups"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, dataset.DefaultGrowthFile, c.GrowthFile)
	assert.Equal(t, groups.Defaults(), c.Groups)

	reg, err := c.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{"송도고", "하늘고", "아라고", "동산고"}, reg.Names())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ECBOARD_DATA_DIR", "/srv/ec")
	t.Setenv("ECBOARD_LOG_FORMAT", "json")
	t.Setenv("ECBOARD_CHART_FONT", "/fonts/NanumGothic.ttf")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/ec", c.DataDir)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, "/fonts/NanumGothic.ttf", c.ChartFont)
	assert.Equal(t, "/srv/ec", c.Source().Dir)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)

	c.DataDir = "/data/ec"
	c.ShutdownTimeoutSec = 3
	c.Groups = []groups.Group{
		{Name: "A", EC: 0.5, Color: "#000000"},
		{Name: "B", EC: 1.5, Color: "#ffffff"},
	}
	require.NoError(t, Save(c, path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/ec", back.DataDir)
	assert.Equal(t, 3, int(back.ShutdownTimeout().Seconds()))
	assert.Equal(t, c.Groups, back.Groups)
}

func TestLoadRejectsBadGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "groups:\n  - name: A\n    ec: 1\n    color: red\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, groups.ErrInvalidGroup), "got %v", err)
}

func TestSourceDefaults(t *testing.T) {
	c := &Global{DataDir: "x"}
	src := c.Source()
	assert.Equal(t, dataset.DefaultEnvironmentSuffix, src.EnvironmentSuffix)
	assert.Equal(t, dataset.DefaultGrowthFile, src.GrowthFile)
	assert.Equal(t, 10, int(c.ShutdownTimeout().Seconds()))
}
