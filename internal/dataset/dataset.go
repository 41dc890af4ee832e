// Package dataset locates, parses and caches the environment and growth datasets.
package dataset

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/KaramelBytes/ecboard/internal/groups"
)

// Source describes where the datasets live.
type Source struct {
	Dir               string `json:"dir"`
	GrowthFile        string `json:"growth_file"`
	EnvironmentSuffix string `json:"environment_suffix"`
}

// WithDefaults fills unset naming conventions.
func (s Source) WithDefaults() Source {
	if s.GrowthFile == "" {
		s.GrowthFile = DefaultGrowthFile
	}
	if s.EnvironmentSuffix == "" {
		s.EnvironmentSuffix = DefaultEnvironmentSuffix
	}
	return s
}

// Dataset is an immutable snapshot of both dataset families, validated against a group registry.
// It is built once and passed to every consumer; nothing mutates it afterwards.
type Dataset struct {
	id         string
	loadedAt   time.Time
	source     Source
	growthPath string
	groups     *groups.Registry
	env        map[string]dataframe.DataFrame
	growth     map[string]dataframe.DataFrame
}

// New validates env and growth tables against reg. Every table key must name a configured
// group; keys are canonicalized to the registry spelling.
func New(reg *groups.Registry, env, growth map[string]dataframe.DataFrame) (*Dataset, error) {
	if reg == nil {
		return nil, fmt.Errorf("nil group registry")
	}
	e, err := canonicalize(reg, Environment, env)
	if err != nil {
		return nil, err
	}
	g, err := canonicalize(reg, Growth, growth)
	if err != nil {
		return nil, err
	}
	return &Dataset{groups: reg, env: e, growth: g}, nil
}

func canonicalize(reg *groups.Registry, fam Family, in map[string]dataframe.DataFrame) (map[string]dataframe.DataFrame, error) {
	out := make(map[string]dataframe.DataFrame, len(in))
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		g, ok := reg.Lookup(k)
		if !ok {
			return nil, fmt.Errorf("%s data for %q: %w", fam, k, ErrUnknownGroup)
		}
		if _, dup := out[g.Name]; dup {
			return nil, fmt.Errorf("%s data for %q appears twice", fam, g.Name)
		}
		out[g.Name] = in[k]
	}
	return out, nil
}

// ID identifies the snapshot; it changes whenever the inputs are re-read.
func (d *Dataset) ID() string { return d.id }

// LoadedAt is when the snapshot was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Source returns the directory layout the snapshot was read from.
func (d *Dataset) Source() Source { return d.source }

// GrowthPath is the resolved on-disk path of the growth workbook.
func (d *Dataset) GrowthPath() string { return d.growthPath }

// Groups returns the registry the snapshot was validated against.
func (d *Dataset) Groups() *groups.Registry { return d.groups }

// Environment returns the environment tables keyed by group id.
func (d *Dataset) Environment() map[string]dataframe.DataFrame { return copyTables(d.env) }

// Growth returns the growth tables keyed by group id.
func (d *Dataset) Growth() map[string]dataframe.DataFrame { return copyTables(d.growth) }

// EnvironmentFor returns one group's environment table.
func (d *Dataset) EnvironmentFor(group string) (dataframe.DataFrame, bool) {
	g, ok := d.groups.Lookup(group)
	if !ok {
		return dataframe.DataFrame{}, false
	}
	df, ok := d.env[g.Name]
	return df, ok
}

// Rows counts rows across all groups of a family.
func (d *Dataset) Rows(fam Family) int {
	m := d.env
	if fam == Growth {
		m = d.growth
	}
	var n int
	for _, df := range m {
		n += df.Nrow()
	}
	return n
}

func copyTables(in map[string]dataframe.DataFrame) map[string]dataframe.DataFrame {
	out := make(map[string]dataframe.DataFrame, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
