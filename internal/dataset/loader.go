package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/observability"
)

// Loader memoizes dataset reads by path and input fingerprint (names, sizes and
// modification times), so repeated loads of an unchanged directory do not touch file contents.
type Loader struct {
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu       sync.Mutex
	env      map[string]envMemo
	growth   map[string]growthMemo
	snapshot *snapshotMemo
}

type envMemo struct {
	fingerprint string
	tables      map[string]dataframe.DataFrame
}

type growthMemo struct {
	fingerprint string
	tables      map[string]dataframe.DataFrame
}

type snapshotMemo struct {
	key string
	reg *groups.Registry
	ds  *Dataset
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithClock sets the time source used to stamp snapshots.
func WithClock(c clockwork.Clock) LoaderOption {
	return func(l *Loader) { l.clock = c }
}

// WithMetrics records load and cache metrics.
func WithMetrics(m *observability.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader returns an empty memoizing loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		clock:  clockwork.NewRealClock(),
		env:    map[string]envMemo{},
		growth: map[string]growthMemo{},
	}
	for _, o := range opts {
		o(l)
	}
	if l.metrics == nil {
		l.metrics = observability.NewMetricsForTesting()
	}
	return l
}

// Environment returns the environment tables of dir, reading them only if the CSV files changed.
func (l *Loader) Environment(dir, suffix string) (map[string]dataframe.DataFrame, error) {
	tables, _, err := l.environment(dir, suffix)
	return tables, err
}

// environment also returns the fingerprint the tables are memoized under.
func (l *Loader) environment(dir, suffix string) (map[string]dataframe.DataFrame, string, error) {
	key, fp, err := envFingerprint(dir, suffix)
	if err != nil {
		return nil, "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.env[key]; ok && m.fingerprint == fp {
		l.metrics.CacheLookups.WithLabelValues(string(Environment), "hit").Inc()
		return m.tables, fp, nil
	}
	l.metrics.CacheLookups.WithLabelValues(string(Environment), "miss").Inc()
	start := l.clock.Now()
	tables, err := LoadEnvironmentTables(dir, suffix)
	l.observe(Environment, start, err)
	if err != nil {
		return nil, "", err
	}
	l.env[key] = envMemo{fingerprint: fp, tables: tables}
	return tables, fp, nil
}

// Growth returns the growth tables of the workbook at path, reading it only if it changed.
func (l *Loader) Growth(path string) (map[string]dataframe.DataFrame, error) {
	tables, _, err := l.growthTables(path)
	return tables, err
}

func (l *Loader) growthTables(path string) (map[string]dataframe.DataFrame, string, error) {
	key, fp, err := fileFingerprint(path)
	if err != nil {
		return nil, "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.growth[key]; ok && m.fingerprint == fp {
		l.metrics.CacheLookups.WithLabelValues(string(Growth), "hit").Inc()
		return m.tables, fp, nil
	}
	l.metrics.CacheLookups.WithLabelValues(string(Growth), "miss").Inc()
	start := l.clock.Now()
	tables, _, err := LoadGrowthTables(path)
	l.observe(Growth, start, err)
	if err != nil {
		return nil, "", err
	}
	l.growth[key] = growthMemo{fingerprint: fp, tables: tables}
	return tables, fp, nil
}

// Load resolves and reads both families from src and validates them against reg. When nothing
// changed since the previous call with the same registry, the previous snapshot is returned.
// A missing growth workbook yields a *FileResolutionError.
func (l *Loader) Load(ctx context.Context, reg *groups.Registry, src Source) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src = src.WithDefaults()
	growthPath, err := ResolveFile(src.Dir, src.GrowthFile)
	if err != nil {
		return nil, err
	}
	env, efp, err := l.environment(src.Dir, src.EnvironmentSuffix)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	growth, gfp, err := l.growthTables(growthPath)
	if err != nil {
		return nil, err
	}
	// Keyed by the fingerprints the tables were read under.
	key := efp + "|" + gfp + "|" + growthPath

	l.mu.Lock()
	defer l.mu.Unlock()
	if s := l.snapshot; s != nil && s.key == key && s.reg == reg {
		l.metrics.CacheLookups.WithLabelValues("dataset", "hit").Inc()
		return s.ds, nil
	}
	l.metrics.CacheLookups.WithLabelValues("dataset", "miss").Inc()

	ds, err := New(reg, env, growth)
	if err != nil {
		return nil, err
	}
	ds.id = uuid.NewString()
	ds.loadedAt = l.clock.Now()
	ds.source = src
	ds.growthPath = growthPath
	l.snapshot = &snapshotMemo{key: key, reg: reg, ds: ds}

	for _, fam := range []Family{Environment, Growth} {
		l.metrics.DatasetRows.WithLabelValues(string(fam)).Set(float64(ds.Rows(fam)))
	}
	l.metrics.DatasetGroups.WithLabelValues(string(Environment)).Set(float64(len(ds.env)))
	l.metrics.DatasetGroups.WithLabelValues(string(Growth)).Set(float64(len(ds.growth)))
	slog.Info("dataset loaded",
		"id", ds.id,
		"dir", src.Dir,
		"environment_groups", len(ds.env),
		"growth_groups", len(ds.growth),
		"growth_file", filepath.Base(growthPath),
	)
	return ds, nil
}

func (l *Loader) observe(fam Family, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	l.metrics.DatasetLoads.WithLabelValues(string(fam), outcome).Inc()
	l.metrics.LoadDuration.WithLabelValues(string(fam)).Observe(l.clock.Since(start).Seconds())
}

func envFingerprint(dir, suffix string) (key, fp string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("resolve data dir: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return "", "", fmt.Errorf("read data dir: %w", err)
	}
	var lines []string
	for _, e := range entries {
		if e.IsDir() || !IsCSV(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return "", "", fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		lines = append(lines, statLine(e.Name(), info))
	}
	sort.Strings(lines)
	return abs + "|" + suffix, digest(lines), nil
}

func fileFingerprint(path string) (key, fp string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	return abs, digest([]string{statLine(filepath.Base(abs), info)}), nil
}

func statLine(name string, info os.FileInfo) string {
	return fmt.Sprintf("%s\x00%d\x00%d", name, info.Size(), info.ModTime().UnixNano())
}

func digest(lines []string) string {
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
