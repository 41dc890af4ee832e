package dataset_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/dataset/datasettest"
	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/observability"
	"github.com/KaramelBytes/ecboard/internal/table"
)

func TestResolveFileNFD(t *testing.T) {
	dir := t.TempDir()
	decomposed := norm.NFD.String(dataset.DefaultGrowthFile)
	if decomposed == dataset.DefaultGrowthFile {
		t.Fatalf("fixture name has no decomposable characters")
	}
	if err := os.WriteFile(filepath.Join(dir, decomposed), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := dataset.ResolveFile(dir, dataset.DefaultGrowthFile)
	if err != nil {
		t.Fatalf("ResolveFile: %v", err)
	}
	if filepath.Base(got) != decomposed {
		t.Fatalf("resolved %q, want the on-disk NFD spelling", got)
	}
}

func TestResolveFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := dataset.ResolveFile(dir, dataset.DefaultGrowthFile)
	var fre *dataset.FileResolutionError
	if !errors.As(err, &fre) || !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("missing file: got %v", err)
	}

	for _, name := range []string{norm.NFC.String(dataset.DefaultGrowthFile), norm.NFD.String(dataset.DefaultGrowthFile)} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) < 2 {
		t.Skip("filesystem normalizes names; cannot create NFC/NFD twins")
	}
	_, err = dataset.ResolveFile(dir, dataset.DefaultGrowthFile)
	if !errors.As(err, &fre) || !errors.Is(err, dataset.ErrAmbiguous) {
		t.Fatalf("twins: got %v", err)
	}
	if len(fre.Candidates) != 2 {
		t.Fatalf("candidates = %q", fre.Candidates)
	}
}

func TestGroupFromFilename(t *testing.T) {
	cases := map[string]string{
		"송도고_환경데이터.csv":                   "송도고",
		norm.NFD.String("하늘고_환경데이터.CSV"): "하늘고",
		"notes.csv":                       "notes",
	}
	for in, want := range cases {
		if got := dataset.GroupFromFilename(in, dataset.DefaultEnvironmentSuffix); got != want {
			t.Fatalf("GroupFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadEnvironmentTables(t *testing.T) {
	dir := datasettest.WriteDir(t, true)
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatal(err)
	}
	tables, err := dataset.LoadEnvironmentTables(dir, dataset.DefaultEnvironmentSuffix)
	if err != nil {
		t.Fatalf("LoadEnvironmentTables: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("groups = %d, want 2", len(tables))
	}
	df, ok := tables["송도고"]
	if !ok {
		t.Fatalf("NFD file name not normalized to NFC group id: %v", keys(tables))
	}
	temp, _ := table.Floats(df, dataset.ColTemperature)
	if temp[0] != 20 || temp[1] != 22 {
		t.Fatalf("rows not ordered by time: %v", temp)
	}
	hum, _ := table.Floats(tables["하늘고"], dataset.ColHumidity)
	if !math.IsNaN(hum[1]) {
		t.Fatalf("empty humidity should be missing, got %v", hum[1])
	}
}

func TestLoadEnvironmentSchemaError(t *testing.T) {
	dir := t.TempDir()
	body := "time,temperature,humidity\n2025-05-01 10:00,20,60\n"
	if err := os.WriteFile(filepath.Join(dir, "아라고_환경데이터.csv"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := dataset.LoadEnvironmentTables(dir, dataset.DefaultEnvironmentSuffix)
	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Group != "아라고" || len(se.Missing) != 2 {
		t.Fatalf("unexpected schema error %+v", se)
	}
}

func TestLoadGrowthTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "growth.xlsx")
	datasettest.WriteWorkbook(t, path, []string{"하늘고", "송도고"}, map[string][][]any{
		"하늘고": {{30.0, 9.0, 120.0}, {-1.0, 8.0, 110.0}},
		"송도고": {{10.0, 5.0, 80.0}},
	})
	tables, order, err := dataset.LoadGrowthTables(path)
	if err != nil {
		t.Fatalf("LoadGrowthTables: %v", err)
	}
	if len(order) != 2 || order[0] != "하늘고" || order[1] != "송도고" {
		t.Fatalf("sheet order = %q", order)
	}
	w, _ := table.Floats(tables["하늘고"], dataset.ColFreshWeight)
	if w[0] != 30 || !math.IsNaN(w[1]) {
		t.Fatalf("negative weight should be missing: %v", w)
	}
}

func TestLoadGrowthTablesBlankHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "growth.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "하늘고"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("하늘고", "A2", &[]any{30.0, 9.0, 120.0}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	_, _, err := dataset.LoadGrowthTables(path)
	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.Group != "하늘고" || len(se.Missing) != len(dataset.GrowthNumeric) {
		t.Fatalf("unexpected schema error %+v", se)
	}
}

func TestNewUnknownGroup(t *testing.T) {
	df, _ := table.FromRecords([]string{"a"}, [][]string{{"1"}}, nil)
	_, err := dataset.New(groups.MustDefault(), map[string]dataframe.DataFrame{"대건고": df}, nil)
	if !errors.Is(err, dataset.ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestLoaderMemoizes(t *testing.T) {
	dir := datasettest.WriteDir(t, false)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	m := observability.NewMetricsForTesting()
	l := dataset.NewLoader(dataset.WithClock(clock), dataset.WithMetrics(m))
	reg := groups.MustDefault()

	first, err := l.Load(context.Background(), reg, dataset.Source{Dir: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !first.LoadedAt().Equal(clock.Now()) {
		t.Fatalf("LoadedAt = %v", first.LoadedAt())
	}
	if first.ID() == "" {
		t.Fatalf("snapshot id not set")
	}
	if got := first.Rows(dataset.Growth); got != 6 {
		t.Fatalf("growth rows = %d, want 6", got)
	}

	clock.Advance(time.Minute)
	second, err := l.Load(context.Background(), reg, dataset.Source{Dir: dir})
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if second != first {
		t.Fatalf("unchanged directory should return the memoized snapshot")
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("environment", "hit")); got != 1 {
		t.Fatalf("environment cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DatasetLoads.WithLabelValues("growth", "success")); got != 1 {
		t.Fatalf("growth reads = %v, want 1", got)
	}

	// A new file changes the fingerprint and forces a re-read.
	body := "time,temperature,humidity,ph,ec\n2025-05-01 10:00,21,65,6.1,4.2\n"
	if err := os.WriteFile(filepath.Join(dir, "아라고_환경데이터.csv"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	third, err := l.Load(context.Background(), reg, dataset.Source{Dir: dir})
	if err != nil {
		t.Fatalf("third Load: %v", err)
	}
	if third == first || len(third.Environment()) != 3 {
		t.Fatalf("expected a fresh snapshot with 3 environment groups")
	}
	if !third.LoadedAt().Equal(clock.Now()) {
		t.Fatalf("fresh snapshot should carry the current clock time")
	}
}

func TestLoaderMissingWorkbook(t *testing.T) {
	dir := t.TempDir()
	_, err := dataset.NewLoader().Load(context.Background(), groups.MustDefault(), dataset.Source{Dir: dir})
	var fre *dataset.FileResolutionError
	if !errors.As(err, &fre) {
		t.Fatalf("expected FileResolutionError, got %v", err)
	}
}

func TestLoaderCanceled(t *testing.T) {
	dir := datasettest.WriteDir(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := dataset.NewLoader().Load(ctx, groups.MustDefault(), dataset.Source{Dir: dir}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Cancellation wins before the directory is even listed.
	missing := filepath.Join(t.TempDir(), "gone")
	if _, err := dataset.NewLoader().Load(ctx, groups.MustDefault(), dataset.Source{Dir: missing}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled for an unread dir, got %v", err)
	}
}

func keys(m map[string]dataframe.DataFrame) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
