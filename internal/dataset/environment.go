package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/ecboard/internal/table"
)

// IsCSV reports whether name has a .csv extension (case-insensitive).
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// GroupFromFilename derives the group id of an environment file: the NFC stem with suffix stripped.
func GroupFromFilename(name, suffix string) string {
	stem := norm.NFC.String(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	return strings.TrimSuffix(stem, norm.NFC.String(suffix))
}

// LoadEnvironmentTables reads every CSV file in dir into a table keyed by group id.
// Other files are skipped. Rows are ordered by time when every timestamp parses.
func LoadEnvironmentTables(dir, suffix string) (map[string]dataframe.DataFrame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsCSV(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make(map[string]dataframe.DataFrame, len(names))
	sources := make(map[string]string, len(names))
	for _, name := range names {
		group := GroupFromFilename(name, suffix)
		if prev, dup := sources[group]; dup {
			return nil, fmt.Errorf("environment files %q and %q both map to group %q", prev, name, group)
		}
		path := filepath.Join(dir, name)
		df, err := table.ReadCSVFile(path, EnvironmentNumeric)
		if err != nil {
			return nil, fmt.Errorf("environment %s: %w", name, err)
		}
		if err := checkColumns(df, Environment, group, name); err != nil {
			return nil, err
		}
		if sorted, ok := table.SortByTime(df, ColTime); ok {
			df = sorted
		} else if df.Nrow() > 1 {
			slog.Warn("environment timestamps not parseable; keeping file order", "file", name)
		}
		slog.Debug("loaded environment table", "file", name, "group", group, "rows", df.Nrow())
		out[group] = df
		sources[group] = name
	}
	return out, nil
}

func checkColumns(df dataframe.DataFrame, fam Family, group, source string) error {
	var missing []string
	for _, c := range requiredColumns(fam) {
		if !table.HasColumn(df, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Family: fam, Group: group, Source: source, Missing: missing}
	}
	return nil
}
