package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ecboard/internal/chart"
	cfgpkg "github.com/KaramelBytes/ecboard/internal/config"
	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/logging"
	"github.com/KaramelBytes/ecboard/internal/observability"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var (
	// Global flags
	cfgFile     string
	debug       bool
	flagDataDir string

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error

	metricsOnce sync.Once
	metrics     *observability.Metrics
	loader      *dataset.Loader
)

var rootCmd = &cobra.Command{
	Use:   "ecboard",
	Short: "EC treatment growth dashboard: summaries, charts and exports",
	Long: `ecboard loads per-school environment logs (CSV) and plant growth measurements (XLSX),
summarizes them per EC treatment group, and serves the results as JSON, PNG charts and downloads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ecboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the environment CSVs and growth workbook (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		cfg, cfgErr = nil, err
		return
	}
	cfg, cfgErr = c, nil

	// Apply CLI overrides if provided
	if rootCmd.PersistentFlags().Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	logger, err := logging.New(os.Stderr, logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Version: Version,
	}, "ecboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; using default logger\n", err)
		return
	}
	slog.SetDefault(logger)
}

// requireConfig returns the loaded configuration or the error that prevented loading it.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("load config: %w", cfgErr)
		}
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	return cfg, nil
}

// sharedLoader returns the process-wide memoizing loader and its metrics.
func sharedLoader() (*dataset.Loader, *observability.Metrics) {
	metricsOnce.Do(func() {
		metrics = observability.NewMetrics()
		loader = dataset.NewLoader(dataset.WithMetrics(metrics))
	})
	return loader, metrics
}

// loadDataset reads the configured data directory into a snapshot.
func loadDataset(ctx context.Context) (*dataset.Dataset, *groups.Registry, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, nil, err
	}
	reg, err := c.Registry()
	if err != nil {
		return nil, nil, err
	}
	l, _ := sharedLoader()
	ds, err := l.Load(ctx, reg, c.Source())
	if err != nil {
		return nil, nil, err
	}
	return ds, reg, nil
}

// configureChartFont installs the configured (or a discovered) Hangul font for PNG charts.
// Rendering still works without one; Korean labels are then dropped by the default fonts.
func configureChartFont(path string) {
	used, err := chart.UseFont(path)
	switch {
	case errors.Is(err, chart.ErrNoFont):
		slog.Warn("no Korean font found; set chart_font for readable PNG charts")
	case err != nil:
		slog.Warn("chart font not loaded", "path", path, "err", err)
	default:
		slog.Debug("chart font installed", "path", used)
	}
}
