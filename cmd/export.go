package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ecboard/internal/export"
	"github.com/KaramelBytes/ecboard/internal/utils"
)

var (
	expOutDir string
	expOnly   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write environment_combined.csv and growth_combined.xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(expOutDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		type job struct {
			name  string
			write func(*bytes.Buffer) error
		}
		jobs := []job{
			{export.EnvironmentFile, func(b *bytes.Buffer) error { return export.WriteEnvironmentCSV(b, ds) }},
			{export.GrowthFile, func(b *bytes.Buffer) error { return export.WriteGrowthXLSX(b, ds) }},
		}
		switch expOnly {
		case "":
		case "csv", "environment":
			jobs = jobs[:1]
		case "xlsx", "growth":
			jobs = jobs[1:]
		default:
			return fmt.Errorf("unsupported --only: %s (use environment|growth)", expOnly)
		}
		for _, j := range jobs {
			var buf bytes.Buffer
			if err := j.write(&buf); err != nil {
				return fmt.Errorf("%s: %w", j.name, err)
			}
			path := filepath.Join(expOutDir, j.name)
			if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expOutDir, "out", "o", ".", "output directory")
	exportCmd.Flags().StringVar(&expOnly, "only", "", "export a single file: environment|growth")
}
