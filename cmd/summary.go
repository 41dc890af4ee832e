package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ecboard/internal/aggregate"
	"github.com/KaramelBytes/ecboard/internal/utils"
)

var (
	sumJSON       bool
	sumOutputPath string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the overview and per-group environment and growth means",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		rep, err := aggregate.BuildReport(ds)
		if err != nil {
			return err
		}
		var out []byte
		if sumJSON {
			out, err = utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}

		if sumOutputPath != "" {
			if err := utils.SafeWriteFile(sumOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&sumJSON, "json", false, "emit JSON instead of Markdown")
	summaryCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
}
