package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ecboard/internal/chart"
	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/utils"
)

var (
	chGroup      string
	chX          string
	chOutputPath string
)

var chartCmd = &cobra.Command{
	Use:   "chart <name>",
	Short: "Build a chart; writes PNG when --output ends in .png, JSON otherwise",
	Long:  "Available charts: " + strings.Join(chart.Names(), ", "),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		x := chX
		switch strings.ToLower(x) {
		case "leaves", "leaf_count":
			x = dataset.ColLeafCount
		case "shoot", "shoot_length":
			x = dataset.ColShootLength
		}
		fig, err := chart.Build(args[0], ds, chart.Params{Group: chGroup, X: x})
		if err != nil {
			return err
		}

		if strings.HasSuffix(strings.ToLower(chOutputPath), ".png") {
			configureChartFont(cfg.ChartFont)
			var buf bytes.Buffer
			if err := chart.RenderPNG(&buf, fig); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(chOutputPath, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", chOutputPath)
			return nil
		}
		b, err := utils.PrettyJSON(fig)
		if err != nil {
			return err
		}
		if chOutputPath != "" {
			if err := utils.SafeWriteFile(chOutputPath, b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", chOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chGroup, "group", "g", "", "group for environment-timeseries")
	chartCmd.Flags().StringVar(&chX, "x", "", "scatter x axis: leaves|shoot")
	chartCmd.Flags().StringVarP(&chOutputPath, "output", "o", "", "output path (.png renders an image)")
}
