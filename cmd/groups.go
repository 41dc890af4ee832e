package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the configured EC treatment groups in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		reg, err := c.Registry()
		if err != nil {
			return err
		}
		for _, g := range reg.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: EC %g (%s)\n", g.Name, g.EC, g.Color)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
