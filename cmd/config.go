package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ecboard/internal/config"
	"github.com/KaramelBytes/ecboard/internal/groups"
	"github.com/KaramelBytes/ecboard/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ecboard configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(out, "growth_file: %s\n", c.GrowthFile)
		fmt.Fprintf(out, "environment_suffix: %s\n", c.EnvironmentSuffix)
		fmt.Fprintf(out, "http_addr: %s\n", c.HTTPAddr)
		fmt.Fprintf(out, "shutdown_timeout_sec: %d\n", c.ShutdownTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "chart_font: %s\n", c.ChartFont)
		fmt.Fprintln(out, "groups:")
		for _, g := range c.Groups {
			fmt.Fprintf(out, "  - %s (EC %g, %s)\n", g.Name, g.EC, g.Color)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

groups takes a comma-separated list of name:ec:color entries, e.g.
  ecboard config set groups "송도고:1:#1f77b4,하늘고:2:#2ca02c"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file as saved so one-shot flags (--debug, --data-dir) are not persisted.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		switch key {
		case "data_dir":
			c.DataDir = val
		case "growth_file":
			c.GrowthFile = val
		case "environment_suffix":
			c.EnvironmentSuffix = val
		case "http_addr":
			c.HTTPAddr = val
		case "shutdown_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for shutdown_timeout_sec: %v", val)
			}
			c.ShutdownTimeoutSec = i
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			c.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case logging.FormatText, logging.FormatJSON:
				c.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "chart_font":
			c.ChartFont = val
		case "groups":
			gs, err := parseGroups(val)
			if err != nil {
				return err
			}
			if _, err := groups.New(gs); err != nil {
				return err
			}
			c.Groups = gs
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// parseGroups parses "name:ec:color,name:ec:color".
func parseGroups(s string) ([]groups.Group, error) {
	var out []groups.Group
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid group %q (want name:ec:color)", part)
		}
		ec, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid EC for group %q: %w", fields[0], err)
		}
		out = append(out, groups.Group{
			Name:  strings.TrimSpace(fields[0]),
			EC:    ec,
			Color: strings.TrimSpace(fields[2]),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no groups given")
	}
	return out, nil
}
