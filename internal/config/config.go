package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/groups"
)

// Global configuration structure.
type Global struct {
	DataDir           string `mapstructure:"data_dir" yaml:"data_dir"`
	GrowthFile        string `mapstructure:"growth_file" yaml:"growth_file"`
	EnvironmentSuffix string `mapstructure:"environment_suffix" yaml:"environment_suffix"`

	// HTTP server
	HTTPAddr           string `mapstructure:"http_addr" yaml:"http_addr"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// ChartFont is a TTF/OTF/TTC file used for PNG chart text. Empty searches system fonts.
	ChartFont string `mapstructure:"chart_font" yaml:"chart_font"`

	// Treatment groups in canonical display order.
	Groups []groups.Group `mapstructure:"groups" yaml:"groups"`
}

// Source returns where the datasets live.
func (c *Global) Source() dataset.Source {
	return dataset.Source{
		Dir:               c.DataDir,
		GrowthFile:        c.GrowthFile,
		EnvironmentSuffix: c.EnvironmentSuffix,
	}.WithDefaults()
}

// Registry validates the configured groups.
func (c *Global) Registry() (*groups.Registry, error) {
	if len(c.Groups) == 0 {
		return nil, fmt.Errorf("config groups: %w: none configured", groups.ErrInvalidGroup)
	}
	reg, err := groups.New(c.Groups)
	if err != nil {
		return nil, fmt.Errorf("config groups: %w", err)
	}
	return reg, nil
}

// ShutdownTimeout is the graceful shutdown budget of the HTTP server.
func (c *Global) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// Dir returns ~/.ecboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ecboard"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ecboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ECBOARD")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("growth_file", dataset.DefaultGrowthFile)
	v.SetDefault("environment_suffix", dataset.DefaultEnvironmentSuffix)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("chart_font", "")
	defaults := make([]map[string]any, 0, 4)
	for _, g := range groups.Defaults() {
		defaults = append(defaults, map[string]any{"name": g.Name, "ec": g.EC, "color": g.Color})
	}
	v.SetDefault("groups", defaults)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// a missing file is allowed so `config set` can create it
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := c.Registry(); err != nil {
		return nil, err
	}
	return &c, nil
}
