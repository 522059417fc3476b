package config

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug           = "debug"
	ConfigMu              = "mu"
	ConfigAlpha           = "alpha"
	ConfigConvention      = "convention"
	ConfigMaxCombinations = "max-combinations"
	ConfigWorkers         = "workers"
	ConfigSweepFrom       = "sweep-from"
	ConfigSweepTo         = "sweep-to"
	ConfigDataFile        = "data-file"
	ConfigHistogramBins   = "histogram-bins"
	ConfigPlotWidth       = "plot-width"
	ConfigCPUProfile      = "cpu-profile"
	ConfigConfigFile      = "config-file"
)

type Config struct {
	viper.Viper
}

func DefaultConfig() Config {
	c := Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigMu, 5.0)
	c.SetDefault(ConfigAlpha, 0.05)
	c.SetDefault(ConfigConvention, "population")
	c.SetDefault(ConfigMaxCombinations, 5_000_000)
	c.SetDefault(ConfigWorkers, 4)
	c.SetDefault(ConfigSweepFrom, 2)
	c.SetDefault(ConfigSweepTo, 8)
	c.SetDefault(ConfigDataFile, "")
	c.SetDefault(ConfigHistogramBins, 12)
	c.SetDefault(ConfigPlotWidth, 50)
	c.SetDefault(ConfigCPUProfile, "")
}

// Load parses flags from args and wires in TPOWER_* environment variables
// and an optional YAML config file. A setting resolves to the first source
// that has it: an explicit flag, then the environment, then the file, then
// the default. Arguments that are not flags are left in Args().
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("tpower", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Float64(ConfigMu, 5.0, "hypothesized population mean")
	fs.Float64(ConfigAlpha, 0.05, "one-tailed significance level")
	fs.String(ConfigConvention, "population", "standard deviation divisor: population (n) or sample (n-1)")
	fs.Int(ConfigMaxCombinations, 5_000_000, "refuse to enumerate more subsamples than this (0 = no limit)")
	fs.Int(ConfigWorkers, 4, "sizes evaluated concurrently during a sweep")
	fs.Int(ConfigSweepFrom, 2, "smallest size in a sweep")
	fs.Int(ConfigSweepTo, 8, "largest size in a sweep")
	fs.String(ConfigDataFile, "", "observation file (.yaml or whitespace-separated numbers); empty uses the reference data")
	fs.Int(ConfigHistogramBins, 12, "bins for t statistic histograms")
	fs.Int(ConfigPlotWidth, 50, "width of text plots")
	fs.String(ConfigCPUProfile, "", "write a CPU profile here")
	fs.String(ConfigConfigFile, "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.Set("args", fs.Args())

	c.SetEnvPrefix("tpower")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if cfgFile := c.GetString(ConfigConfigFile); cfgFile != "" {
		c.SetConfigFile(cfgFile)
		if err := c.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
	}
	return nil
}

// Args are the positional arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.GetStringSlice("args")
}

// SanitizedSettings are settings safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	s := c.AllSettings()
	delete(s, "args")
	return s
}
