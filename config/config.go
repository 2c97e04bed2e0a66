// Package config loads the verifier's configuration from flags,
// environment variables, and defaults, following the workspace's layered
// pflag/viper loadConfig convention.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultMaxVotingOptions     = 120
	defaultMaxSelectableOptions = 12
	defaultMaxWriteIns          = 4
	defaultMaxWriteInLength     = 50
	defaultLogLevel             = "info"
	defaultLogOutput            = "stdout"
	defaultReportFormat         = "text"
	defaultPeriod               = "both"
	envPrefix                   = "VERIFIER"
)

// Config holds the verifier's full configuration surface: the §6
// configuration surface (root path, voting-option bounds, keystore
// location) plus the ambient fields §1a supplements it with (log,
// report format, period selection, exclusion list, worker pool size).
type Config struct {
	Root     string   `mapstructure:"root"`
	Keystore string   `mapstructure:"keystore"`
	Voting   Voting   `mapstructure:"voting"`
	Log      Log      `mapstructure:"log"`
	Report   Report   `mapstructure:"report"`
	Period   string   `mapstructure:"period"`
	Exclude  []string `mapstructure:"exclude"`
	Workers  int      `mapstructure:"workers"`
}

// Voting holds the voting-option bounds of the configuration surface.
// Load fills them from flags, environment and defaults; no verification
// check reads them.
type Voting struct {
	MaxOptions           int `mapstructure:"maxOptions"`
	MaxSelectableOptions int `mapstructure:"maxSelectableOptions"`
	MaxWriteIns          int `mapstructure:"maxWriteIns"`
	MaxWriteInLength     int `mapstructure:"maxWriteInLength"`
}

// Log holds logging configuration.
type Log struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Report holds the output report's rendering configuration.
type Report struct {
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load builds a Config from command-line flags, VERIFIER_-prefixed
// environment variables, and defaults, in that order of precedence.
func Load(args []string) (*Config, error) {
	v := viper.New()

	v.SetDefault("voting.maxOptions", defaultMaxVotingOptions)
	v.SetDefault("voting.maxSelectableOptions", defaultMaxSelectableOptions)
	v.SetDefault("voting.maxWriteIns", defaultMaxWriteIns)
	v.SetDefault("voting.maxWriteInLength", defaultMaxWriteInLength)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("report.format", defaultReportFormat)
	v.SetDefault("period", defaultPeriod)
	v.SetDefault("workers", runtime.GOMAXPROCS(0))

	flags := flag.NewFlagSet("verifier", flag.ContinueOnError)
	flags.StringP("root", "r", "", "snapshot root directory (required)")
	flags.StringP("keystore", "k", "", "direct-trust keystore directory (required)")
	flags.Int("voting.maxOptions", defaultMaxVotingOptions, "maximum number of voting options a ballot may declare")
	flags.Int("voting.maxSelectableOptions", defaultMaxSelectableOptions, "maximum number of selectable voting options")
	flags.Int("voting.maxWriteIns", defaultMaxWriteIns, "maximum number of write-in options")
	flags.Int("voting.maxWriteInLength", defaultMaxWriteInLength, "maximum length of a write-in option")
	flags.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error, fatal)")
	flags.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
	flags.StringP("report.format", "f", defaultReportFormat, "report output format (text or json)")
	flags.StringP("period", "p", defaultPeriod, "period to verify (setup, tally or both)")
	flags.StringSlice("exclude", nil, "verification check ids to exclude, comma-separated")
	flags.Int("workers", runtime.GOMAXPROCS(0), "maximum number of verification checks to run concurrently")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "verifier: an independent verifier for a Swiss e-voting election snapshot\n\n")
		fmt.Fprintf(os.Stderr, "Usage: verifier --root=<snapshot> --keystore=<dir> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  upper-cased and prefixed with %s_, dots replaced by underscores.\n", envPrefix)
		fmt.Fprintf(os.Stderr, "  For example, %s_ROOT or %s_KEYSTORE\n", envPrefix, envPrefix)
	}

	flags.SortFlags = false
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the required fields were supplied and that the
// enumerated fields carry a recognized value.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required (use --root or %s_ROOT)", envPrefix)
	}
	if c.Keystore == "" {
		return fmt.Errorf("keystore is required (use --keystore or %s_KEYSTORE)", envPrefix)
	}
	switch c.Period {
	case "setup", "tally", "both":
	default:
		return fmt.Errorf("invalid period %q, must be one of: setup, tally, both", c.Period)
	}
	switch c.Report.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid report format %q, must be one of: text, json", c.Report.Format)
	}
	return nil
}
