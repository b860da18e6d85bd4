package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zkforge/snarkpipe/internal"
)

const (
	defaultLogLevel  = "info"
	defaultLogOutput = "stderr"
)

// Version is the build version, set at build time with -ldflags.
var Version = internal.Version

// Config holds the command configuration.
type Config struct {
	Log LogConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig loads configuration from flags, environment variables and
// defaults. Positional arguments (action and circuit files) stay in
// flag.Args().
func loadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = printUsage
	flag.CommandLine.SortFlags = false
	flag.Parse()

	// Environment variables mirror the flags: SNARK_LOG_LEVEL etc.
	v.SetEnvPrefix("SNARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return cfg, nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "snark v%s - zkSNARK proof pipeline\n\n", Version)
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  snark validate <circuit-file>...\n")
	fmt.Fprintf(os.Stderr, "  snark setup    <circuit-file>...\n")
	fmt.Fprintf(os.Stderr, "  snark prove    <circuit-file>...\n")
	fmt.Fprintf(os.Stderr, "  snark verify   <circuit-file>...\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nArtifacts are named after the first circuit file: <file>%s, <file>%s, <file>%s.\n",
		".pk", ".vk", ".proof")
}
