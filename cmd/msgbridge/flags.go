package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Script      string
	LogLevel    string
	LogFormat   string
	Debug       bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("MSGBRIDGE_CONFIG", ""),
		"Path to a JSON or YAML configuration file, empty for defaults (env: MSGBRIDGE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("MSGBRIDGE_CONFIG", ""),
		"Path to a JSON or YAML configuration file, empty for defaults (env: MSGBRIDGE_CONFIG)")

	fs.StringVar(&cfg.Script, "script",
		getEnv("MSGBRIDGE_SCRIPT", ""),
		"Lua script to run, overrides lua.script (env: MSGBRIDGE_SCRIPT)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("MSGBRIDGE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: MSGBRIDGE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("MSGBRIDGE_LOG_FORMAT", "json"),
		"Log format: json, text (env: MSGBRIDGE_LOG_FORMAT)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool("MSGBRIDGE_DEBUG", false),
		"Enable debug logging (env: MSGBRIDGE_DEBUG)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if cfg.Script != "" {
		if _, err := os.Stat(cfg.Script); err != nil {
			return fmt.Errorf("script not found: %s", cfg.Script)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - message queue between Go and Lua

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Run with the built-in defaults and a Lua consumer
  %s --script=scripts/consumer.lua

  # Run with a config file and text logs
  %s --config=configs/msgbridge.yaml --log-format=text

  # Run with environment variables
  export MSGBRIDGE_CONFIG=/etc/msgbridge/msgbridge.yaml
  export MSGBRIDGE_PRODUCERS_COUNT=8
  %s

  # Validate configuration only
  %s --config=configs/msgbridge.yaml --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
