package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/recalchq/recalc/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
// Values come from three layers: the optional TOML config file, then any
// flag the user set explicitly, then the built-in defaults for the rest.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("recalc", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Recalc - A reactive equation engine for scripted dependency graphs.

Usage:
  recalc [options] [SCRIPT_PATH]

Arguments:
  SCRIPT_PATH
    Path to a single .eq file or a directory containing .eq files.

Options:
`)
		flagSet.PrintDefaults()
	}

	scriptFlag := flagSet.String("script", "", "Path to the equation script file or directory.")
	sFlag := flagSet.String("s", "", "Path to the equation script file or directory (shorthand).")
	configFlag := flagSet.String("config", "", "Path to a TOML configuration file.")
	languageFlag := flagSet.String("language", app.DefaultLanguage, "Language adapter for scripts. Options: 'starlark' or 'hcl'.")
	logFormatFlag := flagSet.String("log-format", app.DefaultLogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", app.DefaultLogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	maxConcurrentFlag := flagSet.Int("max-concurrent", app.DefaultMaxConcurrent, "Maximum number of background update tasks running at once.")
	metricsPortFlag := flagSet.Int("metrics-port", 0, "Port for the Prometheus metrics server. 0 is disabled.")
	parseCacheFlag := flagSet.Int("parse-cache", app.DefaultParseCacheSize, "Number of parse results kept in the LRU cache.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	base := app.Config{}
	if *configFlag != "" {
		if err := app.LoadConfigFile(*configFlag, &base); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		base.ConfigPath = *configFlag
		slog.Debug("Config file loaded.", "path", *configFlag)
	}

	// An explicitly set flag beats the config file, even when it restates a
	// default. Unset flags leave the file's values alone.
	setFlags := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	path := base.ScriptPath
	if *scriptFlag != "" {
		path = *scriptFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Script path determined.", "path", path)

	if path == "" {
		slog.Debug("No script path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	base.ScriptPath = path

	if setFlags["language"] || base.Language == "" {
		base.Language = strings.ToLower(*languageFlag)
	}
	if setFlags["log-format"] || base.LogFormat == "" {
		base.LogFormat = strings.ToLower(*logFormatFlag)
	}
	if setFlags["log-level"] || base.LogLevel == "" {
		base.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if setFlags["max-concurrent"] || base.MaxConcurrent == 0 {
		base.MaxConcurrent = *maxConcurrentFlag
	}
	if setFlags["metrics-port"] {
		base.MetricsPort = *metricsPortFlag
	}
	if setFlags["parse-cache"] || base.ParseCacheSize == 0 {
		base.ParseCacheSize = *parseCacheFlag
	}

	config, err := app.NewConfig(base)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
