// Package commands implements the CLI commands for bbhost.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/bashbuiltins/cmd"
	"github.com/thoreinstein/bashbuiltins/internal/config"
	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
	"github.com/thoreinstein/bashbuiltins/internal/paths"
)

// debugEnv raises the log level when no -v flag is given: 1 or true for
// debug, 2 for trace.
const debugEnv = "BBHOST_DEBUG"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// colorMode holds the value of the --color flag.
var colorMode string

// configFile holds the value of the --config flag.
var configFile string

// stateFile holds the value of the --state flag.
var stateFile string

// cfg is the loaded configuration. It is nil until the root pre-run hook
// succeeds.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "",
		"color output: auto, always, never (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/bbhost/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "",
		"persist shell variables in this file between runs (bare --state uses the XDG state dir)")
	rootCmd.PersistentFlags().Lookup("state").NoOptDefVal = paths.StateFile()

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("bbhost version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "bbhost",
	Short: "Host and exercise bash loadable builtins",
	Long: `bbhost loads builtins written against the binding layer into a small
in-process shell, so they can be run, inspected and tested without a bash
build.

Builtins come from two places: the demo set compiled into bbhost, and
manifests (TOML, YAML or Markdown with front matter) found in the
configured manifest directories. The same definitions are exported to
bash by the shared library build.`,
	Example: `  # List the available builtins
  bbhost list

  # Run one builtin with arguments
  bbhost exec counter -s 5

  # Run a script through the in-process shell
  bbhost run script.sh

  See Also: bbhost show, bbhost manifest validate`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	level, err := logLevel()
	if err != nil {
		return errors.NewConfigError(err)
	}

	format := logFormat
	if format == "" && cfg != nil {
		format = cfg.Log.Format
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return errors.NewUserError(err, "Use --log-format text or --log-format json")
	}

	mode, err := outputColor()
	if err != nil {
		return errors.NewUserError(err, "Use --color auto, always or never")
	}
	// Reports and listings color through fatih/color's global switch.
	color.NoColor = !mode.Enabled(cmd.OutOrStdout())

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch f {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts, mode)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// logLevel picks the level from the flags, then BBHOST_DEBUG, then the
// config file.
func logLevel() (slog.Level, error) {
	if quiet {
		return slog.LevelError, nil
	}
	if verbosity > 0 {
		return logging.LevelFromVerbosity(verbosity), nil
	}
	if val, ok := os.LookupEnv(debugEnv); ok {
		switch val {
		case "1", "true":
			return slog.LevelDebug, nil
		case "2":
			return logging.LevelTrace, nil
		}
	}
	if cfg != nil && cfg.Log.Level != "" {
		return logging.ParseLevel(cfg.Log.Level)
	}
	return logging.LevelFromVerbosity(0), nil
}

// outputColor picks the color mode from --color, then the config file.
func outputColor() (logging.ColorMode, error) {
	mode := colorMode
	if mode == "" && cfg != nil {
		mode = cfg.Log.Color
	}
	return logging.ParseColorMode(mode)
}

// checkConfig reports config load errors for commands that need it.
func checkConfig(cmd *cobra.Command) error {
	// Skip validation for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// currentConfig returns the loaded configuration, or the defaults when the
// command skipped loading.
func currentConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
