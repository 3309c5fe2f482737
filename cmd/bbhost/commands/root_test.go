package commands

import (
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/bashbuiltins/internal/config"
	"github.com/thoreinstein/bashbuiltins/internal/errors"
	"github.com/thoreinstein/bashbuiltins/internal/logging"
)

// withFlags resets the global flag state for one test.
func withFlags(t *testing.T) {
	t.Helper()
	origVerbosity, origQuiet, origFormat, origColor, origCfg := verbosity, quiet, logFormat, colorMode, cfg
	origLogger, origNoColor := slog.Default(), color.NoColor
	t.Cleanup(func() {
		verbosity, quiet, logFormat, colorMode, cfg = origVerbosity, origQuiet, origFormat, origColor, origCfg
		slog.SetDefault(origLogger)
		color.NoColor = origNoColor
	})
	verbosity, quiet, logFormat, colorMode, cfg = 0, false, "", "", nil
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name        string
		verbosity   int
		quiet       bool
		debug       string
		configLevel string
		want        slog.Level
	}{
		{name: "default", want: slog.LevelWarn},
		{name: "-v", verbosity: 1, want: slog.LevelInfo},
		{name: "-vv", verbosity: 2, want: slog.LevelDebug},
		{name: "-vvv", verbosity: 3, want: logging.LevelTrace},
		{name: "quiet", quiet: true, debug: "2", want: slog.LevelError},
		{name: "debug env", debug: "1", want: slog.LevelDebug},
		{name: "debug env true", debug: "true", want: slog.LevelDebug},
		{name: "trace env", debug: "2", want: logging.LevelTrace},
		{name: "unknown env value", debug: "yes", want: slog.LevelWarn},
		{name: "flag beats env", verbosity: 1, debug: "2", want: slog.LevelInfo},
		{name: "env beats config", debug: "1", configLevel: "error", want: slog.LevelDebug},
		{name: "config", configLevel: "error", want: slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFlags(t)
			verbosity, quiet = tt.verbosity, tt.quiet
			t.Setenv(debugEnv, tt.debug)
			if tt.configLevel != "" {
				cfg = config.Default()
				cfg.Log.Level = tt.configLevel
			}

			got, err := logLevel()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogging_InstallsLogger(t *testing.T) {
	withFlags(t)
	verbosity = 2

	require.NoError(t, setupLogging(rootCmd))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelDebug))
	assert.False(t, slog.Default().Enabled(t.Context(), logging.LevelTrace))
	assert.True(t, logging.FromContext(rootCmd.Context()).Enabled(t.Context(), slog.LevelDebug))
}

func TestSetupLogging_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{name: "quiet and verbose", setup: func() { verbosity, quiet = 1, true }},
		{name: "bad format", setup: func() { logFormat = "xml" }},
		{name: "bad color", setup: func() { colorMode = "sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFlags(t)
			tt.setup()
			err := setupLogging(rootCmd)
			require.Error(t, err)
			assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
		})
	}
}

func TestOutputColor(t *testing.T) {
	withFlags(t)

	mode, err := outputColor()
	require.NoError(t, err)
	assert.Equal(t, logging.ColorAuto, mode)

	cfg = config.Default()
	cfg.Log.Color = "never"
	mode, err = outputColor()
	require.NoError(t, err)
	assert.Equal(t, logging.ColorNever, mode)

	colorMode = "always"
	mode, err = outputColor()
	require.NoError(t, err)
	assert.Equal(t, logging.ColorAlways, mode, "flag beats config")

	require.NoError(t, setupLogging(rootCmd))
	assert.False(t, color.NoColor, "--color always enables report colors")
}
