// Package logging provides structured logging for bbhost using slog.
//
// Text output is colorized on terminals; JSON output is meant for the
// --log-file copy and for tooling. Library packages never create loggers
// themselves: they accept a *slog.Logger option and default to a discard
// logger, so diagnostics a builtin prints to the shell error stream are not
// logging.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(2),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// For tests, use [ForTest] to capture log output via the testing framework.
package logging
